package auth

// Claims es la identidad mínima que el API necesita del proveedor de cuentas.
type Claims struct {
	UserID string
	Email  string
}
