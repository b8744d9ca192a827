package auth

import "context"

// AuthVerifier valida un token Bearer contra el servicio de cuentas
// y devuelve los claims del usuario.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
