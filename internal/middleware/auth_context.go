package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"med-tracker/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "auth.claims"

// AuthContext resuelve la identidad del request y la deja en el contexto.
//
// Modo dev: si no hay verifier configurado, acepta el header X-Debug-User-ID
// tal cual. Así la app corre local sin un servicio de cuentas levantado.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				debugUser := strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
				if debugUser == "" {
					writeAuthErr(w, http.StatusUnauthorized, "missing X-Debug-User-ID header (dev mode)")
					return
				}
				ctx := context.WithValue(r.Context(), claimsKey, auth.Claims{UserID: debugUser})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeAuthErr(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeAuthErr(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims recupera los claims dejados por AuthContext.
func GetClaims(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
