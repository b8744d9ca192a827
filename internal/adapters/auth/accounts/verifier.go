package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"med-tracker/internal/platform/httpclient"
	"med-tracker/internal/ports/auth"
)

var (
	ErrAccountsNotConfigured = errors.New("accounts verifier not configured")
	ErrUnauthorized          = errors.New("token rejected by accounts service")
	ErrUpstream              = errors.New("accounts service error")
)

// Verifier valida tokens contra POST /v1/tokens/verify del servicio de cuentas.
type Verifier struct {
	cfg  Config
	http *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if !cfg.isConfigured() {
		return nil, ErrAccountsNotConfigured
	}
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Verifier{cfg: cfg, http: client}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	headers := map[string]string{
		v.cfg.apiKeyHeader(): v.cfg.APIKey,
	}

	var out verifyResponse
	err := v.http.DoJSON(ctx, http.MethodPost, "/v1/tokens/verify", headers, verifyRequest{Token: token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status %d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if out.UserID == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  out.Email,
	}, nil
}
