package accounts

import (
	"strings"
	"time"

	"med-tracker/internal/platform/httpclient"
)

// Config apunta al servicio de cuentas que emite los tokens de la app.
type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string // default X-Api-Key
	Timeout      time.Duration
}

func (c Config) isConfigured() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.APIKey) != ""
}

func (c Config) apiKeyHeader() string {
	if strings.TrimSpace(c.APIKeyHeader) != "" {
		return c.APIKeyHeader
	}
	return "X-Api-Key"
}

func newHTTPClient(cfg Config) (*httpclient.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	return httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
}
