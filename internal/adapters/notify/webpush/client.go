package webpush

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"med-tracker/internal/platform/httpclient"
	"med-tracker/internal/ports/notify"
)

var ErrNotConfigured = errors.New("push relay not configured")

// Config apunta al relay que entrega las notificaciones push de recordatorio.
type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string // default X-Api-Key
	Timeout      time.Duration
}

// Client implementa notify.ReminderNotifier contra POST /v1/push del relay.
type Client struct {
	cfg  Config
	http *httpclient.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	httpClient, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

type pushRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (c *Client) Send(ctx context.Context, reminder notify.Reminder) error {
	header := c.cfg.APIKeyHeader
	if strings.TrimSpace(header) == "" {
		header = "X-Api-Key"
	}
	headers := map[string]string{header: c.cfg.APIKey}

	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/push", headers, pushRequest{
		UserID: reminder.UserID,
		Title:  reminder.Title,
		Body:   reminder.Body,
	}, nil)
	if err != nil {
		return fmt.Errorf("webpush: send reminder: %w", err)
	}
	return nil
}
