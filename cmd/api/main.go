package main

import (
	"net/http"
	"os"
	"time"

	"med-tracker/internal/adapters/auth/accounts"
	"med-tracker/internal/adapters/notify/webpush"
	"med-tracker/internal/platform/logger"
	"med-tracker/internal/ports/auth"
	"med-tracker/internal/ports/notify"
	"med-tracker/internal/router"
)

// @title Med Tracker API
// @version 1.0
// @description API de medicaciones recurrentes y registro de tomas.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin ACCOUNTS_* configurado corre en modo dev (header X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("ACCOUNTS_BASE_URL"); base != "" {
		v, err := accounts.NewVerifier(accounts.Config{
			BaseURL: base,
			APIKey:  os.Getenv("ACCOUNTS_API_KEY"),
		})
		if err != nil {
			log.Error("accounts verifier init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = v
		log.Info("accounts verifier enabled", map[string]any{"base_url": base})
	} else {
		log.Warn("running in dev auth mode (X-Debug-User-ID)", nil)
	}

	var notifier notify.ReminderNotifier
	if relay := os.Getenv("PUSH_RELAY_URL"); relay != "" {
		n, err := webpush.New(webpush.Config{
			BaseURL: relay,
			APIKey:  os.Getenv("PUSH_RELAY_KEY"),
		})
		if err != nil {
			log.Error("push relay init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		notifier = n
		log.Info("push relay enabled", map[string]any{"base_url": relay})
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       log,
		Notifier:     notifier,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
