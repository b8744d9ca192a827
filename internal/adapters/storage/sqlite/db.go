// Package sqlite es el backend embebido: un archivo local, sin servidor.
// Es el default natural para una instancia personal; usa el driver puro-Go
// modernc.org/sqlite sobre database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre (o crea) el archivo de base y deja el esquema listo.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// un solo writer; sqlite serializa escrituras de todos modos
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// migrate crea las tablas si no existen. Fechas como TEXT YYYY-MM-DD
// (granularidad de día, que es la que maneja el dominio) y timestamps RFC3339.
func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dosage_units (
			id            TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			name          TEXT NOT NULL,
			created_at    TEXT NOT NULL,
			UNIQUE (owner_user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS medications (
			id              TEXT PRIMARY KEY,
			owner_user_id   TEXT NOT NULL,
			name            TEXT NOT NULL,
			dosage_value    REAL NOT NULL,
			dosage_unit     TEXT NOT NULL,
			intake_times    TEXT NOT NULL,
			frequency_count INTEGER NOT NULL,
			frequency_unit  TEXT NOT NULL,
			start_date      TEXT NOT NULL,
			end_date        TEXT,
			notes           TEXT NOT NULL DEFAULT '',
			is_completed    INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medications_owner ON medications (owner_user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS medication_intakes (
			id            TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			medication_id TEXT NOT NULL,
			date          TEXT NOT NULL,
			time          TEXT NOT NULL,
			status        TEXT NOT NULL,
			UNIQUE (medication_id, date, time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intakes_owner_date ON medication_intakes (owner_user_id, date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
