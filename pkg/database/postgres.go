package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/1Bnja/PonderacionesPersonales/pkg/config"
)

// recordsSchema mirrors the per-user document table. Each JSONB column holds
// one slice of the user's state so a whole record is written in one upsert.
const recordsSchema = `
CREATE TABLE IF NOT EXISTS notas (
	user_id          TEXT PRIMARY KEY,
	ramos            JSONB NOT NULL DEFAULT '[]'::jsonb,
	ramo_colors      JSONB NOT NULL DEFAULT '{}'::jsonb,
	semestre_colors  JSONB NOT NULL DEFAULT '{}'::jsonb,
	semestres_vacios JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// exportJobsSchema tracks asynchronous transcript exports.
const exportJobsSchema = `
CREATE TABLE IF NOT EXISTS export_jobs (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	format        TEXT NOT NULL,
	semestre      TEXT,
	status        TEXT NOT NULL,
	file_path     TEXT,
	result_url    TEXT,
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	finished_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS export_jobs_finished_idx ON export_jobs (status, finished_at)`

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the records and export tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		return fmt.Errorf("ensure notas table: %w", err)
	}
	if _, err := db.ExecContext(ctx, exportJobsSchema); err != nil {
		return fmt.Errorf("ensure export_jobs table: %w", err)
	}
	return nil
}
