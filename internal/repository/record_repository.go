package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

// QueryObserver receives query timings, typically the metrics service.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// RecordRepository persists one JSONB document row per user in the notas table.
type RecordRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewRecordRepository creates a new repository instance.
func NewRecordRepository(db *sqlx.DB, observer QueryObserver) *RecordRepository {
	return &RecordRepository{db: db, observer: observer}
}

// Load returns the user's record. A user with no row gets an empty record.
func (r *RecordRepository) Load(ctx context.Context, userID string) (*models.UserRecord, error) {
	defer r.observe("notas.load", time.Now())

	const query = `SELECT user_id, ramos, ramo_colors, semestre_colors, semestres_vacios, updated_at FROM notas WHERE user_id = $1`
	var record models.UserRecord
	if err := r.db.GetContext(ctx, &record, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewUserRecord(userID), nil
		}
		return nil, fmt.Errorf("load record %s: %w", userID, err)
	}
	return &record, nil
}

// Save upserts the whole record, replacing every stored field.
func (r *RecordRepository) Save(ctx context.Context, record *models.UserRecord) error {
	defer r.observe("notas.save", time.Now())

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notas (user_id, ramos, ramo_colors, semestre_colors, semestres_vacios, updated_at)
        VALUES (:user_id, :ramos, :ramo_colors, :semestre_colors, :semestres_vacios, :updated_at)
        ON CONFLICT (user_id) DO UPDATE SET
            ramos = EXCLUDED.ramos,
            ramo_colors = EXCLUDED.ramo_colors,
            semestre_colors = EXCLUDED.semestre_colors,
            semestres_vacios = EXCLUDED.semestres_vacios,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("save record %s: %w", record.UserID, err)
	}
	return nil
}

// Delete removes the user's record.
func (r *RecordRepository) Delete(ctx context.Context, userID string) error {
	defer r.observe("notas.delete", time.Now())

	if _, err := r.db.ExecContext(ctx, `DELETE FROM notas WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete record %s: %w", userID, err)
	}
	return nil
}

// Ping checks database reachability for readiness probes.
func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *RecordRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}
