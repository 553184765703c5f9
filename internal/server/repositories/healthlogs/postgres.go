// Package healthlogs provides the PostgreSQL-backed store of uploaded
// health log ciphertexts.
package healthlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/dbx"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts log and fills CreatedAt. log.ID must already be set.
func (r *PostgresRepository) Create(ctx context.Context, log *models.HealthLog) error {
	query := `
		INSERT INTO health_logs (id, user_id, device_id, encrypted_payload, payload_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		log.ID, log.UserID, log.DeviceID, log.EncryptedPayload, log.PayloadKey).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Probe(ctx context.Context) (int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM health_logs LIMIT 1`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
