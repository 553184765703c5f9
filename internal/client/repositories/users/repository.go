// Package users stores the local account rows used for offline login.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/dbx"
)

type Repository interface {
	// Upsert creates or refreshes the row for u.Email and returns its id.
	Upsert(ctx context.Context, u *models.LocalUser) (int64, error)
	// GetByEmail returns an error matching common.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.LocalUser, error)
	// SetKeyVerifier replaces the verifier of user id.
	SetKeyVerifier(ctx context.Context, id int64, verifier string) error
}

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.LocalUser) (int64, error) {
	ts := r.now().UnixNano()
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, key_verifier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			key_verifier = CASE WHEN excluded.key_verifier = '' THEN users.key_verifier ELSE excluded.key_verifier END,
			updated_at = excluded.updated_at
		RETURNING id
	`, u.Email, u.PasswordHash, u.KeyVerifier, ts, ts).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert user: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.LocalUser, error) {
	var (
		u                    models.LocalUser
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, key_verifier, created_at, updated_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.KeyVerifier, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.Ef(common.KindNotFound, "get user", "no local account for %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = time.Unix(0, createdAt).UTC()
	u.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &u, nil
}

func (r *SQLiteRepository) SetKeyVerifier(ctx context.Context, id int64, verifier string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET key_verifier = ?, updated_at = ? WHERE id = ?`, verifier, r.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to set key verifier: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.Ef(common.KindNotFound, "set key verifier", "no local account with id %d", id)
	}
	return nil
}
