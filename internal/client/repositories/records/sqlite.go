package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/migrations"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/dbx"
)

const selectColumns = `id, user_id, encrypted_data, created_at, updated_at, synced_at, cloud_id`

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db    *sql.DB
	ready atomic.Bool
	now   func() time.Time
}

// NewSQLiteRepository returns a repository bound to db. Call Init before use.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Init(ctx context.Context) error {
	if err := migrations.Up(ctx, r.db); err != nil {
		return err
	}
	r.ready.Store(true)
	return nil
}

func (r *SQLiteRepository) checkReady(op string) error {
	if !r.ready.Load() {
		return common.E(common.KindNotInitialized, op, errors.New("record store schema is not set up"))
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, ownerID int64, payload string) (int64, error) {
	if err := r.checkReady("insert health log"); err != nil {
		return 0, err
	}

	ts := r.now().UnixNano()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO health_logs (user_id, encrypted_data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		ownerID, payload, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to insert health log: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.EncryptedRecord, error) {
	if err := r.checkReady("get health log"); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM health_logs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.EncryptedRecord, error) {
	if err := r.checkReady("list health logs"); err != nil {
		return nil, err
	}
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM health_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context, ownerID int64) ([]*models.EncryptedRecord, error) {
	if err := r.checkReady("list unsynced health logs"); err != nil {
		return nil, err
	}
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM health_logs WHERE user_id = ? AND synced_at IS NULL ORDER BY created_at ASC, id ASC`,
		ownerID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, payload string) error {
	if err := r.checkReady("update health log"); err != nil {
		return err
	}
	return r.execOne(ctx, r.db, "update health log",
		`UPDATE health_logs SET encrypted_data = ?, updated_at = ? WHERE id = ?`,
		payload, r.now().UnixNano(), id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if err := r.checkReady("delete health log"); err != nil {
		return err
	}
	return r.execOne(ctx, r.db, "delete health log", `DELETE FROM health_logs WHERE id = ?`, id)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64, remoteID string) error {
	if err := r.checkReady("mark health log synced"); err != nil {
		return err
	}
	if remoteID == "" {
		return common.E(common.KindInvalidInput, "mark health log synced", errors.New("remote id is empty"))
	}
	return r.execOne(ctx, r.db, "mark health log synced",
		`UPDATE health_logs SET synced_at = ?, cloud_id = ? WHERE id = ?`,
		r.now().UnixNano(), remoteID, id)
}

func (r *SQLiteRepository) ClearSynced(ctx context.Context, id int64) error {
	if err := r.checkReady("clear health log sync state"); err != nil {
		return err
	}
	return r.execOne(ctx, r.db, "clear health log sync state",
		`UPDATE health_logs SET synced_at = NULL, cloud_id = NULL WHERE id = ?`, id)
}

func (r *SQLiteRepository) ReplacePayloads(ctx context.Context, payloads map[int64]string) error {
	if err := r.checkReady("replace health log payloads"); err != nil {
		return err
	}
	ts := r.now().UnixNano()
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for id, payload := range payloads {
			if err := r.execOne(ctx, tx, "replace health log payload",
				`UPDATE health_logs SET encrypted_data = ?, updated_at = ? WHERE id = ?`,
				payload, ts, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if err := r.checkReady("clear health logs"); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM health_logs`); err != nil {
		return fmt.Errorf("failed to clear health logs: %w", err)
	}
	return nil
}

// execOne runs a statement that must touch exactly one row.
func (r *SQLiteRepository) execOne(ctx context.Context, db dbx.DBTX, op, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.Ef(common.KindNotFound, op, "no health log with id %v", args[len(args)-1])
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.EncryptedRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select health logs: %w", err)
	}
	defer rows.Close()

	var result []*models.EncryptedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.EncryptedRecord, error) {
	var (
		rec                  models.EncryptedRecord
		createdAt, updatedAt int64
		syncedAt             sql.NullInt64
		cloudID              sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.OwnerID, &rec.Payload, &createdAt, &updatedAt, &syncedAt, &cloudID); err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if syncedAt.Valid && cloudID.Valid {
		t := time.Unix(0, syncedAt.Int64).UTC()
		id := cloudID.String
		rec.SyncedAt = &t
		rec.RemoteID = &id
	}
	return &rec, nil
}
