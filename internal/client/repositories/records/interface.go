package records

import (
	"context"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
)

// Repository is the contract the record service and the sync engine rely on.
type Repository interface {
	// Init applies the schema. Safe to call more than once.
	Init(ctx context.Context) error

	// Insert stores a new unsynced row and returns its local id.
	Insert(ctx context.Context, ownerID int64, payload string) (int64, error)

	// GetByID returns the row or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.EncryptedRecord, error)

	// GetByOwner returns an owner's rows, newest created first.
	GetByOwner(ctx context.Context, ownerID int64) ([]*models.EncryptedRecord, error)

	// Update overwrites the payload and bumps updated_at. Sync columns are untouched.
	Update(ctx context.Context, id int64, payload string) error

	Delete(ctx context.Context, id int64) error

	// MarkSynced sets synced_at and cloud_id together.
	MarkSynced(ctx context.Context, id int64, remoteID string) error

	// ClearSynced resets synced_at and cloud_id together.
	ClearSynced(ctx context.Context, id int64) error

	// GetUnsynced returns an owner's rows that were never pushed, oldest first.
	GetUnsynced(ctx context.Context, ownerID int64) ([]*models.EncryptedRecord, error)

	// ReplacePayloads overwrites several payloads in one transaction.
	ReplacePayloads(ctx context.Context, payloads map[int64]string) error

	// ClearAll removes every row.
	ClearAll(ctx context.Context) error
}
