// Package models defines the client-side data types: encrypted rows as they
// are stored locally, the plaintext health log they decrypt to, and the
// values reported by the sync engine.
package models

import "time"

// EncryptedRecord is one row of the local store. Payload is ciphertext of a
// serialized HealthLog and is never interpreted below the record service.
//
// SyncedAt and RemoteID are either both nil (not pushed yet) or both set.
type EncryptedRecord struct {
	ID        int64
	OwnerID   int64
	Payload   string
	CreatedAt time.Time
	UpdatedAt time.Time
	SyncedAt  *time.Time
	RemoteID  *string
}

// IsSynced reports whether the record has been pushed to the remote store.
func (r *EncryptedRecord) IsSynced() bool {
	return r.SyncedAt != nil && r.RemoteID != nil
}
