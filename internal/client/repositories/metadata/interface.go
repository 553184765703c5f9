// Package metadata persists opaque key/value blobs in the local database.
// The secure store seals values before they get here.
package metadata

import "context"

type Repository interface {
	// Get returns the value or an error matching common.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
