package revocations

import (
	"context"
	"time"
)

type Repository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Purge drops revocations of tokens that expired before now.
	Purge(ctx context.Context, now time.Time) (int64, error)
}
