package client

import (
	"context"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
)

type Client interface {
	Close() error
	// Ping performs a lightweight read against the remote store.
	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, password string) (*models.RemoteUser, error)
	// SignIn authenticates and keeps the returned access token for later calls.
	SignIn(ctx context.Context, email, password string) (*models.RemoteUser, error)
	SignOut(ctx context.Context) error
	// CurrentUser resolves the identity behind the current access token.
	CurrentUser(ctx context.Context) (*models.RemoteUser, error)
	// UploadHealthLog stores one encrypted record and returns its remote id.
	UploadHealthLog(ctx context.Context, req models.UploadRequest) (string, error)
	SetAccessToken(token string)
}
