package grpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/server/auth"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
	"github.com/dmitrijs2005/healthlog/internal/server/services"
)

var testSecret = []byte("secret")

// fakeUsers keeps accounts in memory and issues real tokens.
type fakeUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	passwords map[string]string
	revoked   map[string]bool
	authErr   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:   map[string]*models.User{},
		passwords: map[string]string{},
		revoked:   map[string]bool{},
	}
}

func (f *fakeUsers) SignUp(_ context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(password) < 8 {
		return nil, common.Ef(common.KindValidationFailed, "sign up", "password: too short")
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, services.ErrAlreadyExists
	}
	u := &models.User{ID: "user-" + email, Email: email}
	f.byEmail[email] = u
	f.passwords[email] = password
	return u, nil
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok || f.passwords[email] != password {
		return nil, common.Ef(common.KindNotAuthenticated, "sign in", "invalid credentials")
	}
	tok, claims, err := auth.GenerateToken(u.ID, testSecret, time.Hour, time.Now())
	if err != nil {
		return nil, err
	}
	return &services.Session{User: u, AccessToken: tok, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	claims, err := auth.ParseToken(token, testSecret)
	if err != nil {
		return nil, common.E(common.KindNotAuthenticated, "authenticate", err)
	}
	if f.revoked[claims.ID] {
		return nil, common.Ef(common.KindNotAuthenticated, "authenticate", "token revoked")
	}
	return claims, nil
}

func (f *fakeUsers) SignOut(_ context.Context, token string) error {
	claims, err := auth.ParseToken(token, testSecret)
	if err != nil {
		return common.E(common.KindNotAuthenticated, "sign out", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[claims.ID] = true
	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, common.E(common.KindNotFound, "get user", nil)
}

type fakeLogs struct {
	mu        sync.Mutex
	logs      []*models.HealthLog
	probeErr  error
	uploadErr error
}

func (f *fakeLogs) Upload(_ context.Context, userID, deviceID, payload string) (*models.HealthLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	l := &models.HealthLog{
		ID:               "log-" + string(rune('a'+len(f.logs))),
		UserID:           userID,
		DeviceID:         deviceID,
		EncryptedPayload: &payload,
	}
	f.logs = append(f.logs, l)
	return l, nil
}

func (f *fakeLogs) Probe(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	if len(f.logs) > 0 {
		return 1, nil
	}
	return 0, nil
}

var errBoom = errors.New("boom")
