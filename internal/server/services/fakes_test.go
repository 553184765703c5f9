package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/dbx"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/healthlogs"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/users"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, users.ErrEmailTaken
	}
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.E(common.KindNotFound, "get user", nil)
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.E(common.KindNotFound, "get user", nil)
}

type fakeLogs struct {
	mu        sync.Mutex
	logs      []*models.HealthLog
	createErr error
}

func (f *fakeLogs) Create(_ context.Context, l *models.HealthLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	l.CreatedAt = time.Now()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeLogs) Probe(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.logs) > 0 {
		return 1, nil
	}
	return 0, nil
}

type fakeRevocations struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	purgeErr error
	purged   int
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = exp
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

func (f *fakeRevocations) Purge(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	var n int64
	for jti, exp := range f.revoked {
		if exp.Before(now) {
			delete(f.revoked, jti)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	users       *fakeUsers
	logs        *fakeLogs
	revocations *fakeRevocations
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       &fakeUsers{byEmail: map[string]*models.User{}},
		logs:        &fakeLogs{},
		revocations: &fakeRevocations{revoked: map[string]time.Time{}},
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) HealthLogs(dbx.DBTX) healthlogs.Repository   { return m.logs }
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository { return m.revocations }
