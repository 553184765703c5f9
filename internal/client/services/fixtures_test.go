package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupRecords(t *testing.T) (*records.SQLiteRepository, *sql.DB) {
	t.Helper()
	db := openDB(t)
	repo := records.NewSQLiteRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo, db
}

func newRecordService(t *testing.T, repo records.Repository, key string, opts ...RecordOption) *RecordService {
	t.Helper()
	opts = append([]RecordOption{withClock(func() time.Time { return testNow })}, opts...)
	s, err := NewRecordService(repo, key, logging.Discard(), opts...)
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

// fakeClient is a scriptable client.Client. It is safe for concurrent use.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	pingFn   func(n int) error
	pings    int
	user     *models.RemoteUser
	userErr  error
	uploadFn func(ctx context.Context, n int, req models.UploadRequest) (string, error)
	uploads  []models.UploadRequest

	signInUser *models.RemoteUser
	signInErr  error
	signUpErr  error
	signUps    int
	signOutErr error
	signOuts   int
	token      string
}

func newOnlineClient() *fakeClient {
	return &fakeClient{
		user: &models.RemoteUser{ID: "remote-user", Email: "u@example.com"},
		uploadFn: func(_ context.Context, n int, _ models.UploadRequest) (string, error) {
			return "remote-" + string(rune('a'+n)), nil
		},
	}
}

func (f *fakeClient) Ping(context.Context) error {
	f.mu.Lock()
	f.pings++
	n, fn := f.pings, f.pingFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(n)
}

func (f *fakeClient) CurrentUser(context.Context) (*models.RemoteUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.userErr
}

func (f *fakeClient) UploadHealthLog(ctx context.Context, req models.UploadRequest) (string, error) {
	f.mu.Lock()
	n := len(f.uploads)
	f.uploads = append(f.uploads, req)
	fn := f.uploadFn
	f.mu.Unlock()
	return fn(ctx, n, req)
}

func (f *fakeClient) SignIn(_ context.Context, email, _ string) (*models.RemoteUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	u := *f.signInUser
	u.Email = email
	f.token = u.AccessToken
	return &u, nil
}

func (f *fakeClient) SignUp(_ context.Context, email, _ string) (*models.RemoteUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.RemoteUser{ID: "remote-user", Email: email}, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.token = ""
	return f.signOutErr
}

func (f *fakeClient) SetAccessToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeClient) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}
