package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultRemoteTimeout = 10 * time.Second
	DefaultBackoffBase   = time.Second
)

// ErrNothingSynced is returned by RetryWithBackoff when the last attempt
// ran but every upload failed.
var ErrNothingSynced = errors.New("no health log could be uploaded")

// SyncEngine pushes unsynced local records to the remote store, one at a
// time. Only one Sync may run at a time; a concurrent call is rejected with
// common.ErrAlreadyInProgress rather than queued.
type SyncEngine struct {
	repo   records.Repository
	client client.Client
	logger logging.Logger

	remoteTimeout time.Duration
	backoffBase   time.Duration
	now           func() time.Time

	syncing atomic.Bool

	mu         sync.RWMutex
	deviceID   string
	lastSyncAt *time.Time
}

type SyncOption func(*SyncEngine)

// WithRemoteTimeout bounds every remote call made during a sync.
func WithRemoteTimeout(d time.Duration) SyncOption {
	return func(e *SyncEngine) {
		if d > 0 {
			e.remoteTimeout = d
		}
	}
}

// WithBackoffBase sets the first RetryWithBackoff delay; later delays double.
func WithBackoffBase(d time.Duration) SyncOption {
	return func(e *SyncEngine) {
		if d > 0 {
			e.backoffBase = d
		}
	}
}

func NewSyncEngine(repo records.Repository, c client.Client, logger logging.Logger, opts ...SyncOption) *SyncEngine {
	e := &SyncEngine{
		repo:          repo,
		client:        c,
		logger:        logger.With("module", "sync"),
		remoteTimeout: DefaultRemoteTimeout,
		backoffBase:   DefaultBackoffBase,
		now:           time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Initialize assigns the device id attached to uploads. It is a routing tag,
// not a credential. Calling it again keeps the existing id.
func (e *SyncEngine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deviceID != "" {
		return nil
	}

	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], uint64(e.now().UnixNano()))
	h := sha256.New()
	h.Write(seed[:])
	h.Write([]byte(uuid.NewString()))
	e.deviceID = hex.EncodeToString(h.Sum(nil))[:32]

	e.logger.Debug(ctx, "sync engine initialized", "device_id", e.deviceID)
	return nil
}

func (e *SyncEngine) DeviceID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.deviceID
}

// CheckConnectivity probes the remote store. It never fails; any error or
// timeout reads as offline.
func (e *SyncEngine) CheckConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()

	if err := e.client.Ping(ctx); err != nil {
		e.logger.Debug(ctx, "remote store unreachable", "error", err)
		return false
	}
	return true
}

func (e *SyncEngine) GetStatus(ctx context.Context, ownerID int64) (*models.SyncStatus, error) {
	online := e.CheckConnectivity(ctx)

	pending, err := e.repo.GetUnsynced(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get sync status failed: %w", err)
	}

	st := &models.SyncStatus{
		IsOnline:     online,
		IsSyncing:    e.syncing.Load(),
		PendingCount: len(pending),
	}
	e.mu.RLock()
	if e.lastSyncAt != nil {
		t := *e.lastSyncAt
		st.LastSyncAt = &t
	}
	e.mu.RUnlock()
	return st, nil
}

// Sync uploads the owner's unsynced records oldest first. Per-record
// failures are collected in the result; only the preconditions (already
// syncing, not initialized, offline, not authenticated) fail the call.
func (e *SyncEngine) Sync(ctx context.Context, ownerID int64) (*models.SyncResult, error) {
	const op = "sync"

	if !e.syncing.CompareAndSwap(false, true) {
		return nil, common.E(common.KindAlreadyInProgress, op, nil)
	}
	defer e.syncing.Store(false)

	deviceID := e.DeviceID()
	if deviceID == "" {
		return nil, common.Ef(common.KindNotInitialized, op, "sync engine is not initialized")
	}

	if !e.CheckConnectivity(ctx) {
		return nil, common.E(common.KindOffline, op, errors.New("No internet connection available"))
	}

	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, common.E(common.KindNotAuthenticated, op, err)
	}

	rows, err := e.repo.GetUnsynced(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	result := &models.SyncResult{Errors: []models.SyncError{}}
	for _, row := range rows {
		remoteID, err := e.upload(ctx, models.UploadRequest{
			OwnerRemoteID:    user.ID,
			EncryptedPayload: row.Payload,
			DeviceID:         deviceID,
		})
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, models.SyncError{
				LocalID:   row.ID,
				Error:     fmt.Sprintf("Failed to upload health log: %v", err),
				Retryable: IsRetryable(err),
			})
			e.logger.Warn(ctx, "upload failed", "local_id", row.ID, "error", err)
			continue
		}

		if err := e.repo.MarkSynced(ctx, row.ID, remoteID); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, models.SyncError{
				LocalID: row.ID,
				Error:   fmt.Sprintf("Failed to mark health log synced: %v", err),
			})
			e.logger.Error(ctx, "uploaded record could not be marked synced", "local_id", row.ID, "remote_id", remoteID, "error", err)
			continue
		}
		result.SyncedCount++
	}

	result.Success = result.SyncedCount > 0 || result.FailedCount == 0
	if result.Success {
		t := e.now().UTC()
		e.mu.Lock()
		e.lastSyncAt = &t
		e.mu.Unlock()
	}

	e.logger.Info(ctx, "sync finished", "synced", result.SyncedCount, "failed", result.FailedCount)
	return result, nil
}

func (e *SyncEngine) currentUser(ctx context.Context) (*models.RemoteUser, error) {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()

	u, err := e.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID == "" {
		return nil, errors.New("no remote session")
	}
	return u, nil
}

func (e *SyncEngine) upload(ctx context.Context, req models.UploadRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	return e.client.UploadHealthLog(ctx, req)
}

// RetryWithBackoff runs Sync up to maxAttempts times, waiting base, 2*base,
// 4*base and so on between attempts. An attempt fails when Sync errors or
// reports Success=false. Errors IsRetryable rejects end the run at once. After the last attempt its error is returned as is;
// for a run where nothing uploaded it wraps ErrNothingSynced and the last
// result is returned alongside.
func (e *SyncEngine) RetryWithBackoff(ctx context.Context, ownerID int64, maxAttempts int) (*models.SyncResult, error) {
	if maxAttempts < 1 {
		return nil, common.Ef(common.KindInvalidInput, "retry sync", "max attempts must be at least 1")
	}

	b := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewExponential(e.backoffBase))

	var (
		attempt int
		last    *models.SyncResult
	)
	res, err := retry.DoValue(ctx, b, func(ctx context.Context) (*models.SyncResult, error) {
		attempt++
		res, err := e.Sync(ctx, ownerID)
		if err != nil {
			e.logger.Debug(ctx, "sync attempt failed", "attempt", attempt, "error", err)
			if !IsRetryable(err) {
				return nil, err
			}
			return nil, retry.RetryableError(err)
		}
		if !res.Success {
			last = res
			e.logger.Debug(ctx, "sync attempt uploaded nothing", "attempt", attempt, "failed", res.FailedCount)
			return nil, retry.RetryableError(fmt.Errorf("%w: %d failed", ErrNothingSynced, res.FailedCount))
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, ErrNothingSynced) {
			return last, err
		}
		return nil, err
	}
	return res, nil
}

func (e *SyncEngine) GetStats(ctx context.Context, ownerID int64) (*models.SyncStats, error) {
	rows, err := e.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get sync stats failed: %w", err)
	}

	st := &models.SyncStats{TotalLogs: len(rows), SyncPercentage: 100}
	for _, r := range rows {
		if r.IsSynced() {
			st.SyncedLogs++
		}
	}
	st.UnsyncedLogs = st.TotalLogs - st.SyncedLogs
	if st.TotalLogs > 0 {
		st.SyncPercentage = int(math.Round(100 * float64(st.SyncedLogs) / float64(st.TotalLogs)))
	}
	return st, nil
}
