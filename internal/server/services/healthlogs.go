package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/dmitrijs2005/healthlog/internal/server/blobstore"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// MaxPayloadSize bounds one encrypted payload in bytes.
const MaxPayloadSize = 1 << 20

// HealthLogService stores uploaded ciphertexts. It never decrypts them.
type HealthLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
	now         func() time.Time
}

// NewHealthLogService returns a service that keeps payloads in blobs, or
// inline in Postgres when blobs is nil.
func NewHealthLogService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *HealthLogService {
	return &HealthLogService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "healthlog_service"),
		now:         time.Now,
	}
}

// Upload records one payload for userID and returns the stored row.
func (s *HealthLogService) Upload(ctx context.Context, userID, deviceID, payload string) (*models.HealthLog, error) {
	const op = "upload health log"

	err := validation.Errors{
		"device_id":         validation.Validate(deviceID, validation.Required, validation.RuneLength(1, 128)),
		"encrypted_payload": validation.Validate(payload, validation.Required, validation.Length(1, MaxPayloadSize)),
	}.Filter()
	if err != nil {
		return nil, common.E(common.KindValidationFailed, op, err)
	}

	log := &models.HealthLog{ID: uuid.NewString(), UserID: userID, DeviceID: deviceID}

	if s.blobs == nil {
		log.EncryptedPayload = &payload
		if err := s.repomanager.HealthLogs(s.db).Create(ctx, log); err != nil {
			return nil, err
		}
		return log, nil
	}

	key := blobstore.ObjectKey(userID, log.ID, s.now())
	if err := s.blobs.Put(ctx, key, payload); err != nil {
		return nil, err
	}
	log.PayloadKey = &key

	if err := s.repomanager.HealthLogs(s.db).Create(ctx, log); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "orphaned payload object", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.logger.Debug(ctx, "payload stored", "id", log.ID, "key", key)
	return log, nil
}

// Probe runs a trivial read and reports the number of rows it saw.
func (s *HealthLogService) Probe(ctx context.Context) (int64, error) {
	return s.repomanager.HealthLogs(s.db).Probe(ctx)
}
