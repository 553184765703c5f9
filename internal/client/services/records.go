package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/cryptox"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// RecordService is validated, encrypted CRUD over health logs. One instance
// is bound to one owner's key.
type RecordService struct {
	repo         records.Repository
	logger       logging.Logger
	now          func() time.Time
	newID        func() string
	resyncOnEdit bool

	mu  sync.RWMutex
	key string
}

type RecordOption func(*RecordService)

// WithResyncOnEdit makes Update clear the sync marker of an edited record so
// the next sync pushes it again. Off by default.
func WithResyncOnEdit(on bool) RecordOption {
	return func(s *RecordService) { s.resyncOnEdit = on }
}

func withClock(now func() time.Time) RecordOption {
	return func(s *RecordService) { s.now = now }
}

func NewRecordService(repo records.Repository, key string, logger logging.Logger, opts ...RecordOption) (*RecordService, error) {
	if key == "" {
		return nil, common.Ef(common.KindInvalidInput, "create record service", "encryption key is required")
	}
	s := &RecordService{
		repo:   repo,
		key:    key,
		logger: logger.With("module", "records"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *RecordService) currentKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

func (s *RecordService) Create(ctx context.Context, ownerID int64, d models.Draft) (*models.HealthLog, error) {
	const op = "create health log"

	now := s.now().UTC()
	h := &models.HealthLog{
		ID:          s.newID(),
		Title:       d.Title,
		Category:    d.Category,
		Severity:    d.Severity,
		Date:        d.Date,
		Description: d.Description,
		Tags:        d.Tags,
		Notes:       d.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sanitize(h)
	if err := s.validate(h); err != nil {
		return nil, common.E(common.KindValidationFailed, op, err)
	}

	payload, err := s.seal(h, s.currentKey())
	if err != nil {
		return nil, common.E(common.KindEncryptionFailed, op, err)
	}

	id, err := s.repo.Insert(ctx, ownerID, payload)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	h.LocalID = id

	s.logger.Debug(ctx, "health log created", "local_id", id)
	return h, nil
}

// Get returns nil without error when no row exists. A row that cannot be
// decrypted is an error, never nil.
func (s *RecordService) Get(ctx context.Context, localID int64) (*models.HealthLog, error) {
	const op = "get health log"

	row, err := s.repo.GetByID(ctx, localID)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if row == nil {
		return nil, nil
	}

	h, err := s.open(row, s.currentKey())
	if err != nil {
		return nil, common.E(common.KindDecryptionFailed, op, err)
	}
	return h, nil
}

// GetAll returns the owner's logs by date, newest first. Rows that fail to
// decrypt are logged and left out.
func (s *RecordService) GetAll(ctx context.Context, ownerID int64) ([]*models.HealthLog, error) {
	rows, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get health logs failed: %w", err)
	}

	key := s.currentKey()
	out := make([]*models.HealthLog, 0, len(rows))
	for _, row := range rows {
		h, err := s.open(row, key)
		if err != nil {
			s.logger.Warn(ctx, "skipping unreadable health log", "local_id", row.ID, "error", err)
			continue
		}
		out = append(out, h)
	}

	// YYYY-MM-DD sorts lexically
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *RecordService) Update(ctx context.Context, localID int64, p models.Patch) (*models.HealthLog, error) {
	const op = "update health log"

	if p.ID == "" {
		return nil, common.Ef(common.KindInvalidInput, op, "health log id is required")
	}

	row, err := s.repo.GetByID(ctx, localID)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if row == nil {
		return nil, common.Ef(common.KindNotFound, op, "no health log with local id %d", localID)
	}

	key := s.currentKey()
	h, err := s.open(row, key)
	if err != nil {
		return nil, common.E(common.KindDecryptionFailed, op, err)
	}
	if h.ID != p.ID {
		return nil, common.Ef(common.KindInvalidInput, op, "id %q does not match stored health log", p.ID)
	}

	p.Apply(h)
	h.UpdatedAt = s.now().UTC()
	sanitize(h)
	if err := s.validate(h); err != nil {
		return nil, common.E(common.KindValidationFailed, op, err)
	}

	payload, err := s.seal(h, key)
	if err != nil {
		return nil, common.E(common.KindEncryptionFailed, op, err)
	}
	if err := s.repo.Update(ctx, localID, payload); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	if s.resyncOnEdit && row.IsSynced() {
		if err := s.repo.ClearSynced(ctx, localID); err != nil {
			return nil, fmt.Errorf("%s failed: %w", op, err)
		}
	}

	return h, nil
}

// Delete removes a record only when it opens under the bound key. Rows of
// other accounts on the same device report NotFound.
func (s *RecordService) Delete(ctx context.Context, localID int64) error {
	const op = "delete health log"

	row, err := s.repo.GetByID(ctx, localID)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if row == nil {
		return common.Ef(common.KindNotFound, op, "no health log with local id %d", localID)
	}
	if _, err := cryptox.Decrypt(row.Payload, s.currentKey()); err != nil {
		s.logger.Debug(ctx, "refusing to delete foreign health log", "local_id", localID)
		return common.Ef(common.KindNotFound, op, "no health log with local id %d", localID)
	}
	if err := s.repo.Delete(ctx, localID); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return nil
}

func (s *RecordService) FindByCategory(ctx context.Context, ownerID int64, c models.Category) ([]*models.HealthLog, error) {
	all, err := s.GetAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.HealthLog, 0, len(all))
	for _, h := range all {
		if h.Category == c {
			out = append(out, h)
		}
	}
	return out, nil
}

// Search matches term case-insensitively against title, description, tags
// and notes.
func (s *RecordService) Search(ctx context.Context, ownerID int64, term string) ([]*models.HealthLog, error) {
	all, err := s.GetAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))

	out := make([]*models.HealthLog, 0, len(all))
	for _, h := range all {
		if matches(h, needle) {
			out = append(out, h)
		}
	}
	return out, nil
}

func matches(h *models.HealthLog, needle string) bool {
	if strings.Contains(strings.ToLower(h.Title), needle) ||
		strings.Contains(strings.ToLower(h.Description), needle) ||
		strings.Contains(strings.ToLower(h.Notes), needle) {
		return true
	}
	for _, t := range h.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Rekey re-encrypts every record of the owner under newKey in one
// transaction and binds the service to newKey. If any row cannot be read
// with the current key nothing is written and the current key stays bound.
func (s *RecordService) Rekey(ctx context.Context, ownerID int64, newKey string) error {
	const op = "re-encrypt health logs"
	if newKey == "" {
		return common.Ef(common.KindInvalidInput, op, "new key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	payloads := make(map[int64]string, len(rows))
	for _, row := range rows {
		plain, err := cryptox.Decrypt(row.Payload, s.key)
		if err != nil {
			s.logger.Error(ctx, "unreadable health log blocks re-encryption", "local_id", row.ID, "error", err)
			return common.Ef(common.KindDecryptionFailed, op, "health log %d cannot be read with the current key", row.ID)
		}
		ct, err := cryptox.Encrypt(plain, newKey)
		if err != nil {
			return common.E(common.KindEncryptionFailed, op, err)
		}
		payloads[row.ID] = ct
	}

	if err := s.repo.ReplacePayloads(ctx, payloads); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	s.key = newKey

	s.logger.Info(ctx, "health logs re-encrypted", "count", len(payloads))
	return nil
}

func (s *RecordService) seal(h *models.HealthLog, key string) (string, error) {
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	defer cryptox.Wipe(b)
	return cryptox.Encrypt(string(b), key)
}

func (s *RecordService) open(row *models.EncryptedRecord, key string) (*models.HealthLog, error) {
	plain, err := cryptox.Decrypt(row.Payload, key)
	if err != nil {
		return nil, err
	}
	var h models.HealthLog
	if err := json.Unmarshal([]byte(plain), &h); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	h.LocalID = row.ID
	return &h, nil
}

// sanitize trims every string field and drops blank tags.
func sanitize(h *models.HealthLog) {
	h.Title = strings.TrimSpace(h.Title)
	h.Category = models.Category(strings.TrimSpace(string(h.Category)))
	h.Date = strings.TrimSpace(h.Date)
	h.Description = strings.TrimSpace(h.Description)
	h.Notes = strings.TrimSpace(h.Notes)

	if h.Tags == nil {
		return
	}
	tags := make([]string, 0, len(h.Tags))
	for _, t := range h.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	h.Tags = tags
}

var categoryValues = func() []interface{} {
	out := make([]interface{}, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c
	}
	return out
}()

var errSeverityRange = errors.New("must be between 1 and 5")

func (s *RecordService) validate(h *models.HealthLog) error {
	today, _ := time.Parse(models.DateLayout, s.now().Format(models.DateLayout))

	return validation.ValidateStruct(h,
		validation.Field(&h.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&h.Category, validation.Required, validation.In(categoryValues...)),
		validation.Field(&h.Severity, validation.By(func(v interface{}) error {
			p, _ := v.(*int)
			if p != nil && (*p < 1 || *p > 5) {
				return errSeverityRange
			}
			return nil
		})),
		validation.Field(&h.Date,
			validation.Required,
			validation.Date(models.DateLayout).Max(today).RangeError("must not be in the future")),
		validation.Field(&h.Description, validation.RuneLength(0, 2000)),
		validation.Field(&h.Notes, validation.RuneLength(0, 5000)),
		validation.Field(&h.Tags, validation.Length(0, 20), validation.Each(validation.RuneLength(1, 50))),
	)
}
