package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/cryptox"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID int64 = 1

func headache() models.Draft {
	return models.Draft{
		Title:    "Morning Headache",
		Category: models.CategorySymptom,
		Severity: intPtr(2),
		Date:     "2024-01-15",
	}
}

func TestNewRecordService_EmptyKey(t *testing.T) {
	repo, _ := setupRecords(t)
	_, err := NewRecordService(repo, "", logging.Discard())
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreate_EncryptsPayload(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	h, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Positive(t, h.LocalID)

	row, err := repo.GetByID(ctx, h.LocalID)
	require.NoError(t, err)
	assert.NotContains(t, row.Payload, "Headache")
	assert.Nil(t, row.SyncedAt)

	got, err := s.Get(ctx, h.LocalID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, "Morning Headache", got.Title)
	assert.Equal(t, 2, *got.Severity)
}

func TestCreate_Sanitizes(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")

	d := headache()
	d.Title = "  Headache \n"
	d.Tags = []string{" head ", "", "   ", "pain"}

	h, err := s.Create(context.Background(), ownerID, d)
	require.NoError(t, err)
	assert.Equal(t, "Headache", h.Title)
	assert.Equal(t, []string{"head", "pain"}, h.Tags)
}

func TestCreate_ValidationAggregatesFields(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	_, err := s.Create(ctx, ownerID, models.Draft{
		Title:    "   ",
		Category: "bogus",
		Severity: intPtr(7),
		Date:     "2099-01-01",
	})
	require.ErrorIs(t, err, common.ErrValidationFailed)
	for _, field := range []string{"title", "category", "severity", "date"} {
		assert.Contains(t, err.Error(), field)
	}

	rows, err := repo.GetByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreate_ValidationRules(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")

	long := func(n int) string {
		b := make([]rune, n)
		for i := range b {
			b[i] = 'ж'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		edit  func(d *models.Draft)
		valid bool
	}{
		{"ok", func(d *models.Draft) {}, true},
		{"no severity", func(d *models.Draft) { d.Severity = nil }, true},
		{"severity zero", func(d *models.Draft) { d.Severity = intPtr(0) }, false},
		{"severity five", func(d *models.Draft) { d.Severity = intPtr(5) }, true},
		{"title 200 runes", func(d *models.Draft) { d.Title = long(200) }, true},
		{"title 201 runes", func(d *models.Draft) { d.Title = long(201) }, false},
		{"missing category", func(d *models.Draft) { d.Category = "" }, false},
		{"missing date", func(d *models.Draft) { d.Date = "" }, false},
		{"bad date", func(d *models.Draft) { d.Date = "15/01/2024" }, false},
		{"today", func(d *models.Draft) { d.Date = "2024-06-01" }, true},
		{"tomorrow", func(d *models.Draft) { d.Date = "2024-06-02" }, false},
		{"long description", func(d *models.Draft) { d.Description = long(2001) }, false},
		{"long notes", func(d *models.Draft) { d.Notes = long(5001) }, false},
		{"too many tags", func(d *models.Draft) {
			d.Tags = make([]string, 21)
			for i := range d.Tags {
				d.Tags[i] = "t"
			}
		}, false},
		{"long tag", func(d *models.Draft) { d.Tags = []string{long(51)} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := headache()
			tt.edit(&d)
			_, err := s.Create(context.Background(), ownerID, d)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrValidationFailed)
			}
		})
	}
}

func TestGet_MissingAndCorrupted(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	got, err := s.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	id, err := repo.Insert(ctx, ownerID, "not a ciphertext")
	require.NoError(t, err)
	_, err = s.Get(ctx, id)
	require.ErrorIs(t, err, common.ErrDecryptionFailed)

	h, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)
	other := newRecordService(t, repo, "k2")
	_, err = other.Get(ctx, h.LocalID)
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestGetAll_SkipsCorruptedAndSortsByDate(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	for _, date := range []string{"2024-01-10", "2024-03-01", "2024-02-05"} {
		d := headache()
		d.Date = date
		_, err := s.Create(ctx, ownerID, d)
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, ownerID, "garbage")
	require.NoError(t, err)

	all, err := s.GetAll(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-01", all[0].Date)
	assert.Equal(t, "2024-02-05", all[1].Date)
	assert.Equal(t, "2024-01-10", all[2].Date)
}

func TestEndToEndScenario(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	created, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)

	all, err := s.GetAll(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Morning Headache", all[0].Title)
	assert.Equal(t, models.CategorySymptom, all[0].Category)
	assert.Equal(t, 2, *all[0].Severity)
	assert.Equal(t, "2024-01-15", all[0].Date)
	assert.NotEmpty(t, all[0].ID)

	title := "Updated"
	_, err = s.Update(ctx, created.LocalID, models.Patch{ID: all[0].ID, Title: &title})
	require.NoError(t, err)

	all, err = s.GetAll(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Updated", all[0].Title)
	assert.Equal(t, models.CategorySymptom, all[0].Category)
	assert.Equal(t, created.ID, all[0].ID)

	require.NoError(t, s.Delete(ctx, created.LocalID))
	all, err = s.GetAll(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_Errors(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	h, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)
	title := "x"

	_, err = s.Update(ctx, h.LocalID, models.Patch{Title: &title})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = s.Update(ctx, 999, models.Patch{ID: h.ID, Title: &title})
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Update(ctx, h.LocalID, models.Patch{ID: "someone-else", Title: &title})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	empty := ""
	_, err = s.Update(ctx, h.LocalID, models.Patch{ID: h.ID, Title: &empty})
	require.ErrorIs(t, err, common.ErrValidationFailed)

	got, err := s.Get(ctx, h.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Headache", got.Title)
}

func TestUpdate_SyncMarker(t *testing.T) {
	ctx := context.Background()
	title := "Edited"

	t.Run("kept by default", func(t *testing.T) {
		repo, _ := setupRecords(t)
		s := newRecordService(t, repo, "k1")
		h, err := s.Create(ctx, ownerID, headache())
		require.NoError(t, err)
		require.NoError(t, repo.MarkSynced(ctx, h.LocalID, "r1"))

		_, err = s.Update(ctx, h.LocalID, models.Patch{ID: h.ID, Title: &title})
		require.NoError(t, err)

		row, err := repo.GetByID(ctx, h.LocalID)
		require.NoError(t, err)
		assert.True(t, row.IsSynced())
	})

	t.Run("cleared with resync on edit", func(t *testing.T) {
		repo, _ := setupRecords(t)
		s := newRecordService(t, repo, "k1", WithResyncOnEdit(true))
		h, err := s.Create(ctx, ownerID, headache())
		require.NoError(t, err)
		require.NoError(t, repo.MarkSynced(ctx, h.LocalID, "r1"))

		_, err = s.Update(ctx, h.LocalID, models.Patch{ID: h.ID, Title: &title})
		require.NoError(t, err)

		row, err := repo.GetByID(ctx, h.LocalID)
		require.NoError(t, err)
		assert.False(t, row.IsSynced())
		assert.Nil(t, row.RemoteID)
	})
}

func TestDelete_NotFound(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	require.ErrorIs(t, s.Delete(context.Background(), 42), common.ErrNotFound)
}

func TestDelete_OtherAccountsRecord(t *testing.T) {
	repo, _ := setupRecords(t)
	alice := newRecordService(t, repo, "alice-key")
	bob := newRecordService(t, repo, "bob-key")
	ctx := context.Background()

	h, err := alice.Create(ctx, ownerID, headache())
	require.NoError(t, err)

	require.ErrorIs(t, bob.Delete(ctx, h.LocalID), common.ErrNotFound)

	all, err := alice.GetAll(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, h.ID, all[0].ID)

	require.NoError(t, alice.Delete(ctx, h.LocalID))
}

func TestSearchAndFindByCategory(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "k1")
	ctx := context.Background()

	drafts := []models.Draft{
		{Title: "Headache", Category: models.CategorySymptom, Date: "2024-01-01", Tags: []string{"Migraine"}},
		{Title: "Ibuprofen", Category: models.CategoryMedication, Date: "2024-01-02", Notes: "after headache"},
		{Title: "Run", Category: models.CategoryExercise, Date: "2024-01-03", Description: "5k in the park"},
	}
	for _, d := range drafts {
		_, err := s.Create(ctx, ownerID, d)
		require.NoError(t, err)
	}

	found, err := s.Search(ctx, ownerID, "HEADACHE")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Ibuprofen", found[0].Title)
	assert.Equal(t, "Headache", found[1].Title)

	found, err = s.Search(ctx, ownerID, "migr")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = s.Search(ctx, ownerID, "park")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Run", found[0].Title)

	found, err = s.FindByCategory(ctx, ownerID, models.CategoryMedication)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ibuprofen", found[0].Title)

	found, err = s.FindByCategory(ctx, ownerID, models.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRekey(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "old-key")
	ctx := context.Background()

	h, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)
	_, err = s.Create(ctx, 2, headache())
	require.NoError(t, err)

	require.ErrorIs(t, s.Rekey(ctx, ownerID, ""), common.ErrInvalidInput)
	require.NoError(t, s.Rekey(ctx, ownerID, "new-key"))

	got, err := s.Get(ctx, h.LocalID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)

	row, err := repo.GetByID(ctx, h.LocalID)
	require.NoError(t, err)
	_, err = cryptox.Decrypt(row.Payload, "old-key")
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestRekey_UnreadableRowAborts(t *testing.T) {
	repo, _ := setupRecords(t)
	s := newRecordService(t, repo, "old-key")
	ctx := context.Background()

	h, err := s.Create(ctx, ownerID, headache())
	require.NoError(t, err)
	_, err = repo.Insert(ctx, ownerID, "not a ciphertext")
	require.NoError(t, err)

	require.ErrorIs(t, s.Rekey(ctx, ownerID, "new-key"), common.ErrDecryptionFailed)

	// still bound to the old key, and the readable row was not rewritten
	got, err := s.Get(ctx, h.LocalID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)

	row, err := repo.GetByID(ctx, h.LocalID)
	require.NoError(t, err)
	_, err = cryptox.Decrypt(row.Payload, "old-key")
	require.NoError(t, err)
}
