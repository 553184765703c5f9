package records

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupRepo returns an initialized repository whose clock advances one
// second per call, so created_at ordering is deterministic.
func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	r := NewSQLiteRepository(openDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	require.NoError(t, r.Init(context.Background()))
	return r
}

func ids(recs []*models.EncryptedRecord) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestNotInitialized(t *testing.T) {
	r := NewSQLiteRepository(openDB(t))
	ctx := context.Background()

	_, err := r.Insert(ctx, 1, "p")
	require.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = r.GetByID(ctx, 1)
	require.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = r.GetByOwner(ctx, 1)
	require.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = r.GetUnsynced(ctx, 1)
	require.ErrorIs(t, err, common.ErrNotInitialized)
	require.ErrorIs(t, r.Update(ctx, 1, "p"), common.ErrNotInitialized)
	require.ErrorIs(t, r.Delete(ctx, 1), common.ErrNotInitialized)
	require.ErrorIs(t, r.MarkSynced(ctx, 1, "x"), common.ErrNotInitialized)
	require.ErrorIs(t, r.ClearSynced(ctx, 1), common.ErrNotInitialized)
	require.ErrorIs(t, r.ReplacePayloads(ctx, map[int64]string{1: "p"}), common.ErrNotInitialized)
	require.ErrorIs(t, r.ClearAll(ctx), common.ErrNotInitialized)
}

func TestInit_Idempotent(t *testing.T) {
	r := setupRepo(t)
	require.NoError(t, r.Init(context.Background()))
}

func TestInsertAndGetByID(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	id, err := r.Insert(ctx, 7, "cipher-1")
	require.NoError(t, err)
	require.NotZero(t, id)

	rec, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, int64(7), rec.OwnerID)
	assert.Equal(t, "cipher-1", rec.Payload)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Nil(t, rec.SyncedAt)
	assert.Nil(t, rec.RemoteID)
}

func TestGetByID_Missing(t *testing.T) {
	r := setupRepo(t)

	rec, err := r.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestOrdering(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	a, _ := r.Insert(ctx, 1, "a")
	b, _ := r.Insert(ctx, 1, "b")
	_, _ = r.Insert(ctx, 2, "other owner")
	c, _ := r.Insert(ctx, 1, "c")

	byOwner, err := r.GetByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{c, b, a}, ids(byOwner))

	unsynced, err := r.GetUnsynced(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b, c}, ids(unsynced))
}

func TestUpdate_KeepsSyncState(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	id, _ := r.Insert(ctx, 1, "v1")
	require.NoError(t, r.MarkSynced(ctx, id, "remote-1"))
	before, _ := r.GetByID(ctx, id)

	require.NoError(t, r.Update(ctx, id, "v2"))

	after, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", after.Payload)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	require.NotNil(t, after.RemoteID)
	assert.Equal(t, "remote-1", *after.RemoteID)
	assert.Equal(t, before.SyncedAt, after.SyncedAt)
}

func TestUpdate_Missing(t *testing.T) {
	r := setupRepo(t)
	require.ErrorIs(t, r.Update(context.Background(), 42, "x"), common.ErrNotFound)
}

func TestMarkSynced(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	a, _ := r.Insert(ctx, 1, "a")
	b, _ := r.Insert(ctx, 1, "b")

	require.NoError(t, r.MarkSynced(ctx, a, "remote-a"))

	rec, _ := r.GetByID(ctx, a)
	assert.True(t, rec.IsSynced())
	assert.Equal(t, "remote-a", *rec.RemoteID)

	unsynced, err := r.GetUnsynced(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids(unsynced))

	require.ErrorIs(t, r.MarkSynced(ctx, 999, "x"), common.ErrNotFound)
	require.ErrorIs(t, r.MarkSynced(ctx, b, ""), common.ErrInvalidInput)
}

func TestClearSynced(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	id, _ := r.Insert(ctx, 1, "a")
	require.NoError(t, r.MarkSynced(ctx, id, "remote"))
	require.NoError(t, r.ClearSynced(ctx, id))

	rec, _ := r.GetByID(ctx, id)
	assert.Nil(t, rec.SyncedAt)
	assert.Nil(t, rec.RemoteID)
}

func TestDelete(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	id, _ := r.Insert(ctx, 1, "a")
	require.NoError(t, r.Delete(ctx, id))

	rec, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.ErrorIs(t, r.Delete(ctx, id), common.ErrNotFound)
}

func TestReplacePayloads_AllOrNothing(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	a, _ := r.Insert(ctx, 1, "a")
	b, _ := r.Insert(ctx, 1, "b")

	require.NoError(t, r.ReplacePayloads(ctx, map[int64]string{a: "a2", b: "b2"}))
	recA, _ := r.GetByID(ctx, a)
	recB, _ := r.GetByID(ctx, b)
	assert.Equal(t, "a2", recA.Payload)
	assert.Equal(t, "b2", recB.Payload)

	err := r.ReplacePayloads(ctx, map[int64]string{a: "a3", 999: "nope"})
	require.ErrorIs(t, err, common.ErrNotFound)
	recA, _ = r.GetByID(ctx, a)
	assert.Equal(t, "a2", recA.Payload)
}

func TestClearAll(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	_, _ = r.Insert(ctx, 1, "a")
	_, _ = r.Insert(ctx, 2, "b")
	require.NoError(t, r.ClearAll(ctx))

	for _, owner := range []int64{1, 2} {
		recs, err := r.GetByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, recs)
	}
}
