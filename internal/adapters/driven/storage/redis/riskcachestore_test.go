package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func setupStore(t *testing.T) (*RiskCacheStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := Connect(context.Background(), mr.Addr(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestRiskCacheStore_GetMiss(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRiskCacheStore_PutGet(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	entry := domain.RiskCacheEntry{
		ProjectID:    "erp",
		CurrentDate:  "2024-02-01",
		PreviousDate: "2024-01-01",
		PairHash:     "abc",
		RiskJSON:     `{"cost":[]}`,
		GeneratedAt:  time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, entry.RiskJSON, got.RiskJSON)
	assert.Equal(t, entry.ProjectID, got.ProjectID)
	assert.True(t, entry.GeneratedAt.Equal(got.GeneratedAt))

	assert.True(t, mr.Exists(entryKeyPrefix+"abc"))
	members, err := mr.Members(projectKeyPrefix + "erp")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, members)
}

func TestRiskCacheStore_LastWriteWins(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.RiskCacheEntry{PairHash: "abc", ProjectID: "erp", RiskJSON: "first"}))
	require.NoError(t, store.Put(ctx, domain.RiskCacheEntry{PairHash: "abc", ProjectID: "erp", RiskJSON: "second"}))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "second", got.RiskJSON)
}

func TestRiskCacheStore_ListByProject(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.RiskCacheEntry{PairHash: "h2", ProjectID: "erp", CurrentDate: "2024-03-01", RiskJSON: "{}"}))
	require.NoError(t, store.Put(ctx, domain.RiskCacheEntry{PairHash: "h1", ProjectID: "erp", CurrentDate: "2024-02-01", RiskJSON: "{}"}))
	require.NoError(t, store.Put(ctx, domain.RiskCacheEntry{PairHash: "h3", ProjectID: "crm", CurrentDate: "2024-01-01", RiskJSON: "{}"}))

	// A dangling index member is skipped.
	mr.SAdd(projectKeyPrefix+"erp", "gone")

	entries, err := store.ListByProject(ctx, "erp")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h1", entries[0].PairHash)
	assert.Equal(t, "h2", entries[1].PairHash)

	empty, err := store.ListByProject(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRiskCacheStore_CorruptEntry(t *testing.T) {
	store, mr := setupStore(t)
	require.NoError(t, mr.Set(entryKeyPrefix+"bad", "not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestNewRiskCacheStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRiskCacheStore(client)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), domain.RiskCacheEntry{PairHash: "x", ProjectID: "p", RiskJSON: "{}"}))
	_, err := store.Get(context.Background(), "x")
	assert.NoError(t, err)
}
