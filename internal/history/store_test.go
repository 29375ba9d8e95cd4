package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestNewStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	store.Close()

	// migrations already applied
	store, err = NewStore(path)
	require.NoError(t, err)
	store.Close()
}

func TestStoreReplaceAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	records := []lottery.DrawRecord{
		{Issue: "24003", Date: "2024-01-07", PrimaryNumbers: []int{1, 2, 3, 4, 5, 6}, SecondaryNumbers: []int{9}},
		{Issue: "24002", Date: "2024-01-04", PrimaryNumbers: []int{7, 8, 9, 10, 11, 12}, SecondaryNumbers: []int{1}},
		{Issue: "24001", Date: "2024-01-02", PrimaryNumbers: []int{13, 14, 15, 16, 17, 18}, SecondaryNumbers: []int{16}},
	}
	require.NoError(t, store.Replace(ctx, lottery.GameSSQ, records, "test", 0))

	got, err := store.List(ctx, lottery.GameSSQ, 0)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	got, err = store.List(ctx, lottery.GameSSQ, 2)
	require.NoError(t, err)
	assert.Equal(t, records[:2], got)

	n, err := store.Count(ctx, lottery.GameSSQ)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// other games are untouched
	n, err = store.Count(ctx, lottery.GameDaletou)
	require.NoError(t, err)
	assert.Zero(t, n)

	games, err := store.Games(ctx)
	require.NoError(t, err)
	assert.Equal(t, []lottery.GameType{lottery.GameSSQ}, games)
}

func TestStoreReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := []lottery.DrawRecord{{Issue: "1", PrimaryNumbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}}}
	second := []lottery.DrawRecord{{Issue: "2", PrimaryNumbers: []int{21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40}}}

	require.NoError(t, store.Replace(ctx, lottery.GameHappy8, first, "a", 0))
	require.NoError(t, store.Replace(ctx, lottery.GameHappy8, second, "b", 1))

	got, err := store.List(ctx, lottery.GameHappy8, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Issue)
	assert.Nil(t, got[0].SecondaryNumbers)

	imports, err := store.Imports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "b", imports[0].Source)
	assert.Equal(t, 1, imports[0].Skipped)
	assert.Equal(t, lottery.GameHappy8, imports[0].Game)
}

func TestStoreListEmpty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.List(context.Background(), lottery.GameQXC, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
