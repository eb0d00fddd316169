package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSelectionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	ids := []string{"email-01", "email-02", "email-03"}
	require.NoError(t, ss.SaveSelection(ctx, "default", ids))

	loaded, ok, err := ss.LoadSelection(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ids, loaded)
}

func TestSelectionStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	require.NoError(t, ss.SaveSelection(ctx, "default", []string{"email-01"}))
	require.NoError(t, ss.SaveSelection(ctx, "default", []string{"email-02", "email-03"}))

	loaded, ok, err := ss.LoadSelection(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"email-02", "email-03"}, loaded)
}

func TestSelectionStore_EmptySetPersists(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	require.NoError(t, ss.SaveSelection(ctx, "default", nil))

	loaded, ok, err := ss.LoadSelection(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, loaded)
}

func TestSelectionStore_MissingSlot(t *testing.T) {
	ss := NewSelectionStore(openTestStore(t))

	loaded, ok, err := ss.LoadSelection(context.Background(), "never-saved")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, loaded)
}

func TestSelectionStore_CorruptedRow(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	ss := NewSelectionStore(store)

	_, err := store.DB().ExecContext(ctx,
		`INSERT INTO selection_state(slot, ids, updated_at) VALUES('default', 'not-json', 0)`)
	require.NoError(t, err)

	loaded, ok, err := ss.LoadSelection(ctx, "default")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, loaded)
}

func TestSelectionStore_Clear(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	require.NoError(t, ss.SaveSelection(ctx, "default", []string{"email-01"}))
	require.NoError(t, ss.ClearSelection(ctx, "default"))

	_, ok, err := ss.LoadSelection(ctx, "default")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Clearing an absent slot is a no-op
	assert.NoError(t, ss.ClearSelection(ctx, "default"))
}

func TestSelectionStore_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	assert.Error(t, ss.SaveSelection(ctx, "", []string{"email-01"}))

	var uninitialized *SelectionStore
	assert.Error(t, uninitialized.SaveSelection(ctx, "default", nil))
	_, _, err := uninitialized.LoadSelection(ctx, "default")
	assert.Error(t, err)
}

func TestSelectionStore_SlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	ss := NewSelectionStore(openTestStore(t))

	require.NoError(t, ss.SaveSelection(ctx, "paralegal", []string{"email-01"}))
	require.NoError(t, ss.SaveSelection(ctx, "attorney", []string{"email-02"}))

	loaded, ok, err := ss.LoadSelection(ctx, "attorney")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"email-02"}, loaded)
}
