package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assocfeed/pkg/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	return store, dir
}

func TestNewStoreEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok := store.Watermark(models.ReportTypeEarnings)
	assert.False(t, ok)
}

func TestAdvanceAndReload(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Advance(models.ReportTypeEarnings, "2023-01-02 03:04:05 UTCUTC"))

	value, ok := store.Watermark(models.ReportTypeEarnings)
	require.True(t, ok)
	assert.Equal(t, "2023-01-02 03:04:05 UTCUTC", value)

	// A fresh store sees the persisted watermark.
	reloaded, err := NewStore(dir, nil)
	require.NoError(t, err)
	value, ok = reloaded.Watermark(models.ReportTypeEarnings)
	require.True(t, ok)
	assert.Equal(t, "2023-01-02 03:04:05 UTCUTC", value)
}

func TestAdvanceOnlyMovesForward(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Advance(models.ReportTypeOrders, "2023-06-01 00:00:00 UTCUTC"))
	require.NoError(t, store.Advance(models.ReportTypeOrders, "2023-01-01 00:00:00 UTCUTC"))

	value, ok := store.Watermark(models.ReportTypeOrders)
	require.True(t, ok)
	assert.Equal(t, "2023-06-01 00:00:00 UTCUTC", value)

	// Equal timestamps do not move the watermark either.
	require.NoError(t, store.Advance(models.ReportTypeOrders, "2023-06-01T00:00:00Z"))
	value, _ = store.Watermark(models.ReportTypeOrders)
	assert.Equal(t, "2023-06-01 00:00:00 UTCUTC", value)
}

func TestAdvanceRejectsUnparseableValue(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Advance(models.ReportTypeEarnings, "not-a-time"))
}

func TestSeed(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Advance(models.ReportTypeEarnings, "2023-06-01 00:00:00 UTCUTC"))
	require.NoError(t, store.Seed(models.ReportTypes, "2023-01-01T00:00:00Z"))

	// Existing watermarks stay put.
	value, _ := store.Watermark(models.ReportTypeEarnings)
	assert.Equal(t, "2023-06-01 00:00:00 UTCUTC", value)

	// Missing watermarks get the floor.
	value, ok := store.Watermark(models.ReportTypeTracking)
	require.True(t, ok)
	assert.Equal(t, "2023-01-01T00:00:00Z", value)
}

func TestSeedEmptyValueIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Seed(models.ReportTypes, ""))
	_, ok := store.Watermark(models.ReportTypeEarnings)
	assert.False(t, ok)
}

func TestSeedRejectsInvalidValue(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Seed(models.ReportTypes, "not-a-time"))
}

func TestNewStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0644))

	_, err := NewStore(dir, nil)
	assert.Error(t, err)
}
