package experience

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

func TestStoreAppendAndGet(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("p1", validSuccessRecord()))
	require.NoError(t, store.Append("p1", validFailedRecord()))
	require.NoError(t, store.Append("p2", validFailedRecord()))

	recs, ok := store.Get("p1")
	require.True(t, ok)
	assert.Len(t, recs, 2)

	assert.True(t, store.Has("p2"))
	assert.False(t, store.Has("p3"))
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"p1", "p2"}, store.Keys())
}

func TestStoreAppendRejectsInvalid(t *testing.T) {
	store := NewStore()

	err := store.Append("", validSuccessRecord())
	assert.Error(t, err)

	bad := validSuccessRecord()
	bad.Perspective = ""
	err = store.Append("p1", bad)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestStoreGenerationAdvancesOnAppend(t *testing.T) {
	store := NewStore()
	g0 := store.Generation()
	require.NoError(t, store.Append("p1", validSuccessRecord()))
	assert.Greater(t, store.Generation(), g0)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("p1", validSuccessRecord()))
	require.NoError(t, store.Append("p2", validFailedRecord()))

	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, store.Save(path))

	loaded, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.Keys(), loaded.Keys())

	recs, ok := loaded.Get("p1")
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, FlagSuccess, recs[0].Flag)
	assert.Equal(t, "QuerySet.order_by", recs[0].EntryPoint.Element)

	recs, _ = loaded.Get("p2")
	assert.Len(t, recs[0].PositioningReflections, ReflectionCount)
}

func TestLoadStore_Missing(t *testing.T) {
	_, err := LoadStore(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, errors.MissingArtifact, errors.Code(err))
}

func TestMergeStores_LastWriterWins(t *testing.T) {
	older := NewStore()
	require.NoError(t, older.Append("p1", validSuccessRecord()))
	require.NoError(t, older.Append("p2", validFailedRecord()))

	newer := NewStore()
	overwrite := validFailedRecord()
	require.NoError(t, newer.Append("p1", overwrite))
	require.NoError(t, newer.Append("p3", validSuccessRecord()))

	merged := MergeStores(older, newer)
	assert.Equal(t, []string{"p1", "p2", "p3"}, merged.Keys())

	recs, _ := merged.Get("p1")
	require.Len(t, recs, 1)
	assert.Equal(t, FlagFailed, recs[0].Flag)

	// inputs untouched
	recs, _ = older.Get("p1")
	assert.Equal(t, FlagSuccess, recs[0].Flag)
}
