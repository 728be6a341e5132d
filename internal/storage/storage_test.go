package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

func adapters(t *testing.T) map[string]Adapter {
	t.Helper()
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	b, err := OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return map[string]Adapter{"file": f, "badger": b}
}

func TestRoundTrip(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			in := doc{Items: []string{"a", "b"}, Count: 2}
			require.NoError(t, a.Save(HistoryBlob, in))

			got, ok := LoadValue[doc](a, HistoryBlob)
			require.True(t, ok)
			assert.Equal(t, in, got)

			// Save replaces rather than merges.
			require.NoError(t, a.Save(HistoryBlob, doc{Count: 7}))
			got, ok = LoadValue[doc](a, HistoryBlob)
			require.True(t, ok)
			assert.Equal(t, doc{Count: 7}, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			var d doc
			err := a.Load(ConfigBlob, &d)
			assert.ErrorIs(t, err, ErrAbsent)
			assert.ErrorIs(t, err, os.ErrNotExist)

			_, ok := LoadValue[doc](a, ConfigBlob)
			assert.False(t, ok)
		})
	}
}

func TestFileCorruptBlobIsAbsentAndKept(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, HistoryBlob)
	require.NoError(t, os.WriteFile(path, []byte(`{"items": [`), 0o644))

	var d doc
	err = f.Load(HistoryBlob, &d)
	assert.ErrorIs(t, err, ErrAbsent)
	assert.NotErrorIs(t, err, os.ErrNotExist)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"items": [`, string(raw))
}

func TestFileIgnoresUnknownFields(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryBlob),
		[]byte(`{"items":["x"],"count":1,"version":9}`), 0o644))

	got, ok := LoadValue[doc](f, HistoryBlob)
	require.True(t, ok)
	assert.Equal(t, doc{Items: []string{"x"}, Count: 1}, got)
}

func TestFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, f.Save(HistoryBlob, doc{Count: i}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, HistoryBlob, entries[0].Name())
	assert.True(t, f.Exists(HistoryBlob))

	require.NoError(t, f.Delete(HistoryBlob))
	assert.False(t, f.Exists(HistoryBlob))
	require.NoError(t, f.Delete(HistoryBlob))
}

func TestBadgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, b.Save(ConfigBlob, doc{Count: 3}))
	require.NoError(t, b.Close())

	b, err = OpenBadger(dir)
	require.NoError(t, err)
	defer b.Close()
	got, ok := LoadValue[doc](b, ConfigBlob)
	require.True(t, ok)
	assert.Equal(t, 3, got.Count)
}
