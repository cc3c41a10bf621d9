package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFrames(t *testing.T, dir string, seconds []int64, sizeBytes int) {
	t.Helper()
	for _, s := range seconds {
		require.NoError(t, os.WriteFile(framePath(dir, s), make([]byte, sizeBytes), 0o644))
	}
}

func TestFrameCacheLookup_FindsExactAndNearestEarlier(t *testing.T) {
	dir := t.TempDir()
	seedFrames(t, dir, []int64{0, 2, 5, 9}, 10)

	l := NewFrameCacheLookup(dir, 1<<20)

	path, err := l.Lookup(5)
	require.NoError(t, err)
	assert.Equal(t, framePath(dir, 5), path)

	path, err = l.Lookup(7)
	require.NoError(t, err)
	assert.Equal(t, framePath(dir, 5), path)

	path, err = l.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, framePath(dir, 0), path)
}

func TestFrameCacheLookup_EvictsLeastRecentlyAccessedOverBudget(t *testing.T) {
	dir := t.TempDir()
	seedFrames(t, dir, []int64{0, 1}, 100)

	l := NewFrameCacheLookup(dir, 250) // budget fits two frames

	_, err := l.Lookup(0)
	require.NoError(t, err)
	_, err = l.Lookup(1)
	require.NoError(t, err)
	// A third frame pushes the cache over budget. Lookup(0) is now
	// least-recently accessed; Lookup(2) should evict it.
	seedFrames(t, dir, []int64{2}, 100)
	_, err = l.Lookup(2)
	require.NoError(t, err)

	_, errStat0 := os.Stat(framePath(dir, 0))
	_, errStat2 := os.Stat(framePath(dir, 2))
	assert.Error(t, errStat0, "oldest-accessed frame should have been evicted")
	assert.NoError(t, errStat2)
}

func TestFrameCacheLookup_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	l := NewFrameCacheLookup(dir, 1<<20)
	_, err := l.Lookup(0)
	assert.Error(t, err)
}

func TestFramePathFormat(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", "0000000042.jpg"), framePath("cache", 42))
}
