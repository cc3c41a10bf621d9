package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.fmm.json")

	p := model.NewProjectState()
	p.VideoPath = "input.mp4"
	p.DurationMs = 60000
	track := model.NewSubtitleTrack("Default", "en")
	seg, err := model.NewSubtitleSegment(1000, 2000, "hello world")
	require.NoError(t, err)
	_, err = track.AddSegment(seg)
	require.NoError(t, err)
	p.AddSubtitleTrack(track)

	store := NewStore(nil)
	require.NoError(t, store.Save(p, path))

	loaded, warnings, err := store.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings, "input.mp4 does not exist on disk, so it must warn, not fail")
	require.Len(t, loaded.SubtitleTracks, 1)
	assert.Equal(t, "hello world", loaded.SubtitleTracks[0].Segments[0].Text)
	assert.Equal(t, float32(1.0), loaded.SubtitleTracks[0].Segments[0].Volume)
}

func TestStore_Save_NeverLeavesPartialFileOnDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.fmm.json")
	original := []byte(`{"version":4,"video_path":"original.mp4"}`)
	require.NoError(t, os.WriteFile(path, original, 0644))

	store := NewStore(nil)
	// Saving to a directory that doesn't exist for the tmp file fails
	// before any rename, so the original destination must be untouched.
	err := store.Save(model.NewProjectState(), filepath.Join(dir, "missing-subdir", "project.fmm.json"))
	require.Error(t, err)

	stillThere, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, stillThere)
}

func TestStore_Load_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.fmm.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewStore(nil)
	_, _, err := store.Load(path)
	require.Error(t, err)
	var fe *fmmerrors.FmmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeMalformedJSON, fe.Code)
}

func TestStore_Load_UnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "future.fmm.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99}`), 0644))

	store := NewStore(nil)
	_, _, err := store.Load(path)
	require.Error(t, err)
	var fe *fmmerrors.FmmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeUnsupportedVersion, fe.Code)
}

func TestStore_Load_MigratesV1ToCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v1.fmm.json")
	v1Doc := map[string]any{
		"video_path":  "old.mp4",
		"duration_ms": 5000,
		"segments": []map[string]any{
			{"start_ms": 0, "end_ms": 1000, "text": "legacy segment"},
		},
	}
	data, err := json.Marshal(v1Doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	store := NewStore(nil)
	loaded, _, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.SubtitleTracks, 1)
	assert.Equal(t, "Default", loaded.SubtitleTracks[0].Name)
	require.Len(t, loaded.SubtitleTracks[0].Segments, 1)
	assert.Equal(t, "legacy segment", loaded.SubtitleTracks[0].Segments[0].Text)
	assert.Equal(t, float32(1.0), loaded.SubtitleTracks[0].Segments[0].Volume, "v3->v4 migration defaults volume to 1.0")
}

func TestMigrations_V2ToV3_DefaultsAudioFields(t *testing.T) {
	doc := map[string]any{
		"tracks": []any{
			map[string]any{"name": "Default", "language": "en"},
		},
	}
	migrated := migrateV2ToV3(doc)
	tracks := migrated["tracks"].([]any)
	track := tracks[0].(map[string]any)
	assert.Equal(t, int64(0), track["audio_start_ms"])
	assert.Equal(t, int64(0), track["audio_duration_ms"])
}
