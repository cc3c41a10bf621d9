package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_AddListRemoveClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	lib := NewLibrary(path)

	item, err := lib.Add("/media/clip.mp4", MediaVideo, "/media/clip.thumb.jpg", 5000, 1920, 1080)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	list := lib.List()
	require.Len(t, list, 1)
	assert.Equal(t, "/media/clip.mp4", list[0].CanonicalPath)

	require.NoError(t, lib.MarkFavorite(item.ID, true))
	assert.True(t, lib.List()[0].Favorite)

	require.NoError(t, lib.Remove(item.ID))
	assert.Empty(t, lib.List())

	_, err = lib.Add("/media/a.mp4", MediaVideo, "", 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, lib.Clear())
	assert.Empty(t, lib.List())
}

func TestLibrary_RemoveUnknownIDFails(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "library.json"))
	assert.Error(t, lib.Remove("does-not-exist"))
}

func TestLibrary_PersistsAcrossLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	lib := NewLibrary(path)
	item, err := lib.Add("/media/clip.mp4", MediaVideo, "", 1000, 640, 360)
	require.NoError(t, err)

	reloaded := NewLibrary(path)
	require.NoError(t, reloaded.Load())
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, item.ID, list[0].ID)
	assert.Equal(t, "/media/clip.mp4", list[0].CanonicalPath)
}

func TestLibrary_LoadMissingFileIsNotAnError(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nonexistent.json"))
	require.NoError(t, lib.Load())
	assert.Empty(t, lib.List())
}

func TestTemplateStore_AddListFiltersByCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	store := NewTemplateStore(path)

	_, err := store.Add("Lower Third A", "lower_third", 5, 85, 30)
	require.NoError(t, err)
	_, err = store.Add("Badge", "badge", 80, 5, 10)
	require.NoError(t, err)
	_, err = store.Add("Lower Third B", "lower_third", 5, 90, 30)
	require.NoError(t, err)

	all := store.List("")
	assert.Len(t, all, 3)

	lowerThirds := store.List("lower_third")
	require.Len(t, lowerThirds, 2)
	assert.Equal(t, "Lower Third A", lowerThirds[0].Name)
	assert.Equal(t, "Lower Third B", lowerThirds[1].Name)
}

func TestTemplateStore_RemovePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	store := NewTemplateStore(path)
	tpl, err := store.Add("Watermark", "watermark", 90, 90, 15)
	require.NoError(t, err)

	require.NoError(t, store.Remove(tpl.ID))
	assert.Empty(t, store.List(""))

	reloaded := NewTemplateStore(path)
	require.NoError(t, reloaded.Load())
	assert.Empty(t, reloaded.List(""))
}

func TestTemplateStore_RemoveUnknownIDFails(t *testing.T) {
	store := NewTemplateStore(filepath.Join(t.TempDir(), "templates.json"))
	assert.Error(t, store.Remove("missing"))
}
