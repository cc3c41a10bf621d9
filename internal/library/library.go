// Package library implements §4.10: a persistent registry of user-imported
// media (video/image/audio) and reusable overlay templates, each stored as
// its own JSON index file via the same atomic-save convention as
// internal/persistence. Neither is on the playback critical path; this is
// CRUD over a store, grounded on the teacher's storage_service.go file
// management conventions (UUID-keyed entries, filepath.Glob lookups).
package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// MediaKind names the imported asset's type.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// MediaItem is one imported asset, echoing the teacher's VideoInfo
// (id/filename/size) but widened to cover probed duration/dimensions and
// a thumbnail path, and to favorite-marking.
type MediaItem struct {
	ID            string    `json:"id"`
	CanonicalPath string    `json:"canonical_path"`
	Kind          MediaKind `json:"kind"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	DurationMs    int64     `json:"duration_ms,omitempty"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	Favorite      bool      `json:"favorite"`
	ImportedAtUnixMs int64  `json:"imported_at_unix_ms"`
}

// Library is an in-memory index of MediaItems, persisted to disk as one
// JSON document.
type Library struct {
	indexPath string
	items     map[string]*MediaItem
	order     []string // insertion order, for stable List()
}

type libraryFile struct {
	Items []*MediaItem `json:"items"`
}

// NewLibrary opens (or prepares to create) the index file at indexPath.
func NewLibrary(indexPath string) *Library {
	return &Library{indexPath: indexPath, items: make(map[string]*MediaItem)}
}

// Load reads the index file, if present. A missing file is not an error —
// it means an empty library, matching persistence.Store's "version 1 file
// implicit" tolerance for absent optional state.
func (l *Library) Load() error {
	raw, err := os.ReadFile(l.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var f libraryFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmmerrors.MalformedJSON(err)
	}
	l.items = make(map[string]*MediaItem, len(f.Items))
	l.order = l.order[:0]
	for _, it := range f.Items {
		l.items[it.ID] = it
		l.order = append(l.order, it.ID)
	}
	return nil
}

// save writes the index atomically: temp file + rename, matching
// persistence.Store.Save's crash-safety convention.
func (l *Library) save() error {
	f := libraryFile{Items: make([]*MediaItem, 0, len(l.order))}
	for _, id := range l.order {
		f.Items = append(f.Items, l.items[id])
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmmerrors.MalformedJSON(err)
	}

	if err := os.MkdirAll(filepath.Dir(l.indexPath), 0755); err != nil {
		return fmmerrors.DiskFull(l.indexPath)
	}

	tmpPath := l.indexPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmmerrors.DiskFull(tmpPath)
	}
	if err := os.Rename(tmpPath, l.indexPath); err != nil {
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(l.indexPath)
	}
	return nil
}

// Add registers a new media item, assigning it a fresh id the way the
// teacher's StoreVideo mints one via uuid.New().String().
func (l *Library) Add(canonicalPath string, kind MediaKind, thumbnailPath string, durationMs int64, width, height int) (*MediaItem, error) {
	item := &MediaItem{
		ID:               uuid.New().String(),
		CanonicalPath:    canonicalPath,
		Kind:             kind,
		ThumbnailPath:    thumbnailPath,
		DurationMs:       durationMs,
		Width:            width,
		Height:           height,
		ImportedAtUnixMs: time.Now().UnixMilli(),
	}
	l.items[item.ID] = item
	l.order = append(l.order, item.ID)
	if err := l.save(); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes one item by id.
func (l *Library) Remove(id string) error {
	if _, ok := l.items[id]; !ok {
		return fmmerrors.NotFoundByID(id)
	}
	delete(l.items, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return l.save()
}

// Clear empties the library entirely.
func (l *Library) Clear() error {
	l.items = make(map[string]*MediaItem)
	l.order = nil
	return l.save()
}

// List returns all items in insertion order.
func (l *Library) List() []*MediaItem {
	out := make([]*MediaItem, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out
}

// MarkFavorite sets an item's favorite flag.
func (l *Library) MarkFavorite(id string, favorite bool) error {
	item, ok := l.items[id]
	if !ok {
		return fmmerrors.NotFoundByID(id)
	}
	item.Favorite = favorite
	return l.save()
}

// TemplateCategory groups templates for host-side browsing (e.g. "lower
// third", "badge", "watermark").
type TemplateCategory string

// Template is a reusable overlay preset: a default position/scale an
// ImageOverlay or TextOverlay is seeded from when a user applies it.
type Template struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     TemplateCategory  `json:"category"`
	XPercent     float32           `json:"x_percent"`
	YPercent     float32           `json:"y_percent"`
	ScalePercent float32           `json:"scale_percent"`
}

// TemplateStore is a CRUD index of Templates, persisted the same way as
// Library.
type TemplateStore struct {
	indexPath string
	items     map[string]*Template
	order     []string
}

type templateFile struct {
	Templates []*Template `json:"templates"`
}

// NewTemplateStore opens (or prepares to create) the index file at
// indexPath.
func NewTemplateStore(indexPath string) *TemplateStore {
	return &TemplateStore{indexPath: indexPath, items: make(map[string]*Template)}
}

// Load reads the index file, if present.
func (s *TemplateStore) Load() error {
	raw, err := os.ReadFile(s.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var f templateFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmmerrors.MalformedJSON(err)
	}
	s.items = make(map[string]*Template, len(f.Templates))
	s.order = s.order[:0]
	for _, t := range f.Templates {
		s.items[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return nil
}

func (s *TemplateStore) save() error {
	f := templateFile{Templates: make([]*Template, 0, len(s.order))}
	for _, id := range s.order {
		f.Templates = append(f.Templates, s.items[id])
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmmerrors.MalformedJSON(err)
	}
	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0755); err != nil {
		return fmmerrors.DiskFull(s.indexPath)
	}
	tmpPath := s.indexPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmmerrors.DiskFull(tmpPath)
	}
	if err := os.Rename(tmpPath, s.indexPath); err != nil {
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(s.indexPath)
	}
	return nil
}

// Add registers a new template with a fresh id.
func (s *TemplateStore) Add(name string, category TemplateCategory, xPercent, yPercent, scalePercent float32) (*Template, error) {
	t := &Template{
		ID:           uuid.New().String(),
		Name:         name,
		Category:     category,
		XPercent:     xPercent,
		YPercent:     yPercent,
		ScalePercent: scalePercent,
	}
	s.items[t.ID] = t
	s.order = append(s.order, t.ID)
	if err := s.save(); err != nil {
		return nil, err
	}
	return t, nil
}

// Remove deletes one template by id.
func (s *TemplateStore) Remove(id string) error {
	if _, ok := s.items[id]; !ok {
		return fmmerrors.NotFoundByID(id)
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.save()
}

// List returns templates, optionally filtered to one category (empty
// string returns all), sorted by name for stable host-side display.
func (s *TemplateStore) List(category TemplateCategory) []*Template {
	out := make([]*Template, 0, len(s.order))
	for _, id := range s.order {
		t := s.items[id]
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
