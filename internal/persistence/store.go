// Package persistence saves and loads ProjectState as versioned,
// UTF-8 JSON (".fmm.json"), migrating older schema versions forward and
// writing atomically so a crash mid-save never corrupts the project file.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
	"github.com/fastmoviemaker/fmmcore/pkg/logger"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// Store saves and loads project files.
type Store struct {
	log logger.Logger
}

// NewStore builds a Store. log may be nil, in which case a no-op logger
// is used (mirrors the ambient stack's Logger interface default).
func NewStore(log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{log: log}
}

// Save serializes p to path atomically: write to path+".tmp", fsync, then
// rename over the destination. Any failure before the rename leaves the
// original file untouched.
func (s *Store) Save(p *model.ProjectState, path string) error {
	f := fromProjectState(p)
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmmerrors.MalformedJSON(err)
	}

	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmmerrors.DiskFull(tmpPath)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(tmpPath)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(tmpPath)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmmerrors.DiskFull(path)
	}
	s.log.Infof("saved project to %s", path)
	return nil
}

// Load reads and migrates a project file, returning the decoded
// ProjectState plus a list of non-fatal warnings (currently: missing
// referenced files — see invariant 5). Image overlays are clamped to the
// project duration when that duration is known. Malformed JSON, an
// unsupported (too-new) version, a field of the wrong type, or a broken
// invariant are fatal; an absent field is not detected and decodes to
// its zero value.
func (s *Store) Load(path string) (*model.ProjectState, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmmerrors.ReferencedFileMissing(path)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmmerrors.MalformedJSON(err)
	}

	version := 1
	if v, ok := doc["version"]; ok {
		switch n := v.(type) {
		case float64:
			version = int(n)
		default:
			return nil, nil, fmmerrors.SchemaViolation("version", "must be a number")
		}
	}
	if version > CurrentVersion {
		return nil, nil, fmmerrors.UnsupportedVersion(version)
	}

	doc = migrateToCurrent(doc, version)

	migrated, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmmerrors.MalformedJSON(err)
	}
	var f projectFile
	if err := json.Unmarshal(migrated, &f); err != nil {
		return nil, nil, fmmerrors.SchemaViolation("<root>", err.Error())
	}

	p := toProjectState(&f)
	if p.EffectiveDurationMs() > 0 {
		p.ClampOverlaysToDuration()
	}
	if err := p.CheckInvariants(); err != nil {
		return nil, nil, err
	}

	warnings := make([]string, 0)
	for _, missing := range p.MissingReferencedFiles() {
		warnings = append(warnings, "referenced file missing: "+missing)
		s.log.Warnf("referenced file missing: %s", missing)
	}
	return p, warnings, nil
}

// AutosavePath builds the timestamped autosave path under dataDir per the
// documented on-disk layout (<data_dir>/autosave/<timestamp>.fmm.json).
func AutosavePath(dataDir string, timestampUnixMs int64) string {
	return filepath.Join(dataDir, "autosave", strconv.FormatInt(timestampUnixMs, 10)+".fmm.json")
}
