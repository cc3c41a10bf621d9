// Package autosave implements §4.9: an idle-triggered snapshot ticker, a
// crash-recovery index over incompletely-closed autosave files, and a
// deduplicated recent-files MRU list.
package autosave

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
	"github.com/fastmoviemaker/fmmcore/internal/persistence"
	"github.com/fastmoviemaker/fmmcore/pkg/logger"
)

// MaxRecentFiles bounds the recent-files list per §4.9.
const MaxRecentFiles = 10

// lockSuffix marks an autosave file as cleanly closed (i.e. its project was
// later saved to its real destination, or the file was explicitly
// discarded by the host). A file without its matching lock is a recovery
// candidate: the process that wrote it never got the chance to clean up.
const lockSuffix = ".done"

// Clock is satisfied by time.Now, seamed out for deterministic tests.
type Clock func() time.Time

// Ticker owns the idle-triggered autosave policy: the host calls Tick every
// Interval (Ticker starts no timer itself and only stores Interval), and a
// snapshot is written only if an edit has applied since the last save and
// at least IdleWindow has passed since that edit,
// mirroring the teacher's storage_service's periodic CleanupOldFiles
// cadence generalized from "delete stale files" to "conditionally write a
// new one."
type Ticker struct {
	Store      *persistence.Store
	DataDir    string
	Interval   time.Duration
	IdleWindow time.Duration
	Now        Clock

	log logger.Logger

	lastEditAt time.Time
	lastSaveAt time.Time
	dirty      bool
}

// NewTicker builds a Ticker with sane defaults (30s interval, 5s idle
// window) when the zero value is passed for either.
func NewTicker(store *persistence.Store, dataDir string, interval, idleWindow time.Duration, log logger.Logger) *Ticker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if idleWindow <= 0 {
		idleWindow = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Ticker{
		Store:      store,
		DataDir:    dataDir,
		Interval:   interval,
		IdleWindow: idleWindow,
		Now:        time.Now,
		log:        log,
	}
}

// NoteEdit records that an edit command applied, per the command system's
// single-writer ordering: called once per applied command.
func (t *Ticker) NoteEdit() {
	t.dirty = true
	t.lastEditAt = t.now()
}

func (t *Ticker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Tick evaluates the autosave condition and, if satisfied, writes a
// snapshot. Returns the written path, or "" if no write occurred — S6
// requires this to be exactly zero writes with no pending edit.
func (t *Ticker) Tick(p *model.ProjectState) (string, error) {
	if !t.dirty {
		return "", nil
	}
	now := t.now()
	if now.Sub(t.lastEditAt) < t.IdleWindow {
		return "", nil
	}

	path := persistence.AutosavePath(t.DataDir, now.UnixMilli())
	if err := t.Store.Save(p, path); err != nil {
		return "", err
	}
	t.dirty = false
	t.lastSaveAt = now
	t.log.Infof("autosaved project to %s", path)
	return path, nil
}

// MarkDone closes out an autosave file cleanly: the host has either saved
// the project to its real destination or discarded the recovery candidate,
// so this snapshot no longer needs to survive a crash.
func MarkDone(autosavePath string) error {
	f, err := os.Create(autosavePath + lockSuffix)
	if err != nil {
		return err
	}
	return f.Close()
}

// RecoveryCandidate names one unmarked autosave file available for
// recovery on start-up.
type RecoveryCandidate struct {
	Path      string
	TimestampUnixMs int64
}

// ScanRecoveryCandidates lists autosave files under dataDir/autosave that
// have no matching ".done" lock, newest first, per §4.9's "scan for
// unmarked (not-cleanly-closed) autosave files."
func ScanRecoveryCandidates(dataDir string) ([]RecoveryCandidate, error) {
	dir := filepath.Join(dataDir, "autosave")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var candidates []RecoveryCandidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".fmm.json") {
			continue
		}
		donePath := filepath.Join(dir, name+lockSuffix)
		if _, err := os.Stat(donePath); err == nil {
			continue // cleanly closed
		}

		ts := strings.TrimSuffix(name, ".fmm.json")
		tsMs, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			continue // not one of ours
		}
		candidates = append(candidates, RecoveryCandidate{
			Path:            filepath.Join(dir, name),
			TimestampUnixMs: tsMs,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].TimestampUnixMs > candidates[j].TimestampUnixMs
	})
	return candidates, nil
}

// DiscardRecoveryCandidate removes an unwanted autosave file and its lock,
// leaving neither on disk.
func DiscardRecoveryCandidate(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(path + lockSuffix); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RecentFiles is an MRU list of project file paths, deduplicated by
// absolute path and capped at MaxRecentFiles, per §4.9.
type RecentFiles struct {
	paths []string
}

// NewRecentFiles builds an empty MRU list.
func NewRecentFiles() *RecentFiles {
	return &RecentFiles{}
}

// Touch records path as most-recently-used, moving it to the front if
// already present and evicting the oldest entry once the list exceeds
// MaxRecentFiles.
func (r *RecentFiles) Touch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	filtered := r.paths[:0:0]
	for _, p := range r.paths {
		if p != abs {
			filtered = append(filtered, p)
		}
	}
	filtered = append([]string{abs}, filtered...)
	if len(filtered) > MaxRecentFiles {
		filtered = filtered[:MaxRecentFiles]
	}
	r.paths = filtered
	return nil
}

// List returns the MRU list, most recent first.
func (r *RecentFiles) List() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}
