package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fastmoviemaker/fmmcore/internal/process"
)

// FrameCacheJob extracts one JPEG thumbnail per integer-second position
// over [0, durationMs) into a per-project directory, so the timeline can
// render scrubbing thumbnails without re-invoking FFmpeg per frame.
type FrameCacheJob struct {
	Runner     *process.Runner
	FFmpegPath string
	VideoPath  string
	CacheDir   string
	DurationMs int64
}

func (j *FrameCacheJob) Describe() string { return "frame_cache" }

func framePath(cacheDir string, second int64) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%010d.jpg", second))
}

func (j *FrameCacheJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	if err := os.MkdirAll(j.CacheDir, 0o755); err != nil {
		return nil, err
	}

	totalSeconds := j.DurationMs / 1000
	if totalSeconds == 0 {
		totalSeconds = 1
	}

	for second := int64(0); second <= totalSeconds; second++ {
		select {
		case <-cancel:
			return nil, errCancelled
		default:
		}

		out := framePath(j.CacheDir, second)
		if _, err := os.Stat(out); err == nil {
			emit(second+1, totalSeconds+1, "")
			continue
		}

		argv := []string{
			j.FFmpegPath, "-y",
			"-ss", strconv.FormatInt(second, 10),
			"-i", j.VideoPath,
			"-frames:v", "1",
			"-q:v", "4",
			out,
		}
		h, err := j.Runner.Spawn(ctx, argv, process.StdinNone, 0)
		if err != nil {
			return nil, err
		}
		go func() {
			<-cancel
			h.Cancel()
		}()
		for range h.ProgressCh {
		}
		if err := h.Wait(); err != nil {
			return nil, err
		}

		emit(second+1, totalSeconds+1, "")
	}

	return FrameCacheResult{CacheDir: j.CacheDir, TotalSeconds: totalSeconds}, nil
}

// FrameCacheResult names the cache directory extracted frames live in.
type FrameCacheResult struct {
	CacheDir     string
	TotalSeconds int64
}

// FrameCacheLookup performs a binary search over the sorted integer-second
// filenames already present in cacheDir to find the frame at or nearest
// before targetSecond, and enforces a disk budget by evicting the
// least-recently-accessed frames once it is exceeded.
type FrameCacheLookup struct {
	CacheDir     string
	MaxBytes     int64
	access       map[string]int64 // path -> monotonically increasing access tick
	tick         int64
}

func NewFrameCacheLookup(cacheDir string, maxBytes int64) *FrameCacheLookup {
	return &FrameCacheLookup{CacheDir: cacheDir, MaxBytes: maxBytes, access: make(map[string]int64)}
}

// Lookup returns the path of the frame at targetSecond, or the closest
// earlier frame if an exact one is missing.
func (l *FrameCacheLookup) Lookup(targetSecond int64) (string, error) {
	entries, err := os.ReadDir(l.CacheDir)
	if err != nil {
		return "", err
	}

	seconds := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".jpg")
		s, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		seconds = append(seconds, s)
	}
	sort.Slice(seconds, func(i, j int) bool { return seconds[i] < seconds[j] })

	// sort.Search finds the first index whose second is >= targetSecond;
	// step back one if that's past target and not an exact match.
	idx := sort.Search(len(seconds), func(i int) bool { return seconds[i] >= targetSecond })
	if idx == len(seconds) {
		idx--
	} else if seconds[idx] != targetSecond {
		idx--
	}
	if idx < 0 {
		return "", fmt.Errorf("frame cache is empty")
	}

	path := framePath(l.CacheDir, seconds[idx])
	l.tick++
	l.access[path] = l.tick
	l.evictIfOverBudget()
	return path, nil
}

func (l *FrameCacheLookup) evictIfOverBudget() {
	entries, err := os.ReadDir(l.CacheDir)
	if err != nil {
		return
	}

	type fileInfo struct {
		path   string
		size   int64
		access int64
	}
	files := make([]fileInfo, 0, len(entries))
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(l.CacheDir, e.Name())
		files = append(files, fileInfo{path: path, size: info.Size(), access: l.access[path]})
		total += info.Size()
	}
	if total <= l.MaxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].access < files[j].access })
	for _, f := range files {
		if total <= l.MaxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			continue
		}
		delete(l.access, f.path)
		total -= f.size
	}
}
