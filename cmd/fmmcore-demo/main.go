// Command fmmcore-demo is a non-UI smoke entrypoint exercising the
// host-facing API surface spec.md §6 lists: project load/save/new,
// apply/undo/redo, the timeline coordinate engine, the background worker
// pool, the media library, and autosave/recovery. The export renderer is
// not run here.
// A real host embeds these packages directly; this binary just proves
// the surface wires together end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fastmoviemaker/fmmcore/internal/app"
	"github.com/fastmoviemaker/fmmcore/internal/autosave"
	"github.com/fastmoviemaker/fmmcore/internal/domain/command"
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
	"github.com/fastmoviemaker/fmmcore/internal/domain/timeline"
	"github.com/fastmoviemaker/fmmcore/internal/library"
	"github.com/fastmoviemaker/fmmcore/internal/persistence"
	"github.com/fastmoviemaker/fmmcore/internal/process"
	"github.com/fastmoviemaker/fmmcore/internal/worker"
	"github.com/fastmoviemaker/fmmcore/pkg/logger"
)

var (
	showVersion = flag.Bool("version", false, "show version information")
	projectPath = flag.String("project", "", "path to a .fmm.json file to round-trip through save/load")
)

var version = "dev"

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("fmmcore-demo", version)
		return
	}

	cfg, err := app.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level)

	p, stack := demoProjectAndCommands(log)
	demoTimeline(p, log)
	demoPersistence(p, cfg, log)
	demoAutosave(p, cfg, log)
	demoLibrary(cfg, log)
	demoWorkerPool(cfg, log)

	log.Infof("command history: %v", stack.History())
	log.Info("fmmcore-demo finished")
}

// demoProjectAndCommands exercises Project::new and the command system's
// apply/undo/redo cycle (§4.5).
func demoProjectAndCommands(log logger.Logger) (*model.ProjectState, *command.Stack) {
	p := model.NewProjectState()
	p.VideoPath = "/videos/source.mp4"
	p.DurationMs = 60000

	stack := command.NewStack(100)

	clip, err := model.NewVideoClip("", 0, 10000)
	if err != nil {
		log.Fatalf("new clip: %v", err)
	}
	if err := stack.Do(p, &command.AddClip{Clip: clip}); err != nil {
		log.Fatalf("apply AddClip: %v", err)
	}

	track := model.NewSubtitleTrack("Track 1", "en")
	p.AddSubtitleTrack(track)
	seg, err := model.NewSubtitleSegment(0, 2000, "hello, world")
	if err != nil {
		log.Fatalf("new segment: %v", err)
	}
	if err := stack.Do(p, &command.AddSegment{TrackIndex: 0, Segment: seg}); err != nil {
		log.Fatalf("apply AddSegment: %v", err)
	}

	if err := stack.Undo(p); err != nil {
		log.Fatalf("undo: %v", err)
	}
	if err := stack.Redo(p); err != nil {
		log.Fatalf("redo: %v", err)
	}

	return p, stack
}

// demoTimeline exercises the clip-at-timeline / source-to-timeline
// coordinate engine (§4.3).
func demoTimeline(p *model.ProjectState, log logger.Logger) {
	engine := timeline.NewEngine(p.VideoClipTrack, p.DurationMs)
	cursor, err := engine.SeekTimeline(5000)
	if err != nil {
		log.Fatalf("seek timeline: %v", err)
	}
	log.Infof("timeline ms 5000 -> clip %d, source ms %d", cursor.ClipIndex, cursor.SourceMs)

	back, err := engine.TimelineMs(cursor)
	if err != nil {
		log.Fatalf("cursor -> timeline: %v", err)
	}
	log.Infof("cursor -> timeline ms %d", back)
}

// demoPersistence exercises Project::load/save, including a round trip
// through a caller-supplied path when one is given.
func demoPersistence(p *model.ProjectState, cfg *app.Config, log logger.Logger) {
	store := persistence.NewStore(log)

	path := *projectPath
	if path == "" {
		path = filepath.Join(os.TempDir(), "fmmcore-demo.fmm.json")
	}
	if err := store.Save(p, path); err != nil {
		log.Fatalf("save project: %v", err)
	}

	loaded, warnings, err := store.Load(path)
	if err != nil {
		log.Fatalf("load project: %v", err)
	}
	for _, w := range warnings {
		log.Warnf("load warning: %s", w)
	}
	log.Infof("round-tripped project, video_path=%s, tracks=%d", loaded.VideoPath, len(loaded.SubtitleTracks))
}

// demoAutosave exercises the idle-triggered ticker and the crash-recovery
// scan (§4.9).
func demoAutosave(p *model.ProjectState, cfg *app.Config, log logger.Logger) {
	store := persistence.NewStore(log)
	tk := autosave.NewTicker(store, cfg.Storage.DataDir, cfg.Autosave.Interval, cfg.Autosave.IdleWindow, log)

	tk.NoteEdit()
	tk.Now = func() time.Time { return time.Now().Add(tk.IdleWindow + time.Second) }
	path, err := tk.Tick(p)
	if err != nil {
		log.Fatalf("autosave tick: %v", err)
	}
	if path != "" {
		log.Infof("autosaved to %s", path)
		if err := autosave.MarkDone(path); err != nil {
			log.Fatalf("mark autosave done: %v", err)
		}
	}

	candidates, err := autosave.ScanRecoveryCandidates(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("scan recovery candidates: %v", err)
	}
	log.Infof("%d recovery candidate(s) pending", len(candidates))

	recent := autosave.NewRecentFiles()
	_ = recent.Touch(path)
	log.Infof("recent files: %v", recent.List())
}

// demoLibrary exercises Library::add/list/mark_favorite (§4.10).
func demoLibrary(cfg *app.Config, log logger.Logger) {
	lib := library.NewLibrary(filepath.Join(cfg.Storage.DataDir, "library.json"))
	item, err := lib.Add("/videos/source.mp4", library.MediaVideo, "", 60000, 1920, 1080)
	if err != nil {
		log.Fatalf("add media item: %v", err)
	}
	if err := lib.MarkFavorite(item.ID, true); err != nil {
		log.Fatalf("mark favorite: %v", err)
	}
	log.Infof("library has %d item(s)", len(lib.List()))
}

// demoWorkerPool exercises Workers::start_*(): it submits a job through the same Pool/Handle/event contract every
// background operation (transcription, TTS, waveform, frame cache,
// export) uses, without actually invoking FFmpeg — a real host wires an
// ExportRunner/TranscriptionJob backed by FFmpegConfig.BinaryPath.
func demoWorkerPool(cfg *app.Config, log logger.Logger) {
	pool := worker.NewPool(cfg.Job.Workers, cfg.Job.QueueSize, log)
	pool.Start()
	defer pool.Stop()

	runner := process.NewRunner(cfg.FFmpeg.CancelGrace, log)
	_ = runner // a real export job would pass this to export.NewRenderer

	h, err := pool.Submit(&noopJob{})
	if err != nil {
		log.Fatalf("submit job: %v", err)
	}
	for ev := range h.Events {
		switch ev.Kind {
		case worker.EventProgress:
			log.Infof("job progress: %d/%d %s", ev.Current, ev.Total, ev.Message)
		case worker.EventFinished:
			log.Infof("job finished: %v", ev.Result)
		case worker.EventFailed:
			log.Errorf("job failed: %v", ev.Err)
		}
	}
}

// noopJob is a minimal worker.Job standing in for a real pipeline stage
// (transcription/TTS/waveform/frame-cache/export all implement the same
// interface).
type noopJob struct{}

func (j *noopJob) Describe() string { return "demo no-op job" }

func (j *noopJob) Run(_ context.Context, _ <-chan struct{}, emit func(current, total int64, message string)) (worker.Result, error) {
	emit(1, 1, "done")
	return "ok", nil
}
