package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
	"github.com/fastmoviemaker/fmmcore/internal/process"
)

// OutputDescriptor names where and how to render a project, per spec.md
// §4.8's "(path, container, codec, resolution, audio policy)".
type OutputDescriptor struct {
	Path       string
	Container  string // "mp4", "mov", "mkv"
	Codec      string // preferred codec name; "" lets SelectEncoder choose
	Width      int
	Height     int
	// VideoGain, MixBGM and BGMGain are not read by Renderer: the audio mix
	// uses each clip's own audio at its Volume, and no BGM input is added.
	VideoGain  float32
	MixBGM     bool
	BGMGain    float32
}

// Result is the pure-data outcome of a render.
type Result struct {
	OutputPath string
}

// Renderer consumes a ProjectState and drives FFmpeg to produce a single
// output file, directly generalizing the teacher's BuildCommand/Execute
// pair (one fixed pipeline: background video + N audio + N image overlays)
// to the full DAG spec.md §4.8 describes, built through FilterGraph.
type Renderer struct {
	Runner      *process.Runner
	FFmpegPath  string
	FFprobePath string

	Project       *model.ProjectState
	ActiveTrack   int // index into Project.SubtitleTracks; -1 for none
	Output        OutputDescriptor
}

func NewRenderer(runner *process.Runner, ffmpegPath, ffprobePath string, project *model.ProjectState, output OutputDescriptor) *Renderer {
	activeTrack := project.ActiveTrackIndex
	return &Renderer{
		Runner:      runner,
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Project:     project,
		ActiveTrack: activeTrack,
		Output:      output,
	}
}

// Render implements worker.ExportRunner so export runs through the shared
// job pool like every other background operation.
func (r *Renderer) Render(ctx context.Context, cancel <-chan struct{}, emit func(current, total int64, message string)) (interface{}, error) {
	totalMs := r.Project.EffectiveDurationMs()

	argv, err := r.buildArgv(ctx, totalMs)
	if err != nil {
		return nil, err
	}

	tmpOut := r.Output.Path + ".tmp" + filepath.Ext(r.Output.Path)
	argv = append(argv, "-progress", "pipe:1", tmpOut)

	h, err := r.Runner.Spawn(ctx, argv, process.StdinPipe, totalMs)
	if err != nil {
		return nil, err
	}

	go func() {
		<-cancel
		h.Cancel()
	}()

	for ev := range h.ProgressCh {
		emit(ev.CurrentMs, ev.TotalMs, "")
	}

	if err := h.Wait(); err != nil {
		os.Remove(tmpOut)
		return nil, err
	}

	if err := os.Rename(tmpOut, r.Output.Path); err != nil {
		os.Remove(tmpOut)
		return nil, fmmerrors.DiskFull(r.Output.Path)
	}

	return Result{OutputPath: r.Output.Path}, nil
}

// buildArgv assembles the full FFmpeg invocation: inputs, filter_complex,
// maps, encoder, and output settings. The temp-output path and -progress
// flag are appended by the caller.
func (r *Renderer) buildArgv(ctx context.Context, totalMs int64) ([]string, error) {
	if r.Project.VideoClipTrack == nil || len(r.Project.VideoClipTrack.Clips) == 0 {
		return nil, fmmerrors.FilterGraphBuildFailed("project has no clips to render")
	}

	clips := r.Project.VideoClipTrack.Clips
	argv := []string{r.FFmpegPath, "-y"}

	graph := NewFilterGraph()
	videoLabels := make([]string, len(clips))

	for i, clip := range clips {
		src := clip.SourcePath
		if src == "" {
			src = r.Project.VideoPath
		}
		argv = append(argv, "-i", src)

		videoLabels[i] = graph.addTrim(i, clip, r.Output.Width, r.Output.Height)
	}

	finalVideo, err := r.concatWithTransitions(graph, clips, videoLabels)
	if err != nil {
		return nil, err
	}

	audioLabels, audioGains := r.concatAudioWithCrossfades(graph, clips)

	if r.ActiveTrack >= 0 && r.ActiveTrack < len(r.Project.SubtitleTracks) {
		assPath, err := r.writeActiveTrackASS()
		if err != nil {
			return nil, err
		}
		finalVideo = graph.addSubtitlesFilter(finalVideo, assPath)
	}

	imageInputBase := len(clips)
	for i, ov := range r.Project.ImageOverlayTrack.Overlays {
		argv = append(argv, "-i", ov.ImagePath)
		finalVideo = graph.addOverlay(finalVideo, imageInputBase+i, ov, r.Output.Width, r.Output.Height)
	}

	for _, ov := range r.Project.TextOverlayTrack.Overlays {
		finalVideo = graph.addDrawtext(finalVideo, ov, r.Output.Width, r.Output.Height)
	}

	var finalAudio string
	if len(audioLabels) > 0 {
		finalAudio = graph.addAmix(audioLabels, audioGains)
	}

	argv = append(argv, "-filter_complex", graph.Complex())
	argv = append(argv, "-map", fmt.Sprintf("[%s]", finalVideo))
	if finalAudio != "" {
		argv = append(argv, "-map", fmt.Sprintf("[%s]", finalAudio))
	}

	encoder, err := r.selectEncoder(ctx)
	if err != nil {
		return nil, err
	}
	argv = append(argv, "-c:v", encoder, "-c:a", "aac", "-pix_fmt", "yuv420p")
	if r.Output.Width > 0 && r.Output.Height > 0 {
		argv = append(argv, "-s", fmt.Sprintf("%dx%d", r.Output.Width, r.Output.Height))
	}
	argv = append(argv, "-t", fmt.Sprintf("%.3f", float64(totalMs)/1000.0))

	return argv, nil
}

// concatWithTransitions joins preprocessed clip labels, replacing the hard
// concat at any boundary where a clip declares a non-cut transition with
// xfade (and acrossfade for audio, left to the caller's audio pipeline).
func (r *Renderer) concatWithTransitions(graph *FilterGraph, clips []model.VideoClip, labels []string) (string, error) {
	if len(labels) == 1 {
		return labels[0], nil
	}

	var hasTransition bool
	for i := 0; i < len(clips)-1; i++ {
		if !clips[i].Transition.IsCut() {
			hasTransition = true
			break
		}
	}
	if !hasTransition {
		return graph.addConcat(labels), nil
	}

	current := labels[0]
	offsetMs := clips[0].SourceDurationMs()
	for i := 1; i < len(labels); i++ {
		prev := clips[i-1]
		if prev.Transition.IsCut() {
			current = graph.addConcat([]string{current, labels[i]})
		} else {
			var err error
			current, err = graph.addXfade(current, labels[i], prev.Transition.Kind, prev.Transition.DurationMs, offsetMs)
			if err != nil {
				return "", err
			}
		}
		offsetMs += clips[i].SourceDurationMs()
	}
	return current, nil
}

// concatAudioWithCrossfades pairs each clip's own audio stream with its
// volume, replacing any boundary whose transition declares AudioCrossfade
// with an acrossfade stage joining the two neighbors, mirroring
// concatWithTransitions' video-side xfade handling (spec.md §4.8 step 2).
func (r *Renderer) concatAudioWithCrossfades(graph *FilterGraph, clips []model.VideoClip) ([]string, []float64) {
	var labels []string
	var gains []float64
	for i := 0; i < len(clips); {
		label := fmt.Sprintf("%d:a", i)
		if i+1 < len(clips) && !clips[i].Transition.IsCut() && clips[i].Transition.AudioCrossfade {
			next := fmt.Sprintf("%d:a", i+1)
			merged := graph.addAcrossfade(label, next, clips[i].Transition.DurationMs)
			labels = append(labels, merged)
			gains = append(gains, (float64(clips[i].Volume)+float64(clips[i+1].Volume))/2)
			i += 2
			continue
		}
		labels = append(labels, label)
		gains = append(gains, float64(clips[i].Volume))
		i++
	}
	return labels, gains
}

func (r *Renderer) writeActiveTrackASS() (string, error) {
	track := r.Project.SubtitleTracks[r.ActiveTrack]
	gen := NewASSGenerator(r.Project.DefaultStyle)

	events := make([]ASSEvent, 0, len(track.Segments))
	for _, seg := range track.Segments {
		style := r.Project.DefaultStyle
		if seg.Style != nil {
			style = style.Merge(seg.Style)
		}
		events = append(events, ASSEvent{StartMs: seg.StartMs, EndMs: seg.EndMs, Text: seg.Text, Style: style})
	}

	f, err := os.CreateTemp("", "fmmcore-export-*.ass")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(gen.Generate(events)); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (r *Renderer) selectEncoder(ctx context.Context) (string, error) {
	if r.Output.Codec != "" {
		return r.Output.Codec, nil
	}
	available, err := process.ProbeEncoders(ctx, r.FFmpegPath)
	if err != nil {
		return "", err
	}
	return process.SelectEncoder(available)
}
