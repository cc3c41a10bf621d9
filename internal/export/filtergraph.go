package export

import (
	"fmt"
	"strings"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

// FilterGraph accumulates FFmpeg `-filter_complex` stages, one method per
// filter family, directly generalizing the teacher's addAudioConcatenation
// Filters/addImageOverlayFilters free functions (which only ever built one
// fixed pipeline) into a reusable builder for the full DAG spec.md §4.8
// describes: per-clip preprocessing, concat/crossfade, subtitle burn-in,
// PIP overlays, drawtext, and audio mix.
type FilterGraph struct {
	stages []string
	seq    int
}

// NewFilterGraph starts an empty graph.
func NewFilterGraph() *FilterGraph { return &FilterGraph{} }

func (g *FilterGraph) nextLabel(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s%d", prefix, g.seq)
}

// Complex renders the accumulated stages as the `-filter_complex` argument.
func (g *FilterGraph) Complex() string {
	return strings.Join(g.stages, ";")
}

// addTrim emits trim+setpts+scale/pad+color filters for one VideoClip read
// from FFmpeg input inputIndex, returning the output label.
func (g *FilterGraph) addTrim(inputIndex int, clip model.VideoClip, targetW, targetH int) string {
	startSec := float64(clip.SourceInMs) / 1000.0
	endSec := float64(clip.SourceOutMs) / 1000.0
	label := g.nextLabel("clip")

	filter := fmt.Sprintf("[%d:v]trim=start=%.3f:end=%.3f,setpts=PTS-STARTPTS", inputIndex, startSec, endSec)
	filter += fmt.Sprintf(",scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2", targetW, targetH, targetW, targetH)

	if f := clip.Filters; f.Brightness != 0 || f.Contrast != 0 || f.Saturation != 0 {
		contrast := 1.0 + float64(f.Contrast)
		saturation := 1.0 + float64(f.Saturation)
		filter += fmt.Sprintf(",eq=brightness=%.3f:contrast=%.3f:saturation=%.3f", f.Brightness, contrast, saturation)
	}

	filter += fmt.Sprintf("[%s]", label)
	g.stages = append(g.stages, filter)
	return label
}

// addConcat joins video labels with a hard concat=n=N:v=1:a=0, used for
// the whole track when no clip declares a transition to the next, and
// pairwise at each hard-cut boundary otherwise.
func (g *FilterGraph) addConcat(labels []string) string {
	out := g.nextLabel("concat")
	var refs strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&refs, "[%s]", l)
	}
	g.stages = append(g.stages, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]", refs.String(), len(labels), out))
	return out
}

// addXfade replaces a hard cut between two preprocessed clip labels with
// an `xfade` transition, offset by the first clip's post-transition
// duration (durationMs already accounts for the half-duration deduction
// VideoClipTrack.rebuildOffsets applies).
func (g *FilterGraph) addXfade(aLabel, bLabel string, kind model.TransitionKind, transitionDurationMs int64, offsetMs int64) (string, error) {
	xfadeKind, err := xfadeTransitionName(kind)
	if err != nil {
		return "", err
	}
	out := g.nextLabel("xfade")
	durationSec := float64(transitionDurationMs) / 1000.0
	offsetSec := float64(offsetMs) / 1000.0
	g.stages = append(g.stages, fmt.Sprintf(
		"[%s][%s]xfade=transition=%s:duration=%.3f:offset=%.3f[%s]",
		aLabel, bLabel, xfadeKind, durationSec, offsetSec, out,
	))
	return out, nil
}

// addAcrossfade is addXfade's audio counterpart, used when a transition
// declares AudioCrossfade.
func (g *FilterGraph) addAcrossfade(aLabel, bLabel string, transitionDurationMs int64) string {
	out := g.nextLabel("acrossfade")
	durationSec := float64(transitionDurationMs) / 1000.0
	g.stages = append(g.stages, fmt.Sprintf("[%s][%s]acrossfade=d=%.3f[%s]", aLabel, bLabel, durationSec, out))
	return out
}

func xfadeTransitionName(kind model.TransitionKind) (string, error) {
	switch kind {
	case model.TransitionFade:
		return "fade", nil
	case model.TransitionWipe:
		return "wipeleft", nil
	default:
		return "", fmmerrors.FilterGraphBuildFailed(fmt.Sprintf("transition kind %q has no xfade equivalent", kind))
	}
}

// addSubtitlesFilter burns subtitles in from an SRT or ASS file on disk.
func (g *FilterGraph) addSubtitlesFilter(videoLabel, subtitleFilePath string) string {
	out := g.nextLabel("subbed")
	escaped := strings.ReplaceAll(subtitleFilePath, ":", "\\:")
	g.stages = append(g.stages, fmt.Sprintf("[%s]subtitles=%s[%s]", videoLabel, escaped, out))
	return out
}

// addOverlay composites one ImageOverlay onto videoLabel, gated by its
// time window and opacity, using the teacher's enable='between(t,a,b)'
// idiom generalized from pixel x/y to percentage-of-canvas anchors.
func (g *FilterGraph) addOverlay(videoLabel string, imageInputIndex int, ov model.ImageOverlay, canvasW, canvasH int) string {
	scaled := g.nextLabel("img")
	scaleW := int(float64(canvasW) * ov.ScalePercent / 100.0)
	g.stages = append(g.stages, fmt.Sprintf(
		"[%d:v]scale=%d:-1,format=rgba,colorchannelmixer=aa=%.3f[%s]",
		imageInputIndex, scaleW, ov.Opacity, scaled,
	))

	x := int(float64(canvasW) * ov.XPercent / 100.0)
	y := int(float64(canvasH) * ov.YPercent / 100.0)
	startSec := float64(ov.StartMs) / 1000.0
	endSec := float64(ov.EndMs) / 1000.0

	out := g.nextLabel("overlaid")
	g.stages = append(g.stages, fmt.Sprintf(
		"[%s][%s]overlay=%d:%d:enable='between(t\\,%.3f\\,%.3f)'[%s]",
		videoLabel, scaled, x, y, startSec, endSec, out,
	))
	return out
}

// addDrawtext burns a TextOverlay in via `drawtext`, gated the same way as
// addOverlay.
func (g *FilterGraph) addDrawtext(videoLabel string, ov model.TextOverlay, canvasW, canvasH int) string {
	out := g.nextLabel("text")
	startSec := float64(ov.StartMs) / 1000.0
	endSec := float64(ov.EndMs) / 1000.0
	x := fmt.Sprintf("%d", int(float64(canvasW)*ov.XPercent/100.0))
	y := fmt.Sprintf("%d", int(float64(canvasH)*ov.YPercent/100.0))

	fontColor := "#FFFFFF"
	fontSize := 24
	if ov.Style != nil {
		if ov.Style.FontColor != "" {
			fontColor = ov.Style.FontColor
		}
		if ov.Style.FontSize != 0 {
			fontSize = ov.Style.FontSize
		}
	}
	escapedText := strings.ReplaceAll(ov.Text, "'", "\\'")
	escapedText = strings.ReplaceAll(escapedText, ":", "\\:")

	g.stages = append(g.stages, fmt.Sprintf(
		"[%s]drawtext=text='%s':fontcolor=%s:fontsize=%d:x=%s:y=%s:enable='between(t\\,%.3f\\,%.3f)'[%s]",
		videoLabel, escapedText, fontColor, fontSize, x, y, startSec, endSec, out,
	))
	return out
}

// addAmix mixes audio labels at per-label gains via `volume` filters
// feeding an `amix`, directly generalizing the teacher's fixed two-track
// video+TTS mix to N arbitrary tracks.
func (g *FilterGraph) addAmix(labels []string, gains []float64) string {
	volumed := make([]string, len(labels))
	for i, l := range labels {
		gained := g.nextLabel("vol")
		g.stages = append(g.stages, fmt.Sprintf("[%s]volume=%.3f[%s]", l, gains[i], gained))
		volumed[i] = gained
	}

	out := g.nextLabel("mixed")
	var refs strings.Builder
	for _, l := range volumed {
		fmt.Fprintf(&refs, "[%s]", l)
	}
	g.stages = append(g.stages, fmt.Sprintf("%samix=inputs=%d:duration=longest[%s]", refs.String(), len(volumed), out))
	return out
}
