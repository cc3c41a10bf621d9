package export

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

func newTestProject(t *testing.T, clips ...model.VideoClip) *model.ProjectState {
	t.Helper()
	p := model.NewProjectState()
	p.VideoPath = "/videos/source.mp4"
	p.VideoClipTrack = model.NewVideoClipTrack()
	for _, c := range clips {
		p.VideoClipTrack.AddClip(c)
	}
	return p
}

func mustClip(t *testing.T, inMs, outMs int64) model.VideoClip {
	t.Helper()
	c, err := model.NewVideoClip("", inMs, outMs)
	require.NoError(t, err)
	return c
}

func TestRenderer_BuildArgv_SingleClipIncludesInputAndCodec(t *testing.T) {
	p := newTestProject(t, mustClip(t, 0, 5000))
	r := NewRenderer(nil, "/usr/bin/ffmpeg", "/usr/bin/ffprobe", p, OutputDescriptor{
		Path: "/tmp/out.mp4", Codec: "libx264", Width: 1280, Height: 720,
	})

	argv, err := r.buildArgv(nil, 5000)
	require.NoError(t, err)

	assert.Contains(t, argv, "-i")
	assert.Contains(t, argv, "/videos/source.mp4")
	assert.Contains(t, argv, "-c:v")
	assert.Contains(t, argv, "libx264")
}

func TestRenderer_ConcatWithTransitions_AllCutsUsesAddConcat(t *testing.T) {
	clipA := mustClip(t, 0, 2000)
	clipB := mustClip(t, 0, 3000)
	p := newTestProject(t, clipA, clipB)
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})

	graph := NewFilterGraph()
	out, err := r.concatWithTransitions(graph, p.VideoClipTrack.Clips, []string{"v1", "v2"})
	require.NoError(t, err)
	assert.Equal(t, "concat1", out)
	assert.Contains(t, graph.Complex(), "[v1][v2]concat=n=2")
}

func TestRenderer_ConcatWithTransitions_SingleClipPassesThrough(t *testing.T) {
	p := newTestProject(t, mustClip(t, 0, 1000))
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})

	graph := NewFilterGraph()
	out, err := r.concatWithTransitions(graph, p.VideoClipTrack.Clips, []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only", out)
	assert.Empty(t, graph.Complex())
}

func TestRenderer_ConcatWithTransitions_FadeUsesXfadeWithAccumulatedOffset(t *testing.T) {
	clipA := mustClip(t, 0, 2000)
	clipA.Transition = model.Transition{Kind: model.TransitionFade, DurationMs: 500}
	clipB := mustClip(t, 0, 3000)
	p := newTestProject(t, clipA, clipB)
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})

	graph := NewFilterGraph()
	out, err := r.concatWithTransitions(graph, p.VideoClipTrack.Clips, []string{"v1", "v2"})
	require.NoError(t, err)
	assert.Equal(t, "xfade1", out)
	assert.Contains(t, graph.Complex(), "xfade=transition=fade:duration=0.500:offset=2.000")
}

func TestRenderer_ConcatAudioWithCrossfades_AudioCrossfadeJoinsNeighbors(t *testing.T) {
	clipA := mustClip(t, 0, 2000)
	clipA.Transition = model.Transition{Kind: model.TransitionFade, DurationMs: 500, AudioCrossfade: true}
	clipB := mustClip(t, 0, 3000)
	p := newTestProject(t, clipA, clipB)
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})

	graph := NewFilterGraph()
	labels, gains := r.concatAudioWithCrossfades(graph, p.VideoClipTrack.Clips)
	require.Len(t, labels, 1)
	require.Len(t, gains, 1)
	assert.Equal(t, "acrossfade1", labels[0])
	assert.Contains(t, graph.Complex(), "[0:a][1:a]acrossfade=d=0.500")
}

func TestRenderer_ConcatAudioWithCrossfades_CutBoundaryKeepsSeparateLabels(t *testing.T) {
	clipA := mustClip(t, 0, 2000)
	clipB := mustClip(t, 0, 3000)
	p := newTestProject(t, clipA, clipB)
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})

	graph := NewFilterGraph()
	labels, gains := r.concatAudioWithCrossfades(graph, p.VideoClipTrack.Clips)
	assert.Equal(t, []string{"0:a", "1:a"}, labels)
	assert.Equal(t, []float64{1.0, 1.0}, gains)
	assert.Empty(t, graph.Complex())
}

func TestRenderer_WriteActiveTrackASS_MergesSegmentStyleOverride(t *testing.T) {
	p := newTestProject(t, mustClip(t, 0, 5000))
	track := model.NewSubtitleTrack("Track 1", "en")
	seg, err := model.NewSubtitleSegment(0, 1000, "hi")
	require.NoError(t, err)
	override := model.SubtitleStyle{FontColor: "#00FF00"}
	seg.Style = &override
	_, err = track.AddSegment(seg)
	require.NoError(t, err)
	p.AddSubtitleTrack(track)

	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})
	path, err := r.writeActiveTrackASS()
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "{\\c")
	assert.Contains(t, string(data), "hi")
}

func TestRenderer_SelectEncoder_PrefersExplicitCodec(t *testing.T) {
	r := NewRenderer(nil, "ffmpeg", "ffprobe", newTestProject(t), OutputDescriptor{Codec: "h264_videotoolbox"})
	encoder, err := r.selectEncoder(nil)
	require.NoError(t, err)
	assert.Equal(t, "h264_videotoolbox", encoder)
}

func TestRenderer_BuildArgv_RejectsEmptyClipTrack(t *testing.T) {
	p := newTestProject(t)
	r := NewRenderer(nil, "ffmpeg", "ffprobe", p, OutputDescriptor{})
	_, err := r.buildArgv(nil, 0)
	assert.Error(t, err)
}
