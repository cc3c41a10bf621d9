package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

func TestFilterGraph_AddTrimEmitsScaleAndPad(t *testing.T) {
	g := NewFilterGraph()
	clip := model.VideoClip{SourceInMs: 1000, SourceOutMs: 3000, Volume: 1.0}
	label := g.addTrim(0, clip, 1280, 720)

	assert.Equal(t, "clip1", label)
	assert.Contains(t, g.Complex(), "trim=start=1.000:end=3.000")
	assert.Contains(t, g.Complex(), "scale=1280:720")
}

func TestFilterGraph_AddTrimAppliesColorFilters(t *testing.T) {
	g := NewFilterGraph()
	clip := model.VideoClip{SourceInMs: 0, SourceOutMs: 1000, Filters: model.ClipFilters{Brightness: 0.2, Contrast: 0.5, Saturation: -0.1}}
	g.addTrim(0, clip, 640, 360)
	assert.Contains(t, g.Complex(), "eq=brightness=0.200:contrast=1.500:saturation=0.900")
}

func TestFilterGraph_AddConcat(t *testing.T) {
	g := NewFilterGraph()
	out := g.addConcat([]string{"a", "b", "c"})
	assert.Equal(t, "concat1", out)
	assert.Equal(t, "[a][b][c]concat=n=3:v=1:a=0[concat1]", g.Complex())
}

func TestFilterGraph_AddXfade_RejectsCutKind(t *testing.T) {
	g := NewFilterGraph()
	_, err := g.addXfade("a", "b", model.TransitionCut, 500, 2000)
	assert.Error(t, err)
}

func TestFilterGraph_AddXfade_FadeAndWipe(t *testing.T) {
	g := NewFilterGraph()
	out, err := g.addXfade("a", "b", model.TransitionFade, 500, 2000)
	require.NoError(t, err)
	assert.Contains(t, g.Complex(), "xfade=transition=fade:duration=0.500:offset=2.000")
	assert.Equal(t, "xfade1", out)

	g2 := NewFilterGraph()
	_, err = g2.addXfade("a", "b", model.TransitionWipe, 250, 1000)
	require.NoError(t, err)
	assert.Contains(t, g2.Complex(), "transition=wipeleft")
}

func TestFilterGraph_AddOverlay_DerivesPixelsFromPercent(t *testing.T) {
	g := NewFilterGraph()
	ov := model.ImageOverlay{XPercent: 50, YPercent: 10, ScalePercent: 20, Opacity: 0.5, StartMs: 1000, EndMs: 2000}
	out := g.addOverlay("vid", 3, ov, 1000, 500)

	complex := g.Complex()
	assert.Contains(t, complex, "scale=200:-1") // 20% of 1000
	assert.Contains(t, complex, "colorchannelmixer=aa=0.500")
	assert.Contains(t, complex, "overlay=500:50:") // 50% of 1000, 10% of 500
	assert.Equal(t, "overlaid2", out)
}

func TestFilterGraph_AddAmix_AppliesPerLabelGain(t *testing.T) {
	g := NewFilterGraph()
	out := g.addAmix([]string{"a", "b"}, []float64{0.5, 1.5})
	complex := g.Complex()
	assert.Contains(t, complex, "[a]volume=0.500[vol1]")
	assert.Contains(t, complex, "[b]volume=1.500[vol2]")
	assert.Contains(t, complex, "amix=inputs=2:duration=longest[mixed3]")
	assert.Equal(t, "mixed3", out)
}

func TestFilterGraph_AddSubtitlesFilter(t *testing.T) {
	g := NewFilterGraph()
	out := g.addSubtitlesFilter("vid", "/tmp/x.ass")
	assert.Equal(t, "subbed1", out)
	assert.Contains(t, g.Complex(), "subtitles=/tmp/x.ass")
}
