package command

import (
	"fmt"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

func track(p *model.ProjectState, trackIndex int) (*model.SubtitleTrack, error) {
	if trackIndex < 0 || trackIndex >= len(p.SubtitleTracks) {
		return nil, fmmerrors.NotFound(trackIndex)
	}
	return p.SubtitleTracks[trackIndex], nil
}

// AddSegment inserts a new segment into a track.
type AddSegment struct {
	TrackIndex int
	Segment    model.SubtitleSegment

	insertedIndex int
}

func (c *AddSegment) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	idx, err := t.AddSegment(c.Segment)
	if err != nil {
		return err
	}
	c.insertedIndex = idx
	return nil
}

func (c *AddSegment) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	return t.RemoveSegment(c.insertedIndex)
}

func (c *AddSegment) Description() string { return "Add subtitle" }

// DeleteSegment removes a segment, retaining enough to reinsert it.
type DeleteSegment struct {
	TrackIndex int
	Index      int

	removed model.SubtitleSegment
}

func (c *DeleteSegment) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	c.removed = t.Segments[c.Index]
	return t.RemoveSegment(c.Index)
}

func (c *DeleteSegment) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	_, err = t.AddSegment(c.removed)
	return err
}

func (c *DeleteSegment) Description() string { return "Delete subtitle" }

// EditText changes a segment's text.
type EditText struct {
	TrackIndex int
	Index      int
	NewText    string

	oldText string
}

func (c *EditText) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	c.oldText = t.Segments[c.Index].Text
	t.Segments[c.Index].Text = c.NewText
	return nil
}

func (c *EditText) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	t.Segments[c.Index].Text = c.oldText
	return nil
}

func (c *EditText) Description() string { return "Edit subtitle text" }

// EditTime changes a segment's start/end, rejecting the change atomically
// if it collides with a neighbor (disjointness is checked here directly
// rather than through MoveSegment, since both ends may move).
type EditTime struct {
	TrackIndex int
	Index      int
	NewStartMs int64
	NewEndMs   int64

	oldStartMs int64
	oldEndMs   int64
}

func (c *EditTime) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	if c.NewStartMs < 0 || c.NewStartMs >= c.NewEndMs {
		return fmmerrors.OutOfRange("segment requires 0 <= start_ms < end_ms")
	}
	if c.Index > 0 && c.NewStartMs < t.Segments[c.Index-1].EndMs {
		return fmmerrors.Overlap("edited time collides with previous segment")
	}
	if c.Index < len(t.Segments)-1 && c.NewEndMs > t.Segments[c.Index+1].StartMs {
		return fmmerrors.Overlap("edited time collides with next segment")
	}
	c.oldStartMs, c.oldEndMs = t.Segments[c.Index].StartMs, t.Segments[c.Index].EndMs
	t.Segments[c.Index].StartMs = c.NewStartMs
	t.Segments[c.Index].EndMs = c.NewEndMs
	return nil
}

func (c *EditTime) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	t.Segments[c.Index].StartMs = c.oldStartMs
	t.Segments[c.Index].EndMs = c.oldEndMs
	return nil
}

func (c *EditTime) Description() string {
	return fmt.Sprintf("Edit subtitle timing at index %d", c.Index)
}

// MoveSegment shifts a segment by a delta, rejected atomically on conflict.
type MoveSegment struct {
	TrackIndex int
	Index      int
	DeltaMs    int64
	DurationMs int64
}

func (c *MoveSegment) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	return t.MoveSegment(c.Index, c.DeltaMs, c.DurationMs)
}

func (c *MoveSegment) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	return t.MoveSegment(c.Index, -c.DeltaMs, c.DurationMs)
}

func (c *MoveSegment) Description() string { return "Move subtitle" }

// Split splits a segment at atMs; revert restores the original segment
// verbatim rather than round-tripping through MergeSegments, whose joined
// text ("a\nb") does not match SplitSegment's duplicated-text halves.
type Split struct {
	TrackIndex int
	Index      int
	AtMs       int64

	original model.SubtitleSegment
}

func (c *Split) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	c.original = t.Segments[c.Index]
	return t.SplitSegment(c.Index, c.AtMs)
}

func (c *Split) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index+1 >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	if err := t.RemoveSegment(c.Index + 1); err != nil {
		return err
	}
	t.Segments[c.Index] = c.original
	return nil
}

func (c *Split) Description() string { return "Split subtitle" }

// Merge merges segment i with i+1; revert re-inserts the original pair
// verbatim rather than splitting the merged text back, which would
// duplicate the merged "a\nb" text into both halves instead of recovering
// the original a/b texts.
type Merge struct {
	TrackIndex int
	Index      int
	GapLimitMs int64

	first  model.SubtitleSegment
	second model.SubtitleSegment
}

func (c *Merge) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index+1 >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	c.first = t.Segments[c.Index]
	c.second = t.Segments[c.Index+1]
	return t.MergeSegments(c.Index, c.GapLimitMs)
}

func (c *Merge) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	t.Segments = append(t.Segments, model.SubtitleSegment{})
	copy(t.Segments[c.Index+2:], t.Segments[c.Index+1:])
	t.Segments[c.Index] = c.first
	t.Segments[c.Index+1] = c.second
	return nil
}

func (c *Merge) Description() string { return "Merge subtitles" }

// BatchShift shifts many segments at once, atomically.
type BatchShift struct {
	TrackIndex int
	Indices    []int
	DeltaMs    int64
	DurationMs int64
}

func (c *BatchShift) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	return t.BatchShift(c.Indices, c.DeltaMs, c.DurationMs)
}

func (c *BatchShift) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	return t.BatchShift(c.Indices, -c.DeltaMs, c.DurationMs)
}

func (c *BatchShift) Description() string {
	return fmt.Sprintf("Shift %d subtitles", len(c.Indices))
}

// EditStyle overrides a segment's style.
type EditStyle struct {
	TrackIndex int
	Index      int
	NewStyle   *model.SubtitleStyle

	oldStyle *model.SubtitleStyle
}

func (c *EditStyle) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	c.oldStyle = t.Segments[c.Index].Style
	t.Segments[c.Index].Style = c.NewStyle
	return nil
}

func (c *EditStyle) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	t.Segments[c.Index].Style = c.oldStyle
	return nil
}

func (c *EditStyle) Description() string { return "Edit subtitle style" }

// EditVolume changes a segment's mix gain.
type EditVolume struct {
	TrackIndex int
	Index      int
	NewVolume  float32

	oldVolume float32
}

func (c *EditVolume) Apply(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(t.Segments) {
		return fmmerrors.NotFound(c.Index)
	}
	if c.NewVolume < 0 || c.NewVolume > 2.0 {
		return fmmerrors.SchemaViolation("volume", "must be within [0.0, 2.0]")
	}
	c.oldVolume = t.Segments[c.Index].Volume
	t.Segments[c.Index].Volume = c.NewVolume
	return nil
}

func (c *EditVolume) Revert(p *model.ProjectState) error {
	t, err := track(p, c.TrackIndex)
	if err != nil {
		return err
	}
	t.Segments[c.Index].Volume = c.oldVolume
	return nil
}

func (c *EditVolume) Description() string { return "Edit subtitle volume" }
