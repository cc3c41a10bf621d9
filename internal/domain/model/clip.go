package model

import (
	"sort"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// TransitionKind names how two adjacent clips join on the timeline.
type TransitionKind string

const (
	TransitionCut  TransitionKind = "cut"
	TransitionFade TransitionKind = "fade"
	TransitionWipe TransitionKind = "wipe"
)

// Transition describes the join between a clip and the one after it.
type Transition struct {
	Kind           TransitionKind `json:"kind"`
	DurationMs     int64          `json:"duration_ms"`
	AudioCrossfade bool           `json:"audio_crossfade"`
}

// IsCut reports whether this transition is a hard cut (the zero value).
func (t Transition) IsCut() bool {
	return t.Kind == "" || t.Kind == TransitionCut
}

// ClipFilters carries the optional per-clip color adjustments the export
// renderer folds into its preprocessing filter chain.
type ClipFilters struct {
	Brightness float32 `json:"brightness,omitempty"` // calibrated [-1, 1], 0 = unchanged
	Contrast   float32 `json:"contrast,omitempty"`   // calibrated [-1, 1], added to eq's neutral 1.0; 0 = unchanged
	Saturation float32 `json:"saturation,omitempty"` // calibrated [-1, 1], added to eq's neutral 1.0; 0 = unchanged
}

// VideoClip is one source-media reference placed on the clip track.
// SourceInMs/SourceOutMs are offsets into the source file; an empty
// SourcePath means "the project's primary video".
type VideoClip struct {
	SourcePath  string      `json:"source_path,omitempty"`
	SourceInMs  int64       `json:"source_in_ms"`
	SourceOutMs int64       `json:"source_out_ms"`
	Volume      float32     `json:"volume"`
	Filters     ClipFilters `json:"filters,omitempty"`
	Transition  Transition  `json:"transition,omitempty"`
}

func (c VideoClip) SourceDurationMs() int64 { return c.SourceOutMs - c.SourceInMs }

// NewVideoClip builds a clip with default volume 1.0 and a hard cut.
func NewVideoClip(sourcePath string, sourceInMs, sourceOutMs int64) (VideoClip, error) {
	if sourceInMs < 0 || sourceInMs >= sourceOutMs {
		return VideoClip{}, fmmerrors.OutOfRange("clip requires 0 <= source_in_ms < source_out_ms")
	}
	return VideoClip{SourcePath: sourcePath, SourceInMs: sourceInMs, SourceOutMs: sourceOutMs, Volume: 1.0}, nil
}

// VideoClipTrack is an ordered sequence of clips with a cached prefix-sum of
// timeline durations, enabling O(1) timeline-start lookup and O(log n)
// containment queries instead of O(n) linear scans.
type VideoClipTrack struct {
	Clips   []VideoClip `json:"clips"`
	offsets []int64     // offsets[i] = timeline start of Clips[i]; len == len(Clips)+1, last entry is total duration
}

// NewVideoClipTrack returns an empty clip track.
func NewVideoClipTrack() *VideoClipTrack {
	return &VideoClipTrack{offsets: []int64{0}}
}

// rebuildOffsets recomputes the prefix-sum array. A clip's outgoing
// transition overlaps the boundary with the next clip; half the transition
// duration is deducted from each side, per the renderer's xfade/acrossfade
// contract. Called after any mutation so offsets stay consistent with Clips.
func (t *VideoClipTrack) rebuildOffsets() {
	t.offsets = make([]int64, len(t.Clips)+1)
	var acc int64
	for i, c := range t.Clips {
		t.offsets[i] = acc
		d := c.SourceDurationMs()
		if !c.Transition.IsCut() {
			d -= c.Transition.DurationMs / 2
		}
		if i > 0 {
			prev := t.Clips[i-1]
			if !prev.Transition.IsCut() {
				d -= prev.Transition.DurationMs / 2
			}
		}
		if d < 0 {
			d = 0
		}
		acc += d
	}
	t.offsets[len(t.Clips)] = acc
}

// TotalDurationMs returns the track's total timeline length.
func (t *VideoClipTrack) TotalDurationMs() int64 {
	if len(t.offsets) != len(t.Clips)+1 {
		t.rebuildOffsets()
	}
	return t.offsets[len(t.offsets)-1]
}

// ClipTimelineStart returns the timeline ms at which Clips[index] begins. O(1).
func (t *VideoClipTrack) ClipTimelineStart(index int) (int64, error) {
	if index < 0 || index >= len(t.Clips) {
		return 0, fmmerrors.NotFound(index)
	}
	if len(t.offsets) != len(t.Clips)+1 {
		t.rebuildOffsets()
	}
	return t.offsets[index], nil
}

// ClipAtTimeline returns the index of the clip occupying timeline position
// ms, and the offset into that clip's timeline span. O(log n) via binary
// search over the cached prefix-sum offsets.
func (t *VideoClipTrack) ClipAtTimeline(ms int64) (index int, offsetMs int64, err error) {
	if len(t.offsets) != len(t.Clips)+1 {
		t.rebuildOffsets()
	}
	n := len(t.Clips)
	if n == 0 || ms < 0 || ms >= t.offsets[n] {
		return -1, 0, fmmerrors.OutOfRange("timeline position outside clip track")
	}
	i := sort.Search(n, func(i int) bool { return t.offsets[i+1] > ms })
	return i, ms - t.offsets[i], nil
}

// SourceToTimeline converts a (clip index, source ms) pair to its timeline
// position, or an error if sourceMs falls outside the clip's
// [SourceInMs,SourceOutMs). The caller supplies the clip index explicitly —
// when the same source_path repeats across clips, reverse lookup by path
// alone is ambiguous, so there is no path-only overload.
func (t *VideoClipTrack) SourceToTimeline(index int, sourceMs int64) (int64, error) {
	if index < 0 || index >= len(t.Clips) {
		return 0, fmmerrors.NotFound(index)
	}
	c := t.Clips[index]
	if sourceMs < c.SourceInMs || sourceMs >= c.SourceOutMs {
		return 0, fmmerrors.OutOfRange("source position outside clip bounds")
	}
	start, err := t.ClipTimelineStart(index)
	if err != nil {
		return 0, err
	}
	return start + (sourceMs - c.SourceInMs), nil
}

// AddClip appends a clip to the end of the track.
func (t *VideoClipTrack) AddClip(c VideoClip) int {
	t.Clips = append(t.Clips, c)
	t.rebuildOffsets()
	return len(t.Clips) - 1
}

// InsertClip inserts a clip at index, shifting subsequent clips right.
func (t *VideoClipTrack) InsertClip(index int, c VideoClip) error {
	if index < 0 || index > len(t.Clips) {
		return fmmerrors.NotFound(index)
	}
	t.Clips = append(t.Clips, VideoClip{})
	copy(t.Clips[index+1:], t.Clips[index:])
	t.Clips[index] = c
	t.rebuildOffsets()
	return nil
}

// RemoveClip deletes the clip at index.
func (t *VideoClipTrack) RemoveClip(index int) error {
	if index < 0 || index >= len(t.Clips) {
		return fmmerrors.NotFound(index)
	}
	t.Clips = append(t.Clips[:index], t.Clips[index+1:]...)
	t.rebuildOffsets()
	return nil
}

// SplitClipAtTimeline splits the clip occupying timeline position ms into
// two clips referencing the same source with adjusted in/out points. The
// outgoing transition carries to the new second half; the first half
// becomes a hard cut into its new sibling.
func (t *VideoClipTrack) SplitClipAtTimeline(ms int64) error {
	index, offset, err := t.ClipAtTimeline(ms)
	if err != nil {
		return err
	}
	c := t.Clips[index]
	splitSrcMs := c.SourceInMs + offset
	if splitSrcMs <= c.SourceInMs || splitSrcMs >= c.SourceOutMs {
		return fmmerrors.OutOfRange("split point must be strictly inside the clip")
	}
	left := c
	left.SourceOutMs = splitSrcMs
	left.Transition = Transition{}
	right := c
	right.SourceInMs = splitSrcMs

	t.Clips = append(t.Clips, VideoClip{})
	copy(t.Clips[index+2:], t.Clips[index+1:])
	t.Clips[index] = left
	t.Clips[index+1] = right
	t.rebuildOffsets()
	return nil
}

// TrimClipEdge adjusts the in or out point of the clip at index by deltaMs
// (trimIn trims the start, otherwise the end), rejecting a trim that would
// collapse the clip to zero or negative source duration, and re-validates
// the prefix-sum and transitions afterward.
func (t *VideoClipTrack) TrimClipEdge(index int, trimIn bool, deltaMs int64) error {
	if index < 0 || index >= len(t.Clips) {
		return fmmerrors.NotFound(index)
	}
	c := t.Clips[index]
	if trimIn {
		newIn := c.SourceInMs + deltaMs
		if newIn < 0 || newIn >= c.SourceOutMs {
			return fmmerrors.OutOfRange("trim collapses clip to empty duration")
		}
		c.SourceInMs = newIn
	} else {
		newOut := c.SourceOutMs + deltaMs
		if newOut <= c.SourceInMs {
			return fmmerrors.OutOfRange("trim collapses clip to empty duration")
		}
		c.SourceOutMs = newOut
	}
	t.Clips[index] = c
	t.rebuildOffsets()
	return nil
}

// SetTransition sets the outgoing transition on the clip at index.
func (t *VideoClipTrack) SetTransition(index int, tr Transition) error {
	if index < 0 || index >= len(t.Clips) {
		return fmmerrors.NotFound(index)
	}
	if !tr.IsCut() && tr.DurationMs <= 0 {
		return fmmerrors.SchemaViolation("transition.duration_ms", "must be positive for a non-cut transition")
	}
	t.Clips[index].Transition = tr
	t.rebuildOffsets()
	return nil
}
