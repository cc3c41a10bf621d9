package model

import (
	"sort"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// MergeGapMs is the default maximum gap tolerated between two segments for
// MergeSegments to treat them as mergeable.
const MergeGapMs int64 = 500

// SubtitleSegment is a disjoint, half-open [StartMs, EndMs) subtitle
// interval with optional per-segment style, synthesised audio, and volume.
type SubtitleSegment struct {
	StartMs   int64          `json:"start_ms"`
	EndMs     int64          `json:"end_ms"`
	Text      string         `json:"text"`
	Style     *SubtitleStyle `json:"style,omitempty"`
	AudioFile string         `json:"audio_file,omitempty"`
	Volume    float32        `json:"volume"`
}

// NewSubtitleSegment builds a segment with the default volume of 1.0.
func NewSubtitleSegment(startMs, endMs int64, text string) (SubtitleSegment, error) {
	if startMs < 0 || startMs >= endMs {
		return SubtitleSegment{}, fmmerrors.OutOfRange("segment requires 0 <= start_ms < end_ms")
	}
	return SubtitleSegment{StartMs: startMs, EndMs: endMs, Text: text, Volume: 1.0}, nil
}

func (s SubtitleSegment) DurationMs() int64 { return s.EndMs - s.StartMs }

// SubtitleTrack holds a sorted, disjoint sequence of segments plus the
// track's own language/name and optional merged TTS audio placement.
type SubtitleTrack struct {
	Name            string            `json:"name"`
	Language        string            `json:"language"`
	Segments        []SubtitleSegment `json:"segments"`
	AudioPath       string            `json:"audio_path,omitempty"`
	AudioStartMs    int64             `json:"audio_start_ms"`
	AudioDurationMs int64             `json:"audio_duration_ms"`
}

// NewSubtitleTrack returns an empty named track.
func NewSubtitleTrack(name, language string) *SubtitleTrack {
	return &SubtitleTrack{Name: name, Language: language}
}

// SegmentAt returns the index of the segment containing ms (half-open on
// end), or -1 if none contains it. O(log n) via binary search on StartMs.
func (t *SubtitleTrack) SegmentAt(ms int64) int {
	n := len(t.Segments)
	i := sort.Search(n, func(i int) bool { return t.Segments[i].StartMs > ms })
	// i is the first segment whose StartMs > ms; the candidate is i-1.
	if i == 0 {
		return -1
	}
	cand := i - 1
	if ms >= t.Segments[cand].StartMs && ms < t.Segments[cand].EndMs {
		return cand
	}
	return -1
}

// insertionIndex returns the sorted position a segment with the given
// StartMs would occupy.
func (t *SubtitleTrack) insertionIndex(startMs int64) int {
	return sort.Search(len(t.Segments), func(i int) bool { return t.Segments[i].StartMs >= startMs })
}

// overlaps reports whether [startMs,endMs) intersects the segment at index i.
func (t *SubtitleTrack) overlapsAt(i int, startMs, endMs int64) bool {
	if i < 0 || i >= len(t.Segments) {
		return false
	}
	seg := t.Segments[i]
	return startMs < seg.EndMs && endMs > seg.StartMs
}

// AddSegment inserts seg into sorted order, failing with Overlap if it
// collides with an existing segment. Returns the insertion index.
func (t *SubtitleTrack) AddSegment(seg SubtitleSegment) (int, error) {
	idx := t.insertionIndex(seg.StartMs)
	if t.overlapsAt(idx-1, seg.StartMs, seg.EndMs) || t.overlapsAt(idx, seg.StartMs, seg.EndMs) {
		return -1, fmmerrors.Overlap("segment overlaps an existing segment")
	}
	t.Segments = append(t.Segments, SubtitleSegment{})
	copy(t.Segments[idx+1:], t.Segments[idx:])
	t.Segments[idx] = seg
	return idx, nil
}

// RemoveSegment deletes the segment at index.
func (t *SubtitleTrack) RemoveSegment(index int) error {
	if index < 0 || index >= len(t.Segments) {
		return fmmerrors.NotFound(index)
	}
	t.Segments = append(t.Segments[:index], t.Segments[index+1:]...)
	return nil
}

// MoveSegment shifts the segment at index by deltaMs, clamping to
// [0, durationMs]. The move is rejected atomically (no partial state) if it
// would violate disjointness with a neighbor or go out of range.
func (t *SubtitleTrack) MoveSegment(index int, deltaMs int64, durationMs int64) error {
	if index < 0 || index >= len(t.Segments) {
		return fmmerrors.NotFound(index)
	}
	seg := t.Segments[index]
	newStart := seg.StartMs + deltaMs
	newEnd := seg.EndMs + deltaMs
	if newStart < 0 {
		shift := -newStart
		newStart += shift
		newEnd += shift
	}
	if durationMs > 0 && newEnd > durationMs {
		shift := newEnd - durationMs
		newStart -= shift
		newEnd -= shift
	}
	if newStart < 0 {
		return fmmerrors.OutOfRange("segment cannot fit within track duration")
	}
	if index > 0 && newStart < t.Segments[index-1].EndMs {
		return fmmerrors.Overlap("move collides with previous segment")
	}
	if index < len(t.Segments)-1 && newEnd > t.Segments[index+1].StartMs {
		return fmmerrors.Overlap("move collides with next segment")
	}
	t.Segments[index].StartMs = newStart
	t.Segments[index].EndMs = newEnd
	return nil
}

// SplitSegment splits the segment at index into two at atMs, copying style
// and dividing the audio file reference across both halves, when
// start < atMs < end.
func (t *SubtitleTrack) SplitSegment(index int, atMs int64) error {
	if index < 0 || index >= len(t.Segments) {
		return fmmerrors.NotFound(index)
	}
	seg := t.Segments[index]
	if atMs <= seg.StartMs || atMs >= seg.EndMs {
		return fmmerrors.OutOfRange("split point must be strictly inside the segment")
	}
	left := seg
	left.EndMs = atMs
	right := seg
	right.StartMs = atMs

	t.Segments = append(t.Segments, SubtitleSegment{})
	copy(t.Segments[index+2:], t.Segments[index+1:])
	t.Segments[index] = left
	t.Segments[index+1] = right
	return nil
}

// MergeSegments merges segment i with i+1 when the gap between them is at
// most gapLimitMs (MergeGapMs when gapLimitMs <= 0). The merged text is
// "a\nb".
func (t *SubtitleTrack) MergeSegments(i int, gapLimitMs int64) error {
	if i < 0 || i+1 >= len(t.Segments) {
		return fmmerrors.NotFound(i)
	}
	a, b := t.Segments[i], t.Segments[i+1]
	if gapLimitMs <= 0 {
		gapLimitMs = MergeGapMs
	}
	if b.StartMs-a.EndMs > gapLimitMs {
		return fmmerrors.OutOfRange("segments are not close enough to merge")
	}
	merged := a
	merged.EndMs = b.EndMs
	merged.Text = a.Text + "\n" + b.Text
	t.Segments[i] = merged
	t.Segments = append(t.Segments[:i+1], t.Segments[i+2:]...)
	return nil
}

// BatchShift shifts every segment named by indices by deltaMs, all-or-nothing:
// if any resulting overlap (with a neighbor not itself in indices) occurs,
// no segment is modified.
func (t *SubtitleTrack) BatchShift(indices []int, deltaMs int64, durationMs int64) error {
	for _, i := range indices {
		if i < 0 || i >= len(t.Segments) {
			return fmmerrors.NotFound(i)
		}
	}

	proposed := make([]SubtitleSegment, len(t.Segments))
	copy(proposed, t.Segments)
	for _, i := range indices {
		proposed[i].StartMs += deltaMs
		proposed[i].EndMs += deltaMs
		if proposed[i].StartMs < 0 || (durationMs > 0 && proposed[i].EndMs > durationMs) {
			return fmmerrors.OutOfRange("batch shift moves a segment out of range")
		}
	}

	sorted := make([]SubtitleSegment, len(proposed))
	copy(sorted, proposed)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].StartMs < sorted[b].StartMs })
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i].EndMs > sorted[i+1].StartMs {
			return fmmerrors.Overlap("batch shift produces overlapping segments")
		}
	}

	t.Segments = proposed
	sort.SliceStable(t.Segments, func(a, b int) bool { return t.Segments[a].StartMs < t.Segments[b].StartMs })
	return nil
}

// IsDisjoint verifies invariant 1 of the project model: every segment ends
// at or before the next one starts.
func (t *SubtitleTrack) IsDisjoint() bool {
	for i := 0; i+1 < len(t.Segments); i++ {
		if t.Segments[i].EndMs > t.Segments[i+1].StartMs {
			return false
		}
	}
	return true
}
