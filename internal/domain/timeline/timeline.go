// Package timeline implements the coordinate engine every UI component, the
// player, and the export renderer agree on: a single output timeline of
// integer milliseconds, plus the (clip index, source ms) cursor needed to
// track position across a multi-source clip sequence without ambiguity.
package timeline

import (
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// BoundaryEpsilonMs is the tolerance used to detect a clip-boundary
// crossing during ordinary playback, so natural player drift does not miss
// a switch between clips.
const BoundaryEpsilonMs int64 = 30

// NoHint is passed to SeekSource when the caller has no expected clip
// index. SeekSource then succeeds only when exactly one clip contains the
// source position; a position that repeats across multiple clips is
// reported as ambiguous rather than resolved to the first match.
const NoHint = -1

// Cursor is the engine's notion of "where we are": which clip (when a clip
// track is present) and how far into that clip's source. Advancing by
// wallclock must consult the cursor rather than recomputing purely from
// SourceMs, because distinct clips can share the same source file.
type Cursor struct {
	ClipIndex int
	SourceMs  int64
}

// Engine maps between output-timeline time and (clip index, source time).
// Without a clip track the output timeline is just the primary video's own
// time; PrimaryDurationMs is used in that mode.
type Engine struct {
	Clips             *model.VideoClipTrack
	PrimaryDurationMs int64
}

// NewEngine constructs an engine. clips may be nil, meaning the output
// timeline equals the primary video's own time.
func NewEngine(clips *model.VideoClipTrack, primaryDurationMs int64) *Engine {
	return &Engine{Clips: clips, PrimaryDurationMs: primaryDurationMs}
}

func (e *Engine) hasClips() bool {
	return e.Clips != nil && len(e.Clips.Clips) > 0
}

// TotalDurationMs returns the engine's current output-timeline duration.
func (e *Engine) TotalDurationMs() int64 {
	if e.hasClips() {
		return e.Clips.TotalDurationMs()
	}
	return e.PrimaryDurationMs
}

// SeekTimeline jumps directly to timeline position ms, returning the
// cursor that corresponds to it. Always updates the cursor before any
// position notification would be emitted by the caller, per the
// monotone-progression invariant.
func (e *Engine) SeekTimeline(ms int64) (Cursor, error) {
	if !e.hasClips() {
		if ms < 0 || ms > e.PrimaryDurationMs {
			return Cursor{}, fmmerrors.OutOfRange("seek position outside primary video duration")
		}
		return Cursor{ClipIndex: NoHint, SourceMs: ms}, nil
	}
	idx, offset, err := e.Clips.ClipAtTimeline(ms)
	if err != nil {
		return Cursor{}, err
	}
	clip := e.Clips.Clips[idx]
	return Cursor{ClipIndex: idx, SourceMs: clip.SourceInMs + offset}, nil
}

// TimelineMs returns the output-timeline position corresponding to cursor.
func (e *Engine) TimelineMs(cursor Cursor) (int64, error) {
	if !e.hasClips() {
		return cursor.SourceMs, nil
	}
	return e.Clips.SourceToTimeline(cursor.ClipIndex, cursor.SourceMs)
}

// SeekSource maps a (sourcePath, sourceMs) pair back onto the timeline.
// When the same source repeats across clips this is ambiguous, so the
// caller must pass hintClipIndex; with NoHint, a position contained in more
// than one clip is an error.
func (e *Engine) SeekSource(sourcePath string, sourceMs int64, hintClipIndex int) (Cursor, error) {
	if !e.hasClips() {
		return Cursor{ClipIndex: NoHint, SourceMs: sourceMs}, nil
	}
	if hintClipIndex != NoHint {
		if hintClipIndex < 0 || hintClipIndex >= len(e.Clips.Clips) {
			return Cursor{}, fmmerrors.NotFound(hintClipIndex)
		}
		clip := e.Clips.Clips[hintClipIndex]
		if clip.SourcePath != sourcePath || sourceMs < clip.SourceInMs || sourceMs >= clip.SourceOutMs {
			return Cursor{}, fmmerrors.OutOfRange("hinted clip does not contain the requested source position")
		}
		return Cursor{ClipIndex: hintClipIndex, SourceMs: sourceMs}, nil
	}
	matches := 0
	found := -1
	for i, clip := range e.Clips.Clips {
		if clip.SourcePath == sourcePath && sourceMs >= clip.SourceInMs && sourceMs < clip.SourceOutMs {
			matches++
			if found == -1 {
				found = i
			}
		}
	}
	if matches == 0 {
		return Cursor{}, fmmerrors.OutOfRange("source position not found in any clip")
	}
	if matches > 1 {
		return Cursor{}, fmmerrors.SchemaViolation("clip_index", "source position is ambiguous across multiple clips; a hint is required")
	}
	return Cursor{ClipIndex: found, SourceMs: sourceMs}, nil
}

// Advance moves cursor forward by deltaMs of wallclock playback, crossing
// into the next clip when the delta runs past the current clip's end
// (tolerating BoundaryEpsilonMs of overshoot/undershoot so ordinary player
// drift does not miss the switch). Returns the new cursor and whether a
// boundary was crossed.
func (e *Engine) Advance(cursor Cursor, deltaMs int64) (Cursor, bool, error) {
	if !e.hasClips() {
		next := cursor.SourceMs + deltaMs
		if next < 0 {
			next = 0
		}
		if next > e.PrimaryDurationMs {
			next = e.PrimaryDurationMs
		}
		return Cursor{ClipIndex: NoHint, SourceMs: next}, false, nil
	}
	if cursor.ClipIndex < 0 || cursor.ClipIndex >= len(e.Clips.Clips) {
		return Cursor{}, false, fmmerrors.NotFound(cursor.ClipIndex)
	}
	clip := e.Clips.Clips[cursor.ClipIndex]
	newSourceMs := cursor.SourceMs + deltaMs

	if newSourceMs < clip.SourceOutMs-BoundaryEpsilonMs {
		return Cursor{ClipIndex: cursor.ClipIndex, SourceMs: newSourceMs}, false, nil
	}

	overshoot := newSourceMs - clip.SourceOutMs
	nextIndex := cursor.ClipIndex + 1
	if nextIndex >= len(e.Clips.Clips) {
		return Cursor{ClipIndex: cursor.ClipIndex, SourceMs: clip.SourceOutMs}, false, nil
	}
	next := e.Clips.Clips[nextIndex]
	nextSourceMs := next.SourceInMs + overshoot
	if nextSourceMs < next.SourceInMs {
		nextSourceMs = next.SourceInMs
	}
	return Cursor{ClipIndex: nextIndex, SourceMs: nextSourceMs}, true, nil
}
