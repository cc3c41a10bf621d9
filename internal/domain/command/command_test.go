package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

func newTestProject(t *testing.T) *model.ProjectState {
	t.Helper()
	p := model.NewProjectState()
	p.AddSubtitleTrack(model.NewSubtitleTrack("Default", "en"))
	return p
}

func snapshot(t *testing.T, p *model.ProjectState) string {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return string(b)
}

func TestStack_UndoRevertsToByteIdenticalState(t *testing.T) {
	p := newTestProject(t)
	before := snapshot(t, p)

	stack := NewStack(DefaultMaxDepth)
	seg, err := model.NewSubtitleSegment(1000, 2000, "hello")
	require.NoError(t, err)
	require.NoError(t, stack.Do(p, &AddSegment{TrackIndex: 0, Segment: seg}))
	assert.NotEqual(t, before, snapshot(t, p))

	require.NoError(t, stack.Undo(p))
	assert.Equal(t, before, snapshot(t, p), "undo must restore byte-identical serialization")
}

func TestStack_RedoReappliesCommand(t *testing.T) {
	p := newTestProject(t)
	stack := NewStack(DefaultMaxDepth)
	seg, err := model.NewSubtitleSegment(1000, 2000, "hello")
	require.NoError(t, err)
	require.NoError(t, stack.Do(p, &AddSegment{TrackIndex: 0, Segment: seg}))
	after := snapshot(t, p)

	require.NoError(t, stack.Undo(p))
	require.NoError(t, stack.Redo(p))
	assert.Equal(t, after, snapshot(t, p))
}

func TestStack_FailedApplyLeavesStackUnchanged(t *testing.T) {
	p := newTestProject(t)
	stack := NewStack(DefaultMaxDepth)

	err := stack.Do(p, &DeleteSegment{TrackIndex: 0, Index: 5})
	require.Error(t, err)
	assert.False(t, stack.CanUndo())
}

func TestStack_EvictsOldestBeyondMaxDepth(t *testing.T) {
	p := newTestProject(t)
	stack := NewStack(2)

	for i := 0; i < 3; i++ {
		seg, err := model.NewSubtitleSegment(int64(i*1000), int64(i*1000+500), "x")
		require.NoError(t, err)
		require.NoError(t, stack.Do(p, &AddSegment{TrackIndex: 0, Segment: seg}))
	}
	assert.Len(t, stack.History(), 2, "stack must evict the oldest entry once over its bound")
}

func TestStack_NewCommandClearsRedo(t *testing.T) {
	p := newTestProject(t)
	stack := NewStack(DefaultMaxDepth)
	seg1, _ := model.NewSubtitleSegment(1000, 2000, "a")
	seg2, _ := model.NewSubtitleSegment(3000, 4000, "b")

	require.NoError(t, stack.Do(p, &AddSegment{TrackIndex: 0, Segment: seg1}))
	require.NoError(t, stack.Undo(p))
	assert.True(t, stack.CanRedo())

	require.NoError(t, stack.Do(p, &AddSegment{TrackIndex: 0, Segment: seg2}))
	assert.False(t, stack.CanRedo(), "applying a new command must clear the redo side")
}

func TestSplitCommand_UndoRevertsToByteIdenticalState(t *testing.T) {
	p := newTestProject(t)
	track := p.SubtitleTracks[0]
	seg, err := model.NewSubtitleSegment(0, 4000, "hello world")
	require.NoError(t, err)
	_, err = track.AddSegment(seg)
	require.NoError(t, err)
	before := snapshot(t, p)

	stack := NewStack(DefaultMaxDepth)
	require.NoError(t, stack.Do(p, &Split{TrackIndex: 0, Index: 0, AtMs: 2000}))
	require.Len(t, track.Segments, 2)
	assert.NotEqual(t, before, snapshot(t, p))

	require.NoError(t, stack.Undo(p))
	require.Len(t, track.Segments, 1)
	assert.Equal(t, "hello world", track.Segments[0].Text, "revert must restore the original text, not a merge of both duplicated halves")
	assert.Equal(t, before, snapshot(t, p), "undo must restore byte-identical serialization")
}

func TestMergeCommand_UndoRevertsToByteIdenticalState(t *testing.T) {
	p := newTestProject(t)
	track := p.SubtitleTracks[0]
	segA, err := model.NewSubtitleSegment(0, 2000, "hello")
	require.NoError(t, err)
	segB, err := model.NewSubtitleSegment(2000, 4000, "world")
	require.NoError(t, err)
	_, err = track.AddSegment(segA)
	require.NoError(t, err)
	_, err = track.AddSegment(segB)
	require.NoError(t, err)
	before := snapshot(t, p)

	stack := NewStack(DefaultMaxDepth)
	require.NoError(t, stack.Do(p, &Merge{TrackIndex: 0, Index: 0, GapLimitMs: model.MergeGapMs}))
	require.Len(t, track.Segments, 1)
	assert.NotEqual(t, before, snapshot(t, p))

	require.NoError(t, stack.Undo(p))
	require.Len(t, track.Segments, 2)
	assert.Equal(t, "hello", track.Segments[0].Text)
	assert.Equal(t, "world", track.Segments[1].Text, "revert must restore both original texts, not split the merged \"a\\nb\" text")
	assert.Equal(t, before, snapshot(t, p), "undo must restore byte-identical serialization")
}

func TestSplitClipCommand_UndoRevertsToByteIdenticalState(t *testing.T) {
	p := newTestProject(t)
	p.VideoClipTrack = model.NewVideoClipTrack()
	clip, err := model.NewVideoClip("/videos/a.mp4", 0, 4000)
	require.NoError(t, err)
	p.VideoClipTrack.AddClip(clip)
	before := snapshot(t, p)

	stack := NewStack(DefaultMaxDepth)
	require.NoError(t, stack.Do(p, &SplitClip{TimelineMs: 2000}))
	require.Len(t, p.VideoClipTrack.Clips, 2, "split must produce two clips")
	assert.NotEqual(t, before, snapshot(t, p))

	require.NoError(t, stack.Undo(p))
	require.Len(t, p.VideoClipTrack.Clips, 1, "undo must restore the single original clip, not leave it deleted")
	assert.Equal(t, before, snapshot(t, p), "undo must restore byte-identical serialization")
}

func TestBatchShiftCommand_AtomicRevert(t *testing.T) {
	p := newTestProject(t)
	seg1, _ := model.NewSubtitleSegment(1000, 2000, "a")
	seg2, _ := model.NewSubtitleSegment(3000, 4000, "b")
	track := p.SubtitleTracks[0]
	_, _ = track.AddSegment(seg1)
	_, _ = track.AddSegment(seg2)
	before := snapshot(t, p)

	stack := NewStack(DefaultMaxDepth)
	cmd := &BatchShift{TrackIndex: 0, Indices: []int{0, 1}, DeltaMs: 500, DurationMs: 10000}
	require.NoError(t, stack.Do(p, cmd))
	require.NoError(t, stack.Undo(p))
	assert.Equal(t, before, snapshot(t, p))
}
