package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

func mustSeg(t *testing.T, startMs, endMs int64, text string) SubtitleSegment {
	t.Helper()
	seg, err := NewSubtitleSegment(startMs, endMs, text)
	require.NoError(t, err)
	return seg
}

func TestSubtitleTrack_SegmentAt(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, err := track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	require.NoError(t, err)
	_, err = track.AddSegment(mustSeg(t, 2000, 3000, "b"))
	require.NoError(t, err)

	t.Run("before first segment", func(t *testing.T) {
		assert.Equal(t, -1, track.SegmentAt(500))
	})
	t.Run("inside first segment", func(t *testing.T) {
		assert.Equal(t, 0, track.SegmentAt(1500))
	})
	t.Run("half-open boundary belongs to the next segment", func(t *testing.T) {
		assert.Equal(t, 1, track.SegmentAt(2000))
	})
	t.Run("gap between segments", func(t *testing.T) {
		track2 := NewSubtitleTrack("Default", "en")
		_, _ = track2.AddSegment(mustSeg(t, 1000, 1500, "a"))
		_, _ = track2.AddSegment(mustSeg(t, 2000, 2500, "b"))
		assert.Equal(t, -1, track2.SegmentAt(1700))
	})
	t.Run("after last segment", func(t *testing.T) {
		assert.Equal(t, -1, track.SegmentAt(3000))
	})
}

func TestSubtitleTrack_AddSegment_RejectsOverlap(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, err := track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	require.NoError(t, err)

	_, err = track.AddSegment(mustSeg(t, 1500, 2500, "b"))
	require.Error(t, err)
	var fe *fmmerrors.FmmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeOverlap, fe.Code)
	assert.Len(t, track.Segments, 1, "rejected add must not mutate the track")
}

func TestSubtitleTrack_MoveSegment_RejectsCollisionAtomically(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	_, _ = track.AddSegment(mustSeg(t, 2000, 3000, "b"))

	before := append([]SubtitleSegment(nil), track.Segments...)
	err := track.MoveSegment(0, 1500, 10000)
	require.Error(t, err)
	assert.Equal(t, before, track.Segments, "failed move must leave state unchanged")
}

func TestSubtitleTrack_SplitSegment(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 3000, "hello"))

	require.NoError(t, track.SplitSegment(0, 2000))
	require.Len(t, track.Segments, 2)
	assert.Equal(t, int64(1000), track.Segments[0].StartMs)
	assert.Equal(t, int64(2000), track.Segments[0].EndMs)
	assert.Equal(t, int64(2000), track.Segments[1].StartMs)
	assert.Equal(t, int64(3000), track.Segments[1].EndMs)
}

func TestSubtitleTrack_MergeSegments(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 2000, "hello"))
	_, _ = track.AddSegment(mustSeg(t, 2300, 3000, "world"))

	require.NoError(t, track.MergeSegments(0, 0))
	require.Len(t, track.Segments, 1)
	assert.Equal(t, "hello\nworld", track.Segments[0].Text)
	assert.Equal(t, int64(1000), track.Segments[0].StartMs)
	assert.Equal(t, int64(3000), track.Segments[0].EndMs)
}

func TestSubtitleTrack_MergeSegments_RejectsTooFarApart(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	_, _ = track.AddSegment(mustSeg(t, 3000, 4000, "b"))

	err := track.MergeSegments(0, 0)
	require.Error(t, err)
	assert.Len(t, track.Segments, 2)
}

func TestSubtitleTrack_BatchShift_AllOrNothing(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	_, _ = track.AddSegment(mustSeg(t, 3000, 4000, "b"))

	t.Run("valid shift moves every named segment", func(t *testing.T) {
		track2 := NewSubtitleTrack("Default", "en")
		_, _ = track2.AddSegment(mustSeg(t, 1000, 2000, "a"))
		_, _ = track2.AddSegment(mustSeg(t, 3000, 4000, "b"))
		require.NoError(t, track2.BatchShift([]int{0, 1}, 500, 10000))
		assert.Equal(t, int64(1500), track2.Segments[0].StartMs)
		assert.Equal(t, int64(3500), track2.Segments[1].StartMs)
	})

	t.Run("overlap produced by shift rejects the whole batch", func(t *testing.T) {
		before := append([]SubtitleSegment(nil), track.Segments...)
		err := track.BatchShift([]int{0}, 2100, 10000)
		require.Error(t, err)
		assert.Equal(t, before, track.Segments)
	})
}

func TestSubtitleTrack_IsDisjoint(t *testing.T) {
	track := NewSubtitleTrack("Default", "en")
	_, _ = track.AddSegment(mustSeg(t, 1000, 2000, "a"))
	_, _ = track.AddSegment(mustSeg(t, 2000, 3000, "b"))
	assert.True(t, track.IsDisjoint())
}
