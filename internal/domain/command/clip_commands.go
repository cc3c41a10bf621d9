package command

import (
	"fmt"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

func clipTrack(p *model.ProjectState) (*model.VideoClipTrack, error) {
	if p.VideoClipTrack == nil {
		return nil, fmmerrors.NotFound(-1)
	}
	return p.VideoClipTrack, nil
}

// AddClip appends a clip to the end of the project's clip track.
type AddClip struct {
	Clip model.VideoClip

	insertedIndex int
}

func (c *AddClip) Apply(p *model.ProjectState) error {
	if p.VideoClipTrack == nil {
		p.VideoClipTrack = model.NewVideoClipTrack()
	}
	c.insertedIndex = p.VideoClipTrack.AddClip(c.Clip)
	return nil
}

func (c *AddClip) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	return ct.RemoveClip(c.insertedIndex)
}

func (c *AddClip) Description() string { return "Add clip" }

// DeleteClip removes a clip, retaining it for reinsertion on revert.
type DeleteClip struct {
	Index int

	removed model.VideoClip
}

func (c *DeleteClip) Apply(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(ct.Clips) {
		return fmmerrors.NotFound(c.Index)
	}
	c.removed = ct.Clips[c.Index]
	return ct.RemoveClip(c.Index)
}

func (c *DeleteClip) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	return ct.InsertClip(c.Index, c.removed)
}

func (c *DeleteClip) Description() string { return "Delete clip" }

// SplitClip splits the clip at a timeline position; revert removes the
// resulting pair and reinserts the original clip, transition included,
// exactly as it was before the split.
type SplitClip struct {
	TimelineMs int64

	splitIndex   int
	originalClip model.VideoClip
}

func (c *SplitClip) Apply(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	idx, _, err := ct.ClipAtTimeline(c.TimelineMs)
	if err != nil {
		return err
	}
	c.splitIndex = idx
	c.originalClip = ct.Clips[idx]
	return ct.SplitClipAtTimeline(c.TimelineMs)
}

func (c *SplitClip) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	if err := ct.RemoveClip(c.splitIndex + 1); err != nil {
		return err
	}
	if err := ct.RemoveClip(c.splitIndex); err != nil {
		return err
	}
	return ct.InsertClip(c.splitIndex, c.originalClip)
}

func (c *SplitClip) Description() string { return "Split clip" }

// TrimClip adjusts a clip edge by a delta.
type TrimClip struct {
	Index   int
	TrimIn  bool
	DeltaMs int64
}

func (c *TrimClip) Apply(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	return ct.TrimClipEdge(c.Index, c.TrimIn, c.DeltaMs)
}

func (c *TrimClip) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	return ct.TrimClipEdge(c.Index, c.TrimIn, -c.DeltaMs)
}

func (c *TrimClip) Description() string {
	side := "out"
	if c.TrimIn {
		side = "in"
	}
	return fmt.Sprintf("Trim clip %s point", side)
}

// SetTransition sets the outgoing transition on a clip.
type SetTransition struct {
	Index      int
	Transition model.Transition

	oldTransition model.Transition
}

func (c *SetTransition) Apply(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(ct.Clips) {
		return fmmerrors.NotFound(c.Index)
	}
	c.oldTransition = ct.Clips[c.Index].Transition
	return ct.SetTransition(c.Index, c.Transition)
}

func (c *SetTransition) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	return ct.SetTransition(c.Index, c.oldTransition)
}

func (c *SetTransition) Description() string { return "Set clip transition" }

// EditFilter changes a clip's brightness/contrast/saturation filters.
type EditFilter struct {
	Index      int
	NewFilters model.ClipFilters

	oldFilters model.ClipFilters
}

func (c *EditFilter) Apply(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(ct.Clips) {
		return fmmerrors.NotFound(c.Index)
	}
	c.oldFilters = ct.Clips[c.Index].Filters
	ct.Clips[c.Index].Filters = c.NewFilters
	return nil
}

func (c *EditFilter) Revert(p *model.ProjectState) error {
	ct, err := clipTrack(p)
	if err != nil {
		return err
	}
	ct.Clips[c.Index].Filters = c.oldFilters
	return nil
}

func (c *EditFilter) Description() string { return "Edit clip filters" }
