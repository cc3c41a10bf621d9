package command

import (
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// AddImageOverlay inserts a new image overlay.
type AddImageOverlay struct {
	Overlay model.ImageOverlay

	insertedIndex int
}

func (c *AddImageOverlay) Apply(p *model.ProjectState) error {
	idx, err := p.ImageOverlayTrack.Add(c.Overlay)
	if err != nil {
		return err
	}
	c.insertedIndex = idx
	return nil
}

func (c *AddImageOverlay) Revert(p *model.ProjectState) error {
	return p.ImageOverlayTrack.Remove(c.insertedIndex)
}

func (c *AddImageOverlay) Description() string { return "Add image overlay" }

// MoveImageOverlay repositions an overlay in time and/or space.
type MoveImageOverlay struct {
	Index            int
	NewStartMs       int64
	NewEndMs         int64
	NewXPercent      float32
	NewYPercent      float32

	movedIndex int
	old        model.ImageOverlay
}

func (c *MoveImageOverlay) Apply(p *model.ProjectState) error {
	if c.Index < 0 || c.Index >= len(p.ImageOverlayTrack.Overlays) {
		return fmmerrors.NotFound(c.Index)
	}
	c.old = p.ImageOverlayTrack.Overlays[c.Index]
	idx, err := p.ImageOverlayTrack.Move(c.Index, c.NewStartMs, c.NewEndMs, c.NewXPercent, c.NewYPercent)
	if err != nil {
		return err
	}
	c.movedIndex = idx
	return nil
}

func (c *MoveImageOverlay) Revert(p *model.ProjectState) error {
	_, err := p.ImageOverlayTrack.Move(c.movedIndex, c.old.StartMs, c.old.EndMs, c.old.XPercent, c.old.YPercent)
	return err
}

func (c *MoveImageOverlay) Description() string { return "Move image overlay" }

// RemoveImageOverlay deletes an overlay, retaining it for reinsertion.
type RemoveImageOverlay struct {
	Index int

	removed model.ImageOverlay
}

func (c *RemoveImageOverlay) Apply(p *model.ProjectState) error {
	if c.Index < 0 || c.Index >= len(p.ImageOverlayTrack.Overlays) {
		return fmmerrors.NotFound(c.Index)
	}
	c.removed = p.ImageOverlayTrack.Overlays[c.Index]
	return p.ImageOverlayTrack.Remove(c.Index)
}

func (c *RemoveImageOverlay) Revert(p *model.ProjectState) error {
	_, err := p.ImageOverlayTrack.Add(c.removed)
	return err
}

func (c *RemoveImageOverlay) Description() string { return "Remove image overlay" }

// AddTextOverlay inserts a new text overlay.
type AddTextOverlay struct {
	Overlay model.TextOverlay

	insertedIndex int
}

func (c *AddTextOverlay) Apply(p *model.ProjectState) error {
	idx, err := p.TextOverlayTrack.Add(c.Overlay)
	if err != nil {
		return err
	}
	c.insertedIndex = idx
	return nil
}

func (c *AddTextOverlay) Revert(p *model.ProjectState) error {
	return p.TextOverlayTrack.Remove(c.insertedIndex)
}

func (c *AddTextOverlay) Description() string { return "Add text overlay" }

// EditTextOverlay changes a text overlay's text/time window.
type EditTextOverlay struct {
	Index      int
	NewText    string
	NewStartMs int64
	NewEndMs   int64

	old model.TextOverlay
}

func (c *EditTextOverlay) Apply(p *model.ProjectState) error {
	if c.Index < 0 || c.Index >= len(p.TextOverlayTrack.Overlays) {
		return fmmerrors.NotFound(c.Index)
	}
	c.old = p.TextOverlayTrack.Overlays[c.Index]
	return p.TextOverlayTrack.Edit(c.Index, c.NewText, c.NewStartMs, c.NewEndMs)
}

func (c *EditTextOverlay) Revert(p *model.ProjectState) error {
	return p.TextOverlayTrack.Edit(c.Index, c.old.Text, c.old.StartMs, c.old.EndMs)
}

func (c *EditTextOverlay) Description() string { return "Edit text overlay" }
