package model

import (
	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// ImageOverlay places a static image above the video for a timeline span.
// Position and size are expressed as percentages of the output canvas so
// overlays stay correctly placed across resolution changes; the export
// renderer resolves them to pixels at render time.
type ImageOverlay struct {
	ImagePath    string  `json:"image_path"`
	StartMs      int64   `json:"start_ms"`
	EndMs        int64   `json:"end_ms"`
	XPercent     float32 `json:"x_percent"`
	YPercent     float32 `json:"y_percent"`
	ScalePercent float32 `json:"scale_percent"`
	Opacity      float32 `json:"opacity"`
}

// ImageOverlayTrack holds overlays sorted by StartMs; overlaps are
// permitted since they composite independently in the filter graph.
type ImageOverlayTrack struct {
	Overlays []ImageOverlay `json:"overlays"`
}

func NewImageOverlayTrack() *ImageOverlayTrack { return &ImageOverlayTrack{} }

func (t *ImageOverlayTrack) sortedInsert(o ImageOverlay) int {
	idx := len(t.Overlays)
	for i, existing := range t.Overlays {
		if o.StartMs < existing.StartMs {
			idx = i
			break
		}
	}
	t.Overlays = append(t.Overlays, ImageOverlay{})
	copy(t.Overlays[idx+1:], t.Overlays[idx:])
	t.Overlays[idx] = o
	return idx
}

// Add inserts an overlay in StartMs order and returns its index.
func (t *ImageOverlayTrack) Add(o ImageOverlay) (int, error) {
	if o.StartMs < 0 || o.StartMs >= o.EndMs {
		return -1, fmmerrors.OutOfRange("overlay requires 0 <= start_ms < end_ms")
	}
	if o.Opacity == 0 {
		o.Opacity = 1.0
	}
	if o.ScalePercent == 0 {
		o.ScalePercent = 100
	}
	return t.sortedInsert(o), nil
}

// Move repositions the overlay at index in time and/or space, re-sorting
// the track by StartMs and returning the overlay's new index.
func (t *ImageOverlayTrack) Move(index int, startMs, endMs int64, xPercent, yPercent float32) (int, error) {
	if index < 0 || index >= len(t.Overlays) {
		return -1, fmmerrors.NotFound(index)
	}
	if startMs < 0 || startMs >= endMs {
		return -1, fmmerrors.OutOfRange("overlay requires 0 <= start_ms < end_ms")
	}
	o := t.Overlays[index]
	t.Overlays = append(t.Overlays[:index], t.Overlays[index+1:]...)
	o.StartMs, o.EndMs, o.XPercent, o.YPercent = startMs, endMs, xPercent, yPercent
	return t.sortedInsert(o), nil
}

// Remove deletes the overlay at index.
func (t *ImageOverlayTrack) Remove(index int) error {
	if index < 0 || index >= len(t.Overlays) {
		return fmmerrors.NotFound(index)
	}
	t.Overlays = append(t.Overlays[:index], t.Overlays[index+1:]...)
	return nil
}

// Active returns the indices of overlays visible at timeline position ms.
func (t *ImageOverlayTrack) Active(ms int64) []int {
	var out []int
	for i, o := range t.Overlays {
		if ms >= o.StartMs && ms < o.EndMs {
			out = append(out, i)
		}
	}
	return out
}

// ClampToDuration clamps every overlay's time window into [0, durationMs]
// rather than dropping it, per the load-time clamping invariant.
func (t *ImageOverlayTrack) ClampToDuration(durationMs int64) {
	for i := range t.Overlays {
		o := &t.Overlays[i]
		if o.StartMs < 0 {
			o.StartMs = 0
		}
		if o.EndMs > durationMs {
			o.EndMs = durationMs
		}
		if o.EndMs <= o.StartMs {
			o.EndMs = o.StartMs + 1
		}
	}
}

// TextOverlay is a free-floating drawtext annotation, independent of the
// subtitle track (e.g. a watermark, a lower-third, a call-out).
type TextOverlay struct {
	Text     string         `json:"text"`
	StartMs  int64          `json:"start_ms"`
	EndMs    int64          `json:"end_ms"`
	Style    *SubtitleStyle `json:"style,omitempty"`
	XPercent float32        `json:"x_percent"`
	YPercent float32        `json:"y_percent"`
}

// TextOverlayTrack holds an unordered collection of text overlays.
type TextOverlayTrack struct {
	Overlays []TextOverlay `json:"overlays"`
}

func NewTextOverlayTrack() *TextOverlayTrack { return &TextOverlayTrack{} }

func (t *TextOverlayTrack) Add(o TextOverlay) (int, error) {
	if o.StartMs < 0 || o.StartMs >= o.EndMs {
		return -1, fmmerrors.OutOfRange("text overlay requires 0 <= start_ms < end_ms")
	}
	t.Overlays = append(t.Overlays, o)
	return len(t.Overlays) - 1, nil
}

func (t *TextOverlayTrack) Edit(index int, text string, startMs, endMs int64) error {
	if index < 0 || index >= len(t.Overlays) {
		return fmmerrors.NotFound(index)
	}
	if startMs < 0 || startMs >= endMs {
		return fmmerrors.OutOfRange("text overlay requires 0 <= start_ms < end_ms")
	}
	o := &t.Overlays[index]
	o.Text, o.StartMs, o.EndMs = text, startMs, endMs
	return nil
}

func (t *TextOverlayTrack) Remove(index int) error {
	if index < 0 || index >= len(t.Overlays) {
		return fmmerrors.NotFound(index)
	}
	t.Overlays = append(t.Overlays[:index], t.Overlays[index+1:]...)
	return nil
}
