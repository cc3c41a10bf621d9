package model

import (
	"os"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// BGMTrack is the project's single background-music bed: an audio-only
// source with its own gain and placement on the output timeline.
type BGMTrack struct {
	AudioPath string  `json:"audio_path,omitempty"`
	StartMs   int64   `json:"start_ms"`
	Volume    float32 `json:"volume"`
}

// ProjectState is the root aggregate a host UI loads, edits through the
// command system (never directly except via these constructors/mutators),
// and persists. Workers never hold a reference to it; they return pure
// result values the main thread applies via commands.
type ProjectState struct {
	VideoPath         string             `json:"video_path,omitempty"`
	DurationMs        int64              `json:"duration_ms"`
	SubtitleTracks    []*SubtitleTrack   `json:"subtitle_tracks"`
	ActiveTrackIndex  int                `json:"active_track_index"`
	DefaultStyle      SubtitleStyle      `json:"default_style"`
	ImageOverlayTrack *ImageOverlayTrack `json:"image_overlay_track"`
	TextOverlayTrack  *TextOverlayTrack  `json:"text_overlay_track"`
	VideoClipTrack    *VideoClipTrack    `json:"video_clip_track,omitempty"`
	BGM               BGMTrack           `json:"bgm"`
}

// NewProjectState returns an empty project: no tracks, active_track_index
// -1, default style, empty overlay tracks, no clip track (timeline equals
// the primary video once VideoPath is set).
func NewProjectState() *ProjectState {
	return &ProjectState{
		ActiveTrackIndex:  -1,
		DefaultStyle:      DefaultStyle(),
		ImageOverlayTrack: NewImageOverlayTrack(),
		TextOverlayTrack:  NewTextOverlayTrack(),
		BGM:               BGMTrack{Volume: 1.0},
	}
}

// AddSubtitleTrack appends a track and, if it is the project's first,
// makes it active.
func (p *ProjectState) AddSubtitleTrack(t *SubtitleTrack) int {
	p.SubtitleTracks = append(p.SubtitleTracks, t)
	if p.ActiveTrackIndex < 0 {
		p.ActiveTrackIndex = len(p.SubtitleTracks) - 1
	}
	return len(p.SubtitleTracks) - 1
}

// RemoveSubtitleTrack deletes the track at index, repairing
// ActiveTrackIndex so it keeps pointing at a valid track or -1.
func (p *ProjectState) RemoveSubtitleTrack(index int) error {
	if index < 0 || index >= len(p.SubtitleTracks) {
		return fmmerrors.NotFound(index)
	}
	p.SubtitleTracks = append(p.SubtitleTracks[:index], p.SubtitleTracks[index+1:]...)
	switch {
	case len(p.SubtitleTracks) == 0:
		p.ActiveTrackIndex = -1
	case p.ActiveTrackIndex >= len(p.SubtitleTracks):
		p.ActiveTrackIndex = len(p.SubtitleTracks) - 1
	case p.ActiveTrackIndex > index:
		p.ActiveTrackIndex--
	}
	return nil
}

// SetActiveTrack sets ActiveTrackIndex, validating it references an
// existing track (invariant 2).
func (p *ProjectState) SetActiveTrack(index int) error {
	if index < 0 || index >= len(p.SubtitleTracks) {
		return fmmerrors.NotFound(index)
	}
	p.ActiveTrackIndex = index
	return nil
}

// EffectiveDurationMs returns the project's output-timeline duration:
// derived from the clip track when present, otherwise DurationMs as
// recorded from the primary video probe.
func (p *ProjectState) EffectiveDurationMs() int64 {
	if p.VideoClipTrack != nil && len(p.VideoClipTrack.Clips) > 0 {
		return p.VideoClipTrack.TotalDurationMs()
	}
	return p.DurationMs
}

// CheckInvariants validates invariants 1, 2 and 4 of the project model
// (for 4, only that every image overlay ends after it starts). Invariant 3,
// clip prefix-sum consistency, is not checked here. Invariant 5,
// external-file existence, is checked separately by
// MissingReferencedFiles since a missing file is non-fatal, not a
// structural violation. Returns the first invariant it finds broken.
func (p *ProjectState) CheckInvariants() error {
	for i, t := range p.SubtitleTracks {
		if !t.IsDisjoint() {
			return fmmerrors.SchemaViolation("subtitle_tracks", "segments are not sorted/disjoint")
		}
		_ = i
	}
	if len(p.SubtitleTracks) == 0 {
		if p.ActiveTrackIndex != -1 {
			return fmmerrors.SchemaViolation("active_track_index", "must be -1 when there are no tracks")
		}
	} else if p.ActiveTrackIndex < 0 || p.ActiveTrackIndex >= len(p.SubtitleTracks) {
		return fmmerrors.SchemaViolation("active_track_index", "must reference an existing track")
	}
	if p.ImageOverlayTrack != nil {
		for _, o := range p.ImageOverlayTrack.Overlays {
			if o.EndMs <= o.StartMs {
				return fmmerrors.SchemaViolation("image_overlay_track", "end_ms must exceed start_ms")
			}
		}
	}
	return nil
}

// ReferencedFiles enumerates every external file path the project
// currently points at: primary video, clip sources, per-segment TTS audio,
// track audio, image overlays, and BGM.
func (p *ProjectState) ReferencedFiles() []string {
	var paths []string
	if p.VideoPath != "" {
		paths = append(paths, p.VideoPath)
	}
	if p.VideoClipTrack != nil {
		for _, c := range p.VideoClipTrack.Clips {
			if c.SourcePath != "" {
				paths = append(paths, c.SourcePath)
			}
		}
	}
	for _, t := range p.SubtitleTracks {
		if t.AudioPath != "" {
			paths = append(paths, t.AudioPath)
		}
		for _, seg := range t.Segments {
			if seg.AudioFile != "" {
				paths = append(paths, seg.AudioFile)
			}
		}
	}
	if p.ImageOverlayTrack != nil {
		for _, o := range p.ImageOverlayTrack.Overlays {
			paths = append(paths, o.ImagePath)
		}
	}
	if p.BGM.AudioPath != "" {
		paths = append(paths, p.BGM.AudioPath)
	}
	return paths
}

// MissingReferencedFiles returns the subset of ReferencedFiles that do not
// currently exist on disk. Per invariant 5 this is detectable but
// non-fatal: the caller surfaces it as a warning, never an error.
func (p *ProjectState) MissingReferencedFiles() []string {
	var missing []string
	for _, path := range p.ReferencedFiles() {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

// ClampOverlaysToDuration enforces invariant 4 at load time: overlays
// outside [0, duration] are clamped, never dropped.
func (p *ProjectState) ClampOverlaysToDuration() {
	if p.ImageOverlayTrack != nil {
		p.ImageOverlayTrack.ClampToDuration(p.EffectiveDurationMs())
	}
}
