package persistence

import "github.com/fastmoviemaker/fmmcore/internal/domain/model"

// CurrentVersion is the schema version this package writes and reads
// natively; older files are migrated up to it on load.
const CurrentVersion = 4

// projectFile is the on-disk v4 schema. Its JSON keys (tracks,
// image_overlays, video_clips, text_overlays, ...) differ from the
// in-memory model's tags, so toProjectState/fromProjectState convert
// between the two after the final migration step.
type projectFile struct {
	Version          int                  `json:"version"`
	VideoPath        string               `json:"video_path,omitempty"`
	DurationMs       int64                `json:"duration_ms"`
	DefaultStyle     model.SubtitleStyle  `json:"default_style"`
	ActiveTrackIndex int                  `json:"active_track_index"`
	Tracks           []trackFile          `json:"tracks"`
	ImageOverlays    []model.ImageOverlay `json:"image_overlays"`
	VideoClips       []model.VideoClip    `json:"video_clips"`
	TextOverlays     []model.TextOverlay  `json:"text_overlays"`
	BGM              model.BGMTrack       `json:"bgm"`
}

type trackFile struct {
	Name            string                  `json:"name"`
	Language        string                  `json:"language"`
	AudioPath       string                  `json:"audio_path,omitempty"`
	AudioStartMs    int64                   `json:"audio_start_ms"`
	AudioDurationMs int64                   `json:"audio_duration_ms"`
	Segments        []model.SubtitleSegment `json:"segments"`
}

func toProjectState(f *projectFile) *model.ProjectState {
	p := model.NewProjectState()
	p.VideoPath = f.VideoPath
	p.DurationMs = f.DurationMs
	p.DefaultStyle = f.DefaultStyle
	p.ActiveTrackIndex = f.ActiveTrackIndex
	p.BGM = f.BGM
	if p.BGM.Volume == 0 {
		p.BGM.Volume = 1.0
	}

	for _, tf := range f.Tracks {
		t := model.NewSubtitleTrack(tf.Name, tf.Language)
		t.AudioPath = tf.AudioPath
		t.AudioStartMs = tf.AudioStartMs
		t.AudioDurationMs = tf.AudioDurationMs
		t.Segments = tf.Segments
		for i := range t.Segments {
			if t.Segments[i].Volume == 0 {
				t.Segments[i].Volume = 1.0
			}
		}
		p.SubtitleTracks = append(p.SubtitleTracks, t)
	}

	p.ImageOverlayTrack.Overlays = f.ImageOverlays
	p.TextOverlayTrack.Overlays = f.TextOverlays
	if len(f.VideoClips) > 0 {
		ct := model.NewVideoClipTrack()
		for _, c := range f.VideoClips {
			if c.Volume == 0 {
				c.Volume = 1.0
			}
			ct.AddClip(c)
		}
		p.VideoClipTrack = ct
	}
	return p
}

func fromProjectState(p *model.ProjectState) *projectFile {
	f := &projectFile{
		Version:          CurrentVersion,
		VideoPath:        p.VideoPath,
		DurationMs:       p.DurationMs,
		DefaultStyle:     p.DefaultStyle,
		ActiveTrackIndex: p.ActiveTrackIndex,
		BGM:              p.BGM,
	}
	for _, t := range p.SubtitleTracks {
		f.Tracks = append(f.Tracks, trackFile{
			Name:            t.Name,
			Language:        t.Language,
			AudioPath:       t.AudioPath,
			AudioStartMs:    t.AudioStartMs,
			AudioDurationMs: t.AudioDurationMs,
			Segments:        t.Segments,
		})
	}
	if p.ImageOverlayTrack != nil {
		f.ImageOverlays = p.ImageOverlayTrack.Overlays
	}
	if p.TextOverlayTrack != nil {
		f.TextOverlays = p.TextOverlayTrack.Overlays
	}
	if p.VideoClipTrack != nil {
		f.VideoClips = p.VideoClipTrack.Clips
	}
	return f
}
