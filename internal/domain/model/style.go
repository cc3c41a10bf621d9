package model

// Position names a canonical subtitle anchor point on the video canvas.
type Position string

const (
	PositionBottomCenter Position = "bottom-center"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionCustom       Position = "custom"
)

// SubtitleStyle carries font, color, and placement attributes. An empty
// color string means "inherit the project default".
type SubtitleStyle struct {
	FontFamily   string   `json:"font_family,omitempty"`
	FontSize     int      `json:"font_size,omitempty"`
	FontBold     bool     `json:"font_bold,omitempty"`
	FontItalic   bool     `json:"font_italic,omitempty"`
	FontColor    string   `json:"font_color,omitempty"`
	OutlineColor string   `json:"outline_color,omitempty"`
	OutlineWidth int      `json:"outline_width,omitempty"`
	BGColor      string   `json:"bg_color,omitempty"`
	Position     Position `json:"position,omitempty"`
	MarginBottom int      `json:"margin_bottom,omitempty"`
	CustomX      int      `json:"custom_x,omitempty"`
	CustomY      int      `json:"custom_y,omitempty"`
}

// DefaultStyle returns the style applied when neither a segment nor a track
// overrides it.
func DefaultStyle() SubtitleStyle {
	return SubtitleStyle{
		FontFamily:   "Arial",
		FontSize:     24,
		FontColor:    "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 2,
		Position:     PositionBottomCenter,
		MarginBottom: 20,
	}
}

// Merge returns a copy of base with every non-zero field of override applied
// on top, used to resolve a segment's effective style against the track and
// project defaults.
func (base SubtitleStyle) Merge(override *SubtitleStyle) SubtitleStyle {
	if override == nil {
		return base
	}
	merged := base
	if override.FontFamily != "" {
		merged.FontFamily = override.FontFamily
	}
	if override.FontSize != 0 {
		merged.FontSize = override.FontSize
	}
	if override.FontColor != "" {
		merged.FontColor = override.FontColor
	}
	if override.OutlineColor != "" {
		merged.OutlineColor = override.OutlineColor
	}
	if override.OutlineWidth != 0 {
		merged.OutlineWidth = override.OutlineWidth
	}
	if override.BGColor != "" {
		merged.BGColor = override.BGColor
	}
	if override.Position != "" {
		merged.Position = override.Position
	}
	if override.MarginBottom != 0 {
		merged.MarginBottom = override.MarginBottom
	}
	merged.FontBold = merged.FontBold || override.FontBold
	merged.FontItalic = merged.FontItalic || override.FontItalic
	if override.CustomX != 0 {
		merged.CustomX = override.CustomX
	}
	if override.CustomY != 0 {
		merged.CustomY = override.CustomY
	}
	return merged
}
