// Package export drives FFmpeg to render a ProjectState to a single output
// file, per §4.8: a filter graph builder, subtitle burn-in, and the
// renderer that ties it to internal/process.
package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

// ASSEvent is one subtitle dialogue line, already positioned on the
// project's absolute timeline.
type ASSEvent struct {
	StartMs int64
	EndMs   int64
	Text    string
	Style   model.SubtitleStyle
}

// ASSGenerator renders subtitle events to ASS (Advanced SubStation Alpha),
// adapted from the teacher's single-style ASSGenerator to one style per
// event, since spec.md §4.2 allows per-segment style overrides that ASS
// override tags must express inline rather than in one shared header
// style.
type ASSGenerator struct {
	Default model.SubtitleStyle
}

func NewASSGenerator(defaultStyle model.SubtitleStyle) *ASSGenerator {
	return &ASSGenerator{Default: defaultStyle}
}

// Generate renders a complete .ass document for events, whose styles have
// already been resolved against track/project defaults via
// SubtitleStyle.Merge.
func (g *ASSGenerator) Generate(events []ASSEvent) string {
	var b strings.Builder
	b.WriteString(g.header())
	b.WriteString("\n")
	for _, ev := range events {
		b.WriteString(g.dialogueLine(ev))
	}
	return b.String()
}

func (g *ASSGenerator) header() string {
	wordColor := parseColorToASS(g.Default.FontColor)
	outlineColor := parseColorToASS(g.Default.OutlineColor)
	boxColor := "&H00000000"
	if g.Default.BGColor != "" {
		boxColor = parseColorToASS(g.Default.BGColor)
	}
	alignment := positionToAlignment(g.Default.Position)

	title := "Generated Subtitles"
	if g.Default.Position != "" {
		titleCase := cases.Title(language.Und, cases.NoLower).String(string(g.Default.Position))
		title = fmt.Sprintf("Generated %s Subtitles", titleCase)
	}

	bold := 0
	if g.Default.FontBold {
		bold = 1
	}
	italic := 0
	if g.Default.FontItalic {
		italic = 1
	}

	return fmt.Sprintf(`[Script Info]
Title: %s
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes
YCbCr Matrix: TV.709

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,%s,%s,%s,%s,%d,%d,0,0,100,100,0,0,1,%d,0,%d,10,10,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text`,
		title,
		g.Default.FontFamily, g.Default.FontSize,
		wordColor, wordColor, outlineColor, boxColor,
		bold, italic,
		g.Default.OutlineWidth, alignment, g.Default.MarginBottom,
	)
}

func (g *ASSGenerator) dialogueLine(ev ASSEvent) string {
	start := formatASSTime(ev.StartMs)
	end := formatASSTime(ev.EndMs)
	text := g.overrideTagsFor(ev.Style) + cleanTextForASS(ev.Text)
	return fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", start, end, text)
}

// overrideTagsFor emits inline ASS override tags for font color, font
// size, outline color and position, each only when it diverges from the
// header's Default style, keeping the common case (no per-segment
// override) free of clutter. Other style fields are not expressed per
// segment and follow the Default style.
func (g *ASSGenerator) overrideTagsFor(style model.SubtitleStyle) string {
	var tags strings.Builder
	if style.FontColor != "" && style.FontColor != g.Default.FontColor {
		fmt.Fprintf(&tags, "{\\c%s}", parseColorToASS(style.FontColor))
	}
	if style.FontSize != 0 && style.FontSize != g.Default.FontSize {
		fmt.Fprintf(&tags, "{\\fs%d}", style.FontSize)
	}
	if style.OutlineColor != "" && style.OutlineColor != g.Default.OutlineColor {
		fmt.Fprintf(&tags, "{\\3c%s}", parseColorToASS(style.OutlineColor))
	}
	if style.Position != "" && style.Position != g.Default.Position {
		fmt.Fprintf(&tags, "{\\an%d}", positionToAlignment(style.Position))
	}
	return tags.String()
}

func formatASSTime(ms int64) string {
	totalCs := ms / 10
	hours := totalCs / 360000
	minutes := (totalCs % 360000) / 6000
	seconds := (totalCs % 6000) / 100
	centis := totalCs % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// parseColorToASS converts a "#RRGGBB" color to ASS's "&H00BBGGRR" form.
func parseColorToASS(hexColor string) string {
	hexColor = strings.TrimPrefix(hexColor, "#")
	if len(hexColor) != 6 {
		return "&H00FFFFFF"
	}
	r := hexColor[0:2]
	gr := hexColor[2:4]
	b := hexColor[4:6]
	return fmt.Sprintf("&H00%s%s%s", b, gr, r)
}

var positionAlignment = map[model.Position]int{
	model.PositionBottomLeft:   1,
	model.PositionBottomCenter: 2,
	model.PositionBottomRight:  3,
	model.PositionTopCenter:    8,
	model.PositionCustom:       2,
}

func positionToAlignment(pos model.Position) int {
	if a, ok := positionAlignment[pos]; ok {
		return a
	}
	return 2
}

// cleanTextForASS escapes characters with special meaning in ASS dialogue
// text.
func cleanTextForASS(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	return strings.Join(strings.Fields(text), " ")
}
