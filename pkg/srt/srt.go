// Package srt implements SRT subtitle export/import and basic SMI import,
// per spec.md §6's "SRT export/import plus basic SMI import." Timestamp
// formatting/parsing reuses internal/domain/timecode so the millisecond
// semantics never diverge between the ASS burn-in path and this
// interchange format.
package srt

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
	"github.com/fastmoviemaker/fmmcore/internal/domain/timecode"
)

// Cue is one subtitle interval, independent of any particular model
// package's segment type so this package stays free of an import-cycle
// risk with internal/domain/model.
type Cue struct {
	StartMs int64
	EndMs   int64
	Text    string
}

// Write renders cues as a complete SRT document: "N\nHH:MM:SS,mmm -->
// HH:MM:SS,mmm\ntext\n\n" blocks, 1-indexed per the format's convention.
func Write(cues []Cue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			timecode.MsToSRTTime(c.StartMs),
			timecode.MsToSRTTime(c.EndMs),
			c.Text,
		)
	}
	return b.String()
}

var srtTimeRange = regexp.MustCompile(`^\s*(\d{1,2}:\d{2}:\d{2}[.,]\d{1,3})\s*-->\s*(\d{1,2}:\d{2}:\d{2}[.,]\d{1,3})`)

// Parse reads an SRT document into cues. Blank lines separate blocks; a
// block's first non-blank line is an index (ignored, renumbered on
// re-export), its second is the time range, and the rest is text until
// the next blank line.
func Parse(doc string) ([]Cue, error) {
	scanner := bufio.NewScanner(strings.NewReader(doc))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []Cue
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := strconv.Atoi(line); err != nil {
			return nil, fmmerrors.SchemaViolation("srt", "expected a cue index, got "+line)
		}

		if !scanner.Scan() {
			return nil, fmmerrors.SchemaViolation("srt", "cue missing a time range")
		}
		timeLine := strings.TrimSpace(scanner.Text())
		m := srtTimeRange.FindStringSubmatch(timeLine)
		if m == nil {
			return nil, fmmerrors.SchemaViolation("srt", "malformed time range: "+timeLine)
		}
		startMs, err := timecode.ParseFlexibleTimecode(m[1], 0)
		if err != nil {
			return nil, err
		}
		endMs, err := timecode.ParseFlexibleTimecode(m[2], 0)
		if err != nil {
			return nil, err
		}

		var textLines []string
		for scanner.Scan() {
			textLine := scanner.Text()
			if strings.TrimSpace(textLine) == "" {
				break
			}
			textLines = append(textLines, textLine)
		}

		cues = append(cues, Cue{StartMs: startMs, EndMs: endMs, Text: strings.Join(textLines, "\n")})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmmerrors.SchemaViolation("srt", err.Error())
	}
	return cues, nil
}

var smiSyncOpen = regexp.MustCompile(`(?i)<sync\s+start\s*=\s*"?(\d+)"?\s*>`)
var smiTagStrip = regexp.MustCompile(`(?i)<[^>]+>`)

// ParseSMI does a basic import of SMI (SAMI) subtitle files: each <SYNC
// Start=ms> tag opens a cue running until the next <SYNC> tag (or
// end-of-file), with markup tags stripped from the body text. This
// covers the common single-language SAMI export shape, not the full SAMI
// class/language-switching spec.
func ParseSMI(doc string) ([]Cue, error) {
	matches := smiSyncOpen.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return nil, fmmerrors.SchemaViolation("smi", "no <SYNC> tags found")
	}

	var cues []Cue
	for i, m := range matches {
		startMs, err := strconv.ParseInt(doc[m[2]:m[3]], 10, 64)
		if err != nil {
			return nil, fmmerrors.SchemaViolation("smi", "malformed Start attribute")
		}

		bodyStart := m[1]
		var bodyEnd int
		var endMs int64
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
			endMs, _ = strconv.ParseInt(doc[matches[i+1][2]:matches[i+1][3]], 10, 64)
		} else {
			bodyEnd = len(doc)
			endMs = startMs + 2000 // no closing SYNC: default 2s duration
		}

		raw := doc[bodyStart:bodyEnd]
		text := cleanSMIBody(raw)
		if text == "" {
			continue // "&nbsp;"-only sync blocks mark gaps, not cues
		}
		cues = append(cues, Cue{StartMs: startMs, EndMs: endMs, Text: text})
	}
	return cues, nil
}

func cleanSMIBody(raw string) string {
	// SAMI uses <br> (or <BR>) for line breaks; normalize before stripping
	// every other tag so multi-line cues survive.
	br := regexp.MustCompile(`(?i)<br\s*/?>`)
	raw = br.ReplaceAllString(raw, "\n")
	raw = smiTagStrip.ReplaceAllString(raw, "")
	raw = strings.ReplaceAll(raw, "&nbsp;", "")
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
