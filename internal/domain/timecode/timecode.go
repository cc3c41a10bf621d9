// Package timecode converts between integer-millisecond timeline positions,
// display strings, SRT timestamps, and frame numbers, and parses the
// flexible timecode formats a subtitle editor's transport bar accepts.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// MsToDisplay renders ms as "MM:SS.mmm", padding minutes/seconds/millis.
func MsToDisplay(ms int64) string {
	neg := ms < 0
	if neg {
		ms = -ms
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	s := fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
	if neg {
		return "-" + s
	}
	return s
}

// MsToSRTTime renders ms as SRT's "HH:MM:SS,mmm".
func MsToSRTTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// MsToFrame converts a millisecond position to the nearest frame number at
// fps, using round(ms*fps/1000) in integer arithmetic.
func MsToFrame(ms int64, fps float64) int64 {
	if fps <= 0 {
		return ms
	}
	return roundDiv(ms*int64(fps*1000), 1000*1000)
}

// FrameToMs converts a frame number to milliseconds at fps, using
// round(frame*1000/fps).
func FrameToMs(frame int64, fps float64) int64 {
	if fps <= 0 {
		return frame
	}
	return roundDiv(frame*1000*1000, int64(fps*1000))
}

// SnapToFrame returns the nearest frame boundary in ms; identity when fps==0.
func SnapToFrame(ms int64, fps float64) int64 {
	if fps <= 0 {
		return ms
	}
	return FrameToMs(MsToFrame(ms, fps), fps)
}

// roundDiv performs a round-half-away-from-zero integer division of n/d.
func roundDiv(n, d int64) int64 {
	if d == 0 {
		return 0
	}
	neg := (n < 0) != (d < 0)
	if n < 0 {
		n = -n
	}
	if d < 0 {
		d = -d
	}
	q := (2*n + d) / (2 * d)
	if neg {
		return -q
	}
	return q
}

var (
	reHMSms   = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[.,](\d{1,3})$`)
	reMSms    = regexp.MustCompile(`^(\d{1,2}):(\d{2})[.,](\d{1,3})$`)
	reHMSFrame = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2}):(\d{1,3})$`)
	reFrameNum = regexp.MustCompile(`(?i)^(?:f:|frame:)(\d+)$`)
)

const expectedFormats = "MM:SS.mmm, HH:MM:SS.mmm, HH:MM:SS:FF, F:<n>, frame:<n>"

// ParseFlexibleTimecode accepts "MM:SS.mmm", "HH:MM:SS.mmm", "HH:MM:SS:FF"
// (frames, converted via fps) and "F:<n>"/"frame:<n>" (direct frame number).
func ParseFlexibleTimecode(text string, fps float64) (int64, error) {
	t := strings.TrimSpace(text)

	if m := reFrameNum.FindStringSubmatch(t); m != nil {
		frame, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmmerrors.InvalidTimecode(text, expectedFormats)
		}
		return FrameToMs(frame, fps), nil
	}

	if m := reHMSms.FindStringSubmatch(t); m != nil {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		mi, _ := strconv.ParseInt(m[2], 10, 64)
		s, _ := strconv.ParseInt(m[3], 10, 64)
		ms := parseMillisFrac(m[4])
		return h*3600000 + mi*60000 + s*1000 + ms, nil
	}

	if m := reHMSFrame.FindStringSubmatch(t); m != nil {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		mi, _ := strconv.ParseInt(m[2], 10, 64)
		s, _ := strconv.ParseInt(m[3], 10, 64)
		f, _ := strconv.ParseInt(m[4], 10, 64)
		base := h*3600000 + mi*60000 + s*1000
		return base + FrameToMs(f, fps), nil
	}

	if m := reMSms.FindStringSubmatch(t); m != nil {
		mi, _ := strconv.ParseInt(m[1], 10, 64)
		s, _ := strconv.ParseInt(m[2], 10, 64)
		ms := parseMillisFrac(m[3])
		return mi*60000 + s*1000 + ms, nil
	}

	return 0, fmmerrors.InvalidTimecode(text, expectedFormats)
}

// parseMillisFrac normalizes a 1-3 digit fractional-second token to ms,
// e.g. "5" -> 500, "05" -> 50, "005" -> 5.
func parseMillisFrac(frac string) int64 {
	for len(frac) < 3 {
		frac += "0"
	}
	v, _ := strconv.ParseInt(frac, 10, 64)
	return v
}
