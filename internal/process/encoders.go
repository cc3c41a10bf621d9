package process

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// platformPreferredEncoders lists, in priority order, the hardware
// encoders worth preferring on each platform before falling back to the
// software baseline.
var platformPreferredEncoders = map[string][]string{
	"darwin":  {"h264_videotoolbox"},
	"windows": {"h264_nvenc", "h264_qsv", "h264_amf"},
	"linux":   {"h264_vaapi", "h264_nvenc"},
}

// BaselineEncoder is used when no hardware encoder is available.
const BaselineEncoder = "libx264"

// ProbeEncoders runs `ffmpeg -encoders` and returns the set of advertised
// encoder names.
func ProbeEncoders(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmmerrors.ProcessSpawnFailed(err)
	}

	encoders := make(map[string]bool)
	lines := strings.Split(string(output), "\n")
	for _, line := range lines {
		fields := strings.Fields(line)
		// Encoder listing lines look like " V..... h264_nvenc  NVIDIA NVENC ...";
		// the flag column is always present, so a valid line has >= 2 fields
		// and the first field is all flag characters (no spaces, short).
		if len(fields) < 2 || len(fields[0]) == 0 || len(fields[0]) > 7 {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders, nil
}

// SelectEncoder picks the best available encoder for the current platform
// from a probed set: platform-native hardware first, BaselineEncoder last.
// Returns EncoderUnavailable if neither is advertised.
func SelectEncoder(available map[string]bool) (string, error) {
	for _, name := range platformPreferredEncoders[runtime.GOOS] {
		if available[name] {
			return name, nil
		}
	}
	if available[BaselineEncoder] {
		return BaselineEncoder, nil
	}
	return "", fmmerrors.EncoderUnavailable(BaselineEncoder)
}
