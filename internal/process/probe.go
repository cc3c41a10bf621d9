package process

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeOutput struct {
	Format probeFormat `json:"format"`
}

// ProbeDurationMs runs ffprobe against path and returns its duration in
// milliseconds, grounded on the teacher's audio_service.go getAudioInfo /
// parseAudioInfo pattern (ffprobe -show_format, parse format.duration).
func ProbeDurationMs(ctx context.Context, ffprobePath, path string) (int64, error) {
	cmd := exec.CommandContext(ctx, ffprobePath, "-v", "quiet", "-print_format", "json", "-show_format", path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmmerrors.ProcessSpawnFailed(err)
	}

	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmmerrors.DecodeFailed(err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmmerrors.DecodeFailed(err)
	}
	return int64(seconds * 1000), nil
}
