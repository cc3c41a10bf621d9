package worker

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastmoviemaker/fmmcore/internal/process"
)

func requireFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available in this environment")
	}
	return path
}

func generateTestVideo(t *testing.T, ffmpegPath string) string {
	t.Helper()
	out, err := os.CreateTemp("", "fmmcore-src-*.mp4")
	require.NoError(t, err)
	out.Close()
	t.Cleanup(func() { os.Remove(out.Name()) })

	cmd := exec.Command(ffmpegPath, "-y",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=1",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-shortest", out.Name())
	require.NoError(t, cmd.Run())
	return out.Name()
}

func TestAudioExtractionJob_ProducesWAV(t *testing.T) {
	ffmpegPath := requireFFmpeg(t)
	video := generateTestVideo(t, ffmpegPath)

	job := &AudioExtractionJob{
		Runner:     process.NewRunner(0, nil),
		FFmpegPath: ffmpegPath,
		VideoPath:  video,
		TotalMs:    1000,
	}

	result, err := job.Run(context.Background(), make(chan struct{}), func(int64, int64, string) {})
	require.NoError(t, err)

	extracted := result.(AudioExtractionResult)
	defer os.Remove(extracted.WAVPath)

	info, err := os.Stat(extracted.WAVPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(44)) // bigger than a bare WAV header
}
