package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/fastmoviemaker/fmmcore/internal/process"
)

// AudioExtractionJob runs FFmpeg to pull a mono 16kHz WAV track out of a
// video file, the input transcription and waveform computation both need.
type AudioExtractionJob struct {
	Runner      *process.Runner
	FFmpegPath  string
	VideoPath   string
	TotalMs     int64
}

// AudioExtractionResult is the pure-data outcome of an extraction job.
type AudioExtractionResult struct {
	WAVPath string
}

func (j *AudioExtractionJob) Describe() string { return "audio_extraction" }

func (j *AudioExtractionJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	out, err := os.CreateTemp("", "fmmcore-audio-*.wav")
	if err != nil {
		return nil, err
	}
	outPath := out.Name()
	out.Close()

	argv := []string{
		j.FFmpegPath, "-y", "-i", j.VideoPath,
		"-ac", "1", "-ar", "16000", "-vn", "-f", "wav",
		"-progress", "pipe:1",
		outPath,
	}

	h, err := j.Runner.Spawn(ctx, argv, process.StdinPipe, j.TotalMs)
	if err != nil {
		os.Remove(outPath)
		return nil, err
	}

	go func() {
		<-cancel
		h.Cancel()
	}()

	for ev := range h.ProgressCh {
		emit(ev.CurrentMs, ev.TotalMs, "")
	}

	if err := h.Wait(); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("extracting audio from %s: %w", j.VideoPath, err)
	}

	return AudioExtractionResult{WAVPath: outPath}, nil
}
