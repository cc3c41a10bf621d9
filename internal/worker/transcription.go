package worker

import (
	"context"

	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
)

// DefaultTranscriptionChunkMs is the default chunk granularity a
// transcription job processes audio in.
const DefaultTranscriptionChunkMs = 5000

// TranscriptionJob runs a chunked transcription over an extracted WAV
// file, producing a SubtitleTrack. Cancellation is observed between
// chunks, never mid-chunk.
type TranscriptionJob struct {
	Daemon   *TranscriptionDaemon
	WAVPath  string
	Language string
	TrackName string
	TotalMs  int64
	ChunkMs  int64
}

func (j *TranscriptionJob) Describe() string { return "transcription" }

func (j *TranscriptionJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	chunkMs := j.ChunkMs
	if chunkMs <= 0 {
		chunkMs = DefaultTranscriptionChunkMs
	}

	track := model.NewSubtitleTrack(j.TrackName, j.Language)

	for startMs := int64(0); startMs < j.TotalMs; startMs += chunkMs {
		select {
		case <-cancel:
			return nil, errCancelled
		default:
		}

		endMs := startMs + chunkMs
		if endMs > j.TotalMs {
			endMs = j.TotalMs
		}

		text, err := j.Daemon.TranscribeChunk(ctx, j.WAVPath, startMs, endMs, j.Language)
		if err != nil {
			return nil, err
		}
		if text != "" {
			seg, err := model.NewSubtitleSegment(startMs, endMs, text)
			if err != nil {
				return nil, err
			}
			if err := track.AddSegment(seg); err != nil {
				return nil, err
			}
		}

		emit(endMs, j.TotalMs, "")
	}

	return track, nil
}
