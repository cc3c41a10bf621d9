package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
	"github.com/fastmoviemaker/fmmcore/internal/domain/model"
	"github.com/fastmoviemaker/fmmcore/internal/process"
)

// DefaultInterSegmentSilenceMs is the default gap inserted between
// concatenated TTS segments.
const DefaultInterSegmentSilenceMs = 200

// TTSSegmentInput is one script line to synthesize.
type TTSSegmentInput struct {
	Text string
}

// TTSResult is the pure-data outcome: the final mixed/concatenated audio
// file plus a track whose segment timing is inferred from measured clip
// durations.
type TTSResult struct {
	AudioPath string
	Track     *model.SubtitleTrack
}

// TTSJob synthesizes a list of script segments, concatenates them with a
// configurable inter-segment silence, and optionally mixes the result with
// the primary video's audio track at user-specified gains.
type TTSJob struct {
	Engine   TTSEngineClient
	Limiter  *rate.Limiter // one token per outbound HTTP call; caps requests/sec per engine.

	Runner     *process.Runner
	FFmpegPath string

	VoiceID  string
	Speed    float64
	Segments []TTSSegmentInput

	InterSegmentSilenceMs int64

	// VideoAudioPath, when set, is mixed with the synthesized track.
	VideoAudioPath string
	VideoGain      float64 // [0,1]
	TTSGain        float64 // [0,2]
}

func (j *TTSJob) Describe() string { return "tts_synthesis" }

func (j *TTSJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	silenceMs := j.InterSegmentSilenceMs
	if silenceMs <= 0 {
		silenceMs = DefaultInterSegmentSilenceMs
	}

	type clip struct {
		path       string
		durationMs int64
	}
	clips := make([]clip, 0, len(j.Segments))
	tmpFiles := make([]string, 0, len(j.Segments))
	defer func() {
		for _, f := range tmpFiles {
			os.Remove(f)
		}
	}()

	total := int64(len(j.Segments))
	for i, seg := range j.Segments {
		select {
		case <-cancel:
			return nil, errCancelled
		default:
		}

		if err := j.Limiter.Wait(ctx); err != nil {
			return nil, fmmerrors.HTTPTransport(err)
		}

		audio, err := j.Engine.Synthesize(ctx, seg.Text, j.VoiceID, j.Speed)
		if err != nil {
			return nil, mapTTSError(i, err)
		}

		f, err := os.CreateTemp("", fmt.Sprintf("fmmcore-tts-%d-*.mp3", i))
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(audio); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()
		tmpFiles = append(tmpFiles, f.Name())

		durationMs, err := process.ProbeDurationMs(ctx, "ffprobe", f.Name())
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip{path: f.Name(), durationMs: durationMs})

		emit(int64(i+1), total, "")
	}

	silencePath, err := j.generateSilence(ctx, silenceMs)
	if err != nil {
		return nil, err
	}
	tmpFiles = append(tmpFiles, silencePath)

	listFile, err := os.CreateTemp("", "fmmcore-tts-concat-*.txt")
	if err != nil {
		return nil, err
	}
	defer os.Remove(listFile.Name())

	track := model.NewSubtitleTrack("TTS", "")
	cursor := int64(0)
	for i, c := range clips {
		if i > 0 {
			fmt.Fprintf(listFile, "file '%s'\n", silencePath)
			cursor += silenceMs
		}
		fmt.Fprintf(listFile, "file '%s'\n", c.path)
		seg, err := model.NewSubtitleSegment(cursor, cursor+c.durationMs, j.Segments[i].Text)
		if err == nil {
			_ = track.AddSegment(seg)
		}
		cursor += c.durationMs
	}
	listFile.Close()

	out, err := os.CreateTemp("", "fmmcore-tts-out-*.wav")
	if err != nil {
		return nil, err
	}
	outPath := out.Name()
	out.Close()

	argv := []string{j.FFmpegPath, "-y", "-f", "concat", "-safe", "0", "-i", listFile.Name(), "-c:a", "pcm_s16le", outPath}
	h, err := j.Runner.Spawn(ctx, argv, process.StdinNone, cursor)
	if err != nil {
		os.Remove(outPath)
		return nil, err
	}
	go func() {
		<-cancel
		h.Cancel()
	}()
	for range h.ProgressCh {
	}
	if err := h.Wait(); err != nil {
		os.Remove(outPath)
		return nil, err
	}

	if j.VideoAudioPath != "" {
		mixed, err := j.mixWithVideoAudio(ctx, outPath, cursor)
		if err != nil {
			os.Remove(outPath)
			return nil, err
		}
		os.Remove(outPath)
		outPath = mixed
	}

	return TTSResult{AudioPath: outPath, Track: track}, nil
}

func (j *TTSJob) generateSilence(ctx context.Context, durationMs int64) (string, error) {
	out, err := os.CreateTemp("", "fmmcore-tts-silence-*.wav")
	if err != nil {
		return "", err
	}
	path := out.Name()
	out.Close()

	seconds := float64(durationMs) / 1000.0
	argv := []string{
		j.FFmpegPath, "-y", "-f", "lavfi",
		"-i", "anullsrc=channel_layout=mono:sample_rate=16000",
		"-t", fmt.Sprintf("%.3f", seconds),
		path,
	}
	h, err := j.Runner.Spawn(ctx, argv, process.StdinNone, durationMs)
	if err != nil {
		return "", err
	}
	for range h.ProgressCh {
	}
	if err := h.Wait(); err != nil {
		return "", err
	}
	return path, nil
}

func (j *TTSJob) mixWithVideoAudio(ctx context.Context, ttsPath string, ttsDurationMs int64) (string, error) {
	out, err := os.CreateTemp("", "fmmcore-tts-mixed-*.wav")
	if err != nil {
		return "", err
	}
	outPath := out.Name()
	out.Close()

	filter := fmt.Sprintf(
		"[0:a]volume=%.3f[a0];[1:a]volume=%.3f[a1];[a0][a1]amix=inputs=2:duration=longest[aout]",
		j.VideoGain, j.TTSGain,
	)
	argv := []string{
		j.FFmpegPath, "-y",
		"-i", j.VideoAudioPath,
		"-i", ttsPath,
		"-filter_complex", filter,
		"-map", "[aout]",
		filepath.Clean(outPath),
	}
	h, err := j.Runner.Spawn(ctx, argv, process.StdinNone, ttsDurationMs)
	if err != nil {
		return "", err
	}
	for range h.ProgressCh {
	}
	if err := h.Wait(); err != nil {
		return "", err
	}
	return outPath, nil
}

func mapTTSError(segmentIndex int, err error) error {
	se, ok := err.(*httpStatusError)
	if !ok {
		return fmmerrors.HTTPTransport(err)
	}
	switch se.StatusCode {
	case 401:
		return fmmerrors.HTTPUnauthorized(segmentIndex)
	case 429:
		return fmmerrors.HTTPRateLimited(segmentIndex)
	default:
		return fmmerrors.HTTPProtocolError(se.Error())
	}
}
