package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/fastmoviemaker/fmmcore/pkg/logger"
)

// TranscriptionDaemon is a long-lived subprocess speaking newline-delimited
// JSON, adapted from the teacher's WhisperDaemon: one process per model id,
// started lazily on first use and reused across chunks so model load cost
// is paid once rather than per chunk.
type TranscriptionDaemon struct {
	BinaryPath string
	ModelID    string
	log        logger.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	running bool
}

func NewTranscriptionDaemon(binaryPath, modelID string, log logger.Logger) *TranscriptionDaemon {
	if log == nil {
		log = logger.NewNop()
	}
	return &TranscriptionDaemon{BinaryPath: binaryPath, ModelID: modelID, log: log}
}

type transcribeRequest struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	WAVPath  string `json:"wav_path,omitempty"`
	StartMs  int64  `json:"start_ms,omitempty"`
	EndMs    int64  `json:"end_ms,omitempty"`
	Language string `json:"language,omitempty"`
}

type transcribeResponse struct {
	ID       string `json:"id"`
	Success  bool   `json:"success"`
	Text     string `json:"text"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

// ensureStarted spawns the daemon process if not already running. Model
// load happens inside the subprocess, on the worker thread that calls
// this, never on the caller's own stack.
func (d *TranscriptionDaemon) ensureStarted(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}

	cmd := exec.CommandContext(ctx, d.BinaryPath, "--model", d.ModelID)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("transcription daemon stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("transcription daemon stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting transcription daemon: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.scanner = bufio.NewScanner(stdout)
	d.scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	d.running = true
	d.log.Infof("transcription daemon started for model %s", d.ModelID)
	return nil
}

// TranscribeChunk sends one chunk request and blocks for its response.
// Callers are expected to check the cancel channel between calls; this
// method itself does not observe cancellation mid-chunk, matching the
// "cancellation takes effect at chunk boundaries" contract.
func (d *TranscriptionDaemon) TranscribeChunk(ctx context.Context, wavPath string, startMs, endMs int64, language string) (string, error) {
	if err := d.ensureStarted(ctx); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	req := transcribeRequest{
		ID:       uuid.NewString(),
		Action:   "transcribe_chunk",
		WAVPath:  wavPath,
		StartMs:  startMs,
		EndMs:    endMs,
		Language: language,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	if _, err := d.stdin.Write(append(payload, '\n')); err != nil {
		return "", fmt.Errorf("writing to transcription daemon: %w", err)
	}

	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("transcription daemon closed unexpectedly")
	}

	var resp transcribeResponse
	if err := json.Unmarshal(d.scanner.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("parsing transcription daemon response: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("transcription failed: %s", resp.Error)
	}
	return resp.Text, nil
}

// Stop terminates the daemon process. Safe to call when never started.
func (d *TranscriptionDaemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	_ = d.stdin.Close()
	_ = d.cmd.Process.Kill()
	d.running = false
}
