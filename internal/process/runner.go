// Package process is the single abstraction that orchestrates FFmpeg,
// FFprobe, and the transcription engine: spawning, draining stdout and
// stderr concurrently (mandatory — a single-pipe drain deadlocks once
// FFmpeg's stderr exceeds its pipe buffer), parsing progress, and
// supporting cooperative cancellation with a grace-period fallback to
// termination.
package process

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/fastmoviemaker/fmmcore/pkg/logger"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

// StdinMode selects whether the spawned process gets a stdin pipe, needed
// for cooperative cancellation via FFmpeg's "q" keypress protocol.
type StdinMode int

const (
	StdinNone StdinMode = iota
	StdinPipe
)

// DefaultCancelGrace is how long Cancel waits after requesting cooperative
// shutdown before escalating to process termination.
const DefaultCancelGrace = 2 * time.Second

// stderrTailBytes bounds how much of stderr is retained for error detail;
// FFmpeg's diagnostic output can be long, only the tail is useful.
const stderrTailBytes = 4096

// ProgressEvent reports parsed FFmpeg progress.
type ProgressEvent struct {
	CurrentMs int64
	TotalMs   int64
}

// Runner spawns and supervises external processes.
type Runner struct {
	CancelGrace time.Duration
	log         logger.Logger
}

// NewRunner builds a Runner. log may be nil (no-op).
func NewRunner(cancelGrace time.Duration, log logger.Logger) *Runner {
	if cancelGrace <= 0 {
		cancelGrace = DefaultCancelGrace
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{CancelGrace: cancelGrace, log: log}
}

// Handle is a live, spawned process plus its output channels.
type Handle struct {
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	cancelGrace time.Duration
	log         logger.Logger

	ProgressCh chan ProgressEvent

	waitDone chan struct{}
	waitErr  error

	mu         sync.Mutex
	stderrTail bytes.Buffer
	cancelled  bool
}

// Spawn starts argv[0] with argv[1:] as arguments, draining stdout and
// stderr concurrently from the moment the process starts. totalMs, when
// known ahead of time (the export renderer always knows it from the clip
// track), is carried as each ProgressEvent's TotalMs next to CurrentMs;
// pass 0 when unknown.
func (r *Runner) Spawn(ctx context.Context, argv []string, stdinMode StdinMode, totalMs int64) (*Handle, error) {
	if len(argv) == 0 {
		return nil, fmmerrors.ProcessSpawnFailed(nil)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmmerrors.ProcessNotFound(argv[0])
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmmerrors.ProcessSpawnFailed(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmmerrors.ProcessSpawnFailed(err)
	}

	h := &Handle{cancelGrace: r.CancelGrace, log: r.log, ProgressCh: make(chan ProgressEvent, 16), waitDone: make(chan struct{})}

	if stdinMode == StdinPipe {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmmerrors.ProcessSpawnFailed(err)
		}
		h.stdin = stdin
	}

	if err := cmd.Start(); err != nil {
		return nil, fmmerrors.ProcessSpawnFailed(err)
	}
	h.cmd = cmd

	go func() {
		h.waitErr = cmd.Wait()
		close(h.waitDone)
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.drainStdout(stdout, totalMs)
	}()
	go func() {
		defer wg.Done()
		h.drainStderr(stderr)
	}()

	go func() {
		wg.Wait()
		close(h.ProgressCh)
	}()

	return h, nil
}

// drainStdout reads FFmpeg's `-progress pipe:1` key=value stream,
// converting out_time_ms=… lines into ProgressEvent and stopping cleanly
// on progress=end. Draining is mandatory even when nobody reads
// ProgressCh yet — the channel is buffered, and once the buffer is full
// further events are dropped rather than blocking, so the process's own
// stdout pipe keeps being read.
func (h *Handle) drainStdout(r io.Reader, totalMs int64) {
	for ev := range parseFFmpegProgress(r, totalMs) {
		select {
		case h.ProgressCh <- ev:
		default:
		}
	}
}

// drainStderr reads stderr to completion (required so FFmpeg never blocks
// on a full stderr pipe) and retains only the last stderrTailBytes for
// error reporting.
func (h *Handle) drainStderr(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.mu.Lock()
			h.stderrTail.Write(buf[:n])
			if h.stderrTail.Len() > stderrTailBytes {
				excess := h.stderrTail.Len() - stderrTailBytes
				h.stderrTail.Next(excess)
			}
			h.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// StderrTail returns the retained tail of stderr output, for
// ProcessNonZeroExit's detail payload.
func (h *Handle) StderrTail() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stderrTail.String()
}

// Wait blocks until the process exits, returning a typed process error on
// failure (ProcessNonZeroExit or ProcessCancelled). Safe to call exactly
// once per Handle, same as the underlying exec.Cmd.Wait contract.
func (h *Handle) Wait() error {
	<-h.waitDone
	err := h.waitErr
	if err == nil {
		return nil
	}

	h.mu.Lock()
	cancelled := h.cancelled
	h.mu.Unlock()
	if cancelled {
		return fmmerrors.ProcessCancelled()
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return fmmerrors.ProcessNonZeroExit(exitErr.ExitCode(), h.StderrTail())
	}
	return fmmerrors.ProcessSpawnFailed(err)
}

// Cancel requests cooperative shutdown: if a stdin pipe is open it writes
// "q\n" (FFmpeg's quit keypress over a pipe) and waits cancelGrace before
// escalating to Process.Kill. Idempotent and race-free: a process that
// exits before Cancel observes anything still reports success from Wait,
// not Cancelled, because cancelled is only set to true up front here —
// callers that raced a legitimate finish should treat the outcome as
// Finished per the cooperative-cancellation contract.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	h.mu.Unlock()

	if h.stdin != nil {
		_, _ = io.WriteString(h.stdin, "q\n")
		_ = h.stdin.Close()
	}

	select {
	case <-h.waitDone:
	case <-time.After(h.cancelGrace):
		h.log.Warnf("process did not exit within cancel grace period, killing pid %d", h.cmd.Process.Pid)
		_ = h.cmd.Process.Kill()
		<-h.waitDone
	}
}
