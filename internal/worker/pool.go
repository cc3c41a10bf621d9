// Package worker generalizes the teacher's single-purpose job service
// (one job kind, video generation, dispatched through a worker-goroutine
// pool reading a buffered channel) to the full background-job surface:
// audio extraction, transcription, TTS synthesis, waveform computation,
// frame cache extraction, and export, all implementing one Job contract
// and dispatched through one Pool.
package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
	"github.com/fastmoviemaker/fmmcore/pkg/logger"
)

// EventKind distinguishes the three event types a worker may emit.
type EventKind int

const (
	EventProgress EventKind = iota
	EventFinished
	EventFailed
)

// Event is one FIFO-ordered notification from a running job. Only the
// field matching Kind is meaningful.
type Event struct {
	Kind    EventKind
	Current int64
	Total   int64
	Message string
	Result  Result
	Err     error
}

// Result is whatever data a job produces. It must be pure data — never a
// reference to project state — so it can be handed back to the caller
// from any goroutine.
type Result = any

// Job is the contract every background job implements. Run receives a
// cancel channel that is closed when cancellation has been requested; the
// job is expected to poll it at safe points (between chunks, between
// subprocess invocations) rather than react to it asynchronously.
type Job interface {
	// Run executes the job, emitting zero or more progress updates
	// through emit before returning a final Result or error. Run must
	// not emit Finished/Failed itself; the Pool derives those from its
	// return value.
	Run(ctx context.Context, cancel <-chan struct{}, emit func(current, total int64, message string)) (Result, error)
	// Describe names the job kind for logging, e.g. "transcription".
	Describe() string
}

// Handle is a live or completed job's event source.
type Handle struct {
	ID     string
	Events chan Event

	cancelOnce sync.Once
	cancelCh   chan struct{}
}

// Cancel requests cooperative cancellation. Idempotent.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() { close(h.cancelCh) })
}

// Pool runs Jobs on a bounded set of worker goroutines, mirroring the
// teacher's jobService: a buffered queue plus a fixed worker count, except
// generalized to heterogeneous job kinds instead of one.
type Pool struct {
	log      logger.Logger
	queue    chan *enqueued
	workers  int
	mu       sync.Mutex
	handles  map[string]*Handle
	started  bool
	wg       sync.WaitGroup
}

type enqueued struct {
	handle *Handle
	job    Job
}

// NewPool builds a Pool with the given worker count and queue depth. log
// may be nil.
func NewPool(workers, queueSize int, log logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	if log == nil {
		log = logger.NewNop()
	}
	p := &Pool{
		log:     log,
		queue:   make(chan *enqueued, queueSize),
		workers: workers,
		handles: make(map[string]*Handle),
	}
	return p
}

// Start launches the worker goroutines. Safe to call once; subsequent
// calls are no-ops.
func (p *Pool) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Infof("started %d job workers", p.workers)
}

// Stop closes the queue and waits for in-flight jobs to drain. No further
// Submit calls are valid afterward.
func (p *Pool) Stop() {
	close(p.queue)
	p.wg.Wait()
}

// Submit enqueues job for execution and returns its Handle immediately.
// Returns a ProcessSpawnFailed FmmError if the queue is full, matching the
// teacher's non-blocking-send-on-full-queue behavior in CreateJob.
func (p *Pool) Submit(job Job) (*Handle, error) {
	h := &Handle{
		ID:       uuid.NewString(),
		Events:   make(chan Event, 16),
		cancelCh: make(chan struct{}),
	}

	p.mu.Lock()
	p.handles[h.ID] = h
	p.mu.Unlock()

	select {
	case p.queue <- &enqueued{handle: h, job: job}:
		return h, nil
	default:
		p.mu.Lock()
		delete(p.handles, h.ID)
		p.mu.Unlock()
		close(h.Events)
		return nil, fmmerrors.ProcessSpawnFailed(nil)
	}
}

// Cancel requests cancellation of a previously submitted job by id.
func (p *Pool) Cancel(id string) error {
	p.mu.Lock()
	h, ok := p.handles[id]
	p.mu.Unlock()
	if !ok {
		return fmmerrors.NotFound(0)
	}
	h.Cancel()
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for item := range p.queue {
		p.runOne(id, item)
	}
}

// runOne executes a single job end-to-end and delivers its terminal event,
// mirroring the teacher's worker(id) loop body but generalized across job
// kinds and event types instead of one UpdateJobStatus call.
func (p *Pool) runOne(workerID int, item *enqueued) {
	h := item.handle
	log := p.log.WithFields(map[string]interface{}{
		"worker": workerID,
		"job_id": h.ID,
		"kind":   item.job.Describe(),
	})
	log.Info("worker processing job")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge the cooperative cancel channel to ctx so jobs that accept a
	// context (e.g. process.Runner.Spawn) observe cancellation too.
	go func() {
		select {
		case <-h.cancelCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	emit := func(current, total int64, message string) {
		select {
		case h.Events <- Event{Kind: EventProgress, Current: current, Total: total, Message: message}:
		default:
		}
	}

	result, err := item.job.Run(ctx, h.cancelCh, emit)

	p.mu.Lock()
	delete(p.handles, h.ID)
	p.mu.Unlock()

	if err != nil {
		select {
		case <-h.cancelCh:
			err = fmmerrors.ProcessCancelled()
		default:
		}
		log.Errorf("job failed: %v", err)
		h.Events <- Event{Kind: EventFailed, Err: err}
	} else {
		log.Info("job completed")
		h.Events <- Event{Kind: EventFinished, Result: result}
	}
	close(h.Events)
}
