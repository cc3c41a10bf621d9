package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	kind     string
	steps    int
	failWith error
	block    chan struct{}
}

func (f *fakeJob) Describe() string { return f.kind }

func (f *fakeJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-cancel:
			return nil, errCancelled
		}
	}
	for i := 1; i <= f.steps; i++ {
		select {
		case <-cancel:
			return nil, errCancelled
		default:
		}
		emit(int64(i), int64(f.steps), "")
	}
	if f.failWith != nil {
		return nil, f.failWith
	}
	return "done", nil
}

func drain(t *testing.T, h *Handle, timeout time.Duration) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-h.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatal("timed out waiting for job events")
		}
	}
}

func TestPool_SubmitDeliversProgressThenFinished(t *testing.T) {
	p := NewPool(1, 4, nil)
	p.Start()
	defer p.Stop()

	h, err := p.Submit(&fakeJob{kind: "test", steps: 3})
	require.NoError(t, err)

	events := drain(t, h, time.Second)
	require.Len(t, events, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, EventProgress, events[i].Kind)
	}
	assert.Equal(t, EventFinished, events[3].Kind)
	assert.Equal(t, "done", events[3].Result)
}

func TestPool_FailedJobEmitsFailedEvent(t *testing.T) {
	p := NewPool(1, 4, nil)
	p.Start()
	defer p.Stop()

	boom := assert.AnError
	h, err := p.Submit(&fakeJob{kind: "test", steps: 0, failWith: boom})
	require.NoError(t, err)

	events := drain(t, h, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Kind)
	assert.ErrorIs(t, events[0].Err, boom)
}

func TestPool_CancelStopsBlockedJob(t *testing.T) {
	p := NewPool(1, 4, nil)
	p.Start()
	defer p.Stop()

	h, err := p.Submit(&fakeJob{kind: "test", block: make(chan struct{})})
	require.NoError(t, err)

	h.Cancel()

	events := drain(t, h, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Kind)
}

func TestPool_SubmitFailsWhenQueueFull(t *testing.T) {
	p := NewPool(1, 1, nil)
	// Deliberately not started: nothing drains the queue, so the next
	// submit past capacity must fail fast rather than block.
	_, err := p.Submit(&fakeJob{kind: "first", block: make(chan struct{})})
	require.NoError(t, err)

	_, err = p.Submit(&fakeJob{kind: "second"})
	require.Error(t, err)
}

func TestPool_FIFOEventOrderPerWorker(t *testing.T) {
	p := NewPool(1, 4, nil)
	p.Start()
	defer p.Stop()

	h, err := p.Submit(&fakeJob{kind: "test", steps: 5})
	require.NoError(t, err)

	events := drain(t, h, time.Second)
	require.Len(t, events, 6)
	for i := 0; i < 5; i++ {
		require.Equal(t, EventProgress, events[i].Kind)
		require.Equal(t, int64(i+1), events[i].Current)
	}
}
