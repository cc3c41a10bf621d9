package worker

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"
)

type fakeTTSEngine struct {
	calls int
	err   error
	audio []byte
}

func (f *fakeTTSEngine) Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func TestMapTTSError_UnauthorizedAndRateLimited(t *testing.T) {
	err := mapTTSError(2, &httpStatusError{StatusCode: 401})
	var fe *fmmerrors.FmmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeHTTPUnauthorized, fe.Code)
	assert.Equal(t, 2, fe.Details["segment_index"])

	err = mapTTSError(5, &httpStatusError{StatusCode: 429})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeHTTPRateLimited, fe.Code)

	err = mapTTSError(0, assert.AnError)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeHTTPTransport, fe.Code)
}

func TestTTSJob_StopsAtFirstSegmentEngineError(t *testing.T) {
	engine := &fakeTTSEngine{err: &httpStatusError{StatusCode: 401}}
	job := &TTSJob{
		Engine:   engine,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
		Segments: []TTSSegmentInput{{Text: "hello"}, {Text: "world"}},
	}

	_, err := job.Run(context.Background(), make(chan struct{}), func(int64, int64, string) {})
	require.Error(t, err)
	var fe *fmmerrors.FmmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fmmerrors.CodeHTTPUnauthorized, fe.Code)
	assert.Equal(t, 1, engine.calls, "must not attempt the second segment once the first fails")
}

func TestTTSJob_ObservesCancelBetweenSegments(t *testing.T) {
	engine := &fakeTTSEngine{audio: []byte{0}}
	cancel := make(chan struct{})
	close(cancel)

	job := &TTSJob{
		Engine:   engine,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
		Segments: []TTSSegmentInput{{Text: "one"}, {Text: "two"}},
	}

	_, err := job.Run(context.Background(), cancel, func(int64, int64, string) {})
	require.Error(t, err)
	assert.Equal(t, 0, engine.calls, "cancellation observed before the first segment is even attempted")
}
