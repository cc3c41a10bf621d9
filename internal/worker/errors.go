package worker

import fmmerrors "github.com/fastmoviemaker/fmmcore/internal/domain/errors"

// errCancelled is returned by a Job's Run method when it observes
// cancellation at one of its safe points, so the Pool can surface a
// consistent Cancelled error regardless of which job kind raised it.
var errCancelled = fmmerrors.ProcessCancelled()
