package worker

import "context"

// ExportRunner is implemented by the export renderer; ExportJob just
// adapts it to the worker Job contract so batch/single export runs
// through the same pool, progress channel, and cancellation protocol as
// every other background job.
type ExportRunner interface {
	Render(ctx context.Context, cancel <-chan struct{}, emit func(current, total int64, message string)) (Result, error)
}

// ExportJob drives §4.8's export renderer through the shared worker
// contract.
type ExportJob struct {
	Renderer ExportRunner
}

func (j *ExportJob) Describe() string { return "export" }

func (j *ExportJob) Run(ctx context.Context, cancel <-chan struct{}, emit func(int64, int64, string)) (Result, error) {
	return j.Renderer.Render(ctx, cancel, emit)
}
