package queue

import (
	"context"

	"payrecon/pkg/logger"
)

// InProcessQueue is the fallback selected when no queue connection is
// configured (§4.I "falls back to direct in-process execution"; §9
// "capability interfaces with null implementations"). Enqueue runs the
// job synchronously on the calling goroutine — the upload request
// blocks until the batch finishes, and there is no retry, matching the
// spec's explicit tradeoff ("the batch still completes, just without
// retries").
type InProcessQueue struct {
	handler Handler
}

func NewInProcessQueue(handler Handler) *InProcessQueue {
	return &InProcessQueue{handler: handler}
}

// Enqueue returns nil once the handler has run: a handler failure is a
// failed batch, not an unavailable queue, so it is logged here rather
// than returned as a signal to fall back.
func (q *InProcessQueue) Enqueue(ctx context.Context, job BatchJob) error {
	if err := q.handler(ctx, job); err != nil {
		logger.GetLogger().WithError(err).WithField("batchId", job.BatchID).Error("in-process batch job failed")
	}
	return nil
}

// Consume is a no-op: InProcessQueue has no backlog to poll, jobs run
// at Enqueue time on the caller's goroutine.
func (q *InProcessQueue) Consume(ctx context.Context, handler Handler, opts ConsumeOptions) error {
	<-ctx.Done()
	return nil
}
