// Package queue is the job queue (§4.I): at-least-once delivery of
// batch-processing jobs, backed by the authoritative store itself
// rather than a separate broker — nothing in the example pack wires a
// dedicated queue client (asynq, river, machinery) or a Redis client
// for this domain, so the grounded choice is a Postgres-backed queue
// using `SELECT ... FOR UPDATE SKIP LOCKED`, the same pattern the
// pack's other reconciliation-domain sibling uses for its job table.
package queue

import (
	"context"
	"time"
)

// BatchJob is the one job shape this system enqueues: "go reconcile
// this upload". §4.I's contracts are written generically
// (enqueue/consume by job_name), but nothing in SPEC_FULL.md needs a
// second job type, so the payload is concrete rather than a generic
// envelope.
type BatchJob struct {
	BatchID  string
	FilePath string
}

// Handler processes one claimed job. Returning an error marks the job
// failed (and retried, subject to MaxAttempts); the handler must be
// idempotent under re-execution of the same BatchID, which
// reset_batch_for_processing guarantees by clearing prior rows.
type Handler func(ctx context.Context, job BatchJob) error

// ConsumeOptions configures a Consume loop (§4.I semantics: lock
// duration >= 60s, concurrency >= 1 default 2, up to 3 attempts with
// exponential backoff starting at 1s).
type ConsumeOptions struct {
	Concurrency  int
	LockDuration time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
	PollInterval time.Duration
}

func (o ConsumeOptions) withDefaults() ConsumeOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 2
	}
	if o.LockDuration < 60*time.Second {
		o.LockDuration = 60 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	return o
}

// Queue is the capability interface the upload path and the worker
// process depend on (§9 "capability interfaces with null
// implementations"). Enqueue returning an error signals "the queue is
// unavailable" — callers fall back to running the job in-process
// (§4.I "falls back to direct in-process execution").
type Queue interface {
	Enqueue(ctx context.Context, job BatchJob) error
	Consume(ctx context.Context, handler Handler, opts ConsumeOptions) error
}
