package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"payrecon/internal/domain"
	"payrecon/pkg/logger"
)

// PostgresQueue claims rows from reconciliation_jobs via
// SELECT ... FOR UPDATE SKIP LOCKED, giving every worker goroutine a
// disjoint job without a separate lock manager (§4.I, grounded on
// himacharan128's worker.claimJob/recoverStaleJobs).
type PostgresQueue struct {
	db *sql.DB
}

func NewPostgresQueue(db *sql.DB) *PostgresQueue {
	return &PostgresQueue{db: db}
}

func (q *PostgresQueue) Enqueue(ctx context.Context, job BatchJob) error {
	const stmt = `
		INSERT INTO reconciliation_jobs
			(id, batch_id, file_path, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, 'queued', 0, now(), now(), now())
	`
	if _, err := q.db.ExecContext(ctx, stmt, uuid.NewString(), job.BatchID, job.FilePath); err != nil {
		return domain.NewError(domain.KindTransientQueue, "enqueue job", err)
	}
	return nil
}

// Consume runs opts.Concurrency polling goroutines until ctx is
// cancelled. Each iteration claims at most one job; SKIP LOCKED means
// two goroutines never race over the same row.
func (q *PostgresQueue) Consume(ctx context.Context, handler Handler, opts ConsumeOptions) error {
	opts = opts.withDefaults()

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.pollLoop(ctx, handler, opts)
		}()
	}
	wg.Wait()
	return nil
}

func (q *PostgresQueue) pollLoop(ctx context.Context, handler Handler, opts ConsumeOptions) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, claimed, err := q.claim(ctx, opts.LockDuration)
		if err != nil {
			logger.GetLogger().WithError(err).Error("queue claim failed")
			sleep(ctx, opts.PollInterval)
			continue
		}
		if !claimed {
			sleep(ctx, opts.PollInterval)
			continue
		}

		q.process(ctx, job, handler, opts)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type claimedJob struct {
	id       string
	batchID  string
	filePath string
	attempts int
}

func (q *PostgresQueue) claim(ctx context.Context, lockDuration time.Duration) (claimedJob, bool, error) {
	var job claimedJob

	err := withTx(ctx, q.db, func(tx *sql.Tx) error {
		const selectStmt = `
			SELECT id, batch_id, file_path, attempts
			FROM reconciliation_jobs
			WHERE (status = 'queued' AND next_attempt_at <= now())
			   OR (status = 'processing' AND locked_until < now())
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`
		row := tx.QueryRowContext(ctx, selectStmt)
		if err := row.Scan(&job.id, &job.batchID, &job.filePath, &job.attempts); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errNoJob
			}
			return err
		}

		const updateStmt = `
			UPDATE reconciliation_jobs
			SET status = 'processing', attempts = attempts + 1,
			    locked_until = now() + $2::interval, updated_at = now()
			WHERE id = $1
		`
		_, err := tx.ExecContext(ctx, updateStmt, job.id, fmt.Sprintf("%d milliseconds", lockDuration.Milliseconds()))
		return err
	})

	if errors.Is(err, errNoJob) {
		return claimedJob{}, false, nil
	}
	if err != nil {
		return claimedJob{}, false, domain.NewError(domain.KindTransientQueue, "claim job", err)
	}
	job.attempts++ // reflects the increment just committed
	return job, true, nil
}

var errNoJob = errors.New("queue: no job available")

// backoffFor computes the exponential delay before retry N
// (1-indexed): base, 2*base, 4*base, ... (§4.I "exponential backoff
// starting at 1s").
func backoffFor(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<uint(attempt-1))
}

func (q *PostgresQueue) process(ctx context.Context, job claimedJob, handler Handler, opts ConsumeOptions) {
	err := handler(ctx, BatchJob{BatchID: job.batchID, FilePath: job.filePath})
	if err == nil {
		q.complete(ctx, job.id)
		return
	}
	q.fail(ctx, job, err, opts)
}

func (q *PostgresQueue) complete(ctx context.Context, jobID string) {
	const stmt = `UPDATE reconciliation_jobs SET status = 'completed', updated_at = now() WHERE id = $1`
	if _, err := q.db.ExecContext(ctx, stmt, jobID); err != nil {
		logger.GetLogger().WithError(err).Error("failed to mark job completed")
	}
}

func (q *PostgresQueue) fail(ctx context.Context, job claimedJob, cause error, opts ConsumeOptions) {
	if job.attempts < opts.MaxAttempts {
		backoff := backoffFor(job.attempts, opts.BackoffBase)
		const stmt = `
			UPDATE reconciliation_jobs
			SET status = 'queued', last_error = $2,
			    next_attempt_at = now() + $3::interval, updated_at = now()
			WHERE id = $1
		`
		_, err := q.db.ExecContext(ctx, stmt, job.id, cause.Error(), fmt.Sprintf("%d milliseconds", backoff.Milliseconds()))
		if err != nil {
			logger.GetLogger().WithError(err).Error("failed to requeue job")
		}
		return
	}

	const stmt = `UPDATE reconciliation_jobs SET status = 'failed', last_error = $2, updated_at = now() WHERE id = $1`
	if _, err := q.db.ExecContext(ctx, stmt, job.id, cause.Error()); err != nil {
		logger.GetLogger().WithError(err).Error("failed to mark job permanently failed")
	}
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
