package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"payrecon/internal/domain"
)

// CreateBatch inserts a fresh batch row in "uploading" status (§4.K
// step 0, before the CSV is even streamed).
func (s *Store) CreateBatch(ctx context.Context, id, filename string) (*domain.ReconciliationBatch, error) {
	const q = `
		INSERT INTO reconciliation_batches
			(id, filename, status, total_transactions, processed_count,
			 auto_matched_count, needs_review_count, unmatched_count,
			 started_at, created_at)
		VALUES ($1, $2, $3, 0, 0, 0, 0, 0, now(), now())
		RETURNING started_at, created_at
	`
	b := &domain.ReconciliationBatch{ID: id, Filename: filename, Status: domain.BatchUploading}
	if err := s.db.QueryRowContext(ctx, q, id, filename, domain.BatchUploading).Scan(&b.StartedAt, &b.CreatedAt); err != nil {
		return nil, wrapStoreErr("create batch", err)
	}
	return b, nil
}

// ResetBatchForProcessing flips a batch to "processing", zeroes its
// counters (total included), clears completed_at, and discards any transactions a prior, crashed attempt at
// this batch already wrote (§4.G: "atomically delete all transactions
// whose upload_batch_id = batch_id, then set status processing").
// This is what makes queue redelivery idempotent (§4.I, S7): without
// it, a redelivered job would insert a second full set of rows on top
// of the stale partial set left by the crashed attempt.
func (s *Store) ResetBatchForProcessing(ctx context.Context, tx *sql.Tx, batchID string) error {
	const deleteQ = `DELETE FROM bank_transactions WHERE upload_batch_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQ, batchID); err != nil {
		return wrapStoreErr("delete stale transactions for batch", err)
	}

	const q = `
		UPDATE reconciliation_batches
		SET status = $2, total_transactions = 0, processed_count = 0, auto_matched_count = 0,
		    needs_review_count = 0, unmatched_count = 0, started_at = now(),
		    completed_at = NULL
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, q, batchID, domain.BatchProcessing)
	if err != nil {
		return wrapStoreErr("reset batch for processing", err)
	}
	return requireOneRow(res, domain.ErrBatchNotFound)
}

// SetBatchTotal records the row count the parser streamed, once known
// (§4.K step 2).
func (s *Store) SetBatchTotal(ctx context.Context, batchID string, total int) error {
	const q = `UPDATE reconciliation_batches SET total_transactions = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, batchID, total)
	if err != nil {
		return wrapStoreErr("set batch total", err)
	}
	return requireOneRow(res, domain.ErrBatchNotFound)
}

// IncrementBatchCounters adds a chunk's worth of classification counts
// to the running totals (§4.K step 5, mirrored into the progress
// mirror by the caller immediately after this commits).
func (s *Store) IncrementBatchCounters(ctx context.Context, tx *sql.Tx, batchID string, processed, autoMatched, needsReview, unmatched int) error {
	const q = `
		UPDATE reconciliation_batches
		SET processed_count = processed_count + $2,
		    auto_matched_count = auto_matched_count + $3,
		    needs_review_count = needs_review_count + $4,
		    unmatched_count = unmatched_count + $5
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, q, batchID, processed, autoMatched, needsReview, unmatched)
	if err != nil {
		return wrapStoreErr("increment batch counters", err)
	}
	return requireOneRow(res, domain.ErrBatchNotFound)
}

// MarkBatchCompleted closes out a batch that finished streaming and
// matching every row without a fatal I/O error (§4.K step 7a).
func (s *Store) MarkBatchCompleted(ctx context.Context, batchID string) error {
	const q = `
		UPDATE reconciliation_batches
		SET status = $2, completed_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, q, batchID, domain.BatchCompleted)
	if err != nil {
		return wrapStoreErr("mark batch completed", err)
	}
	return requireOneRow(res, domain.ErrBatchNotFound)
}

// MarkBatchFailed closes out a batch that aborted partway through
// (§4.K step 7b); counters stay at whatever was committed by the last
// successful chunk, per §3's "partial counts are not rolled back".
func (s *Store) MarkBatchFailed(ctx context.Context, batchID string) error {
	const q = `
		UPDATE reconciliation_batches
		SET status = $2, completed_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, q, batchID, domain.BatchFailed)
	if err != nil {
		return wrapStoreErr("mark batch failed", err)
	}
	return requireOneRow(res, domain.ErrBatchNotFound)
}

func (s *Store) GetBatch(ctx context.Context, batchID string) (*domain.ReconciliationBatch, error) {
	const q = `
		SELECT id, filename, status, total_transactions, processed_count,
		       auto_matched_count, needs_review_count, unmatched_count,
		       started_at, completed_at, created_at
		FROM reconciliation_batches
		WHERE id = $1
	`
	var b domain.ReconciliationBatch
	err := s.db.QueryRowContext(ctx, q, batchID).Scan(
		&b.ID, &b.Filename, &b.Status, &b.Total, &b.Processed,
		&b.AutoMatched, &b.NeedsReview, &b.Unmatched,
		&b.StartedAt, &b.CompletedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, wrapStoreErr("get batch", err)
	}
	return &b, nil
}

// BatchListParams filters/orders the §6 list-batches endpoint.
// SortBy accepts "createdAt" (default) or "updatedAt"; this schema
// carries no separate updated_at column (a batch's counters mutate in
// place, not its timestamps), so "updatedAt" is an alias for
// created_at rather than a distinct column — see DESIGN.md's §6
// external-interface alignment fixes.
type BatchListParams struct {
	Status    *domain.BatchStatus
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// ListBatches returns batches ordered per params, bounded by limit, and
// the total count of rows matching params' filter regardless of
// limit/offset (§6 list-batches endpoint, SPEC_FULL.md supplement #1's
// `list_batches(...) -> (batches, total)`).
func (s *Store) ListBatches(ctx context.Context, params BatchListParams) ([]domain.ReconciliationBatch, int, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	order := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		order = "ASC"
	}

	where := ""
	countArgs := []interface{}{}
	if params.Status != nil {
		where = "WHERE status = $1"
		countArgs = append(countArgs, *params.Status)
	}

	var total int
	countQ := fmt.Sprintf(`SELECT count(*) FROM reconciliation_batches %s`, where)
	if err := s.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapStoreErr("count batches", err)
	}

	args := []interface{}{limit, offset}
	if params.Status != nil {
		where = "WHERE status = $3"
		args = append(args, *params.Status)
	}

	q := fmt.Sprintf(`
		SELECT id, filename, status, total_transactions, processed_count,
		       auto_matched_count, needs_review_count, unmatched_count,
		       started_at, completed_at, created_at
		FROM reconciliation_batches
		%s
		ORDER BY created_at %s
		LIMIT $1 OFFSET $2
	`, where, order)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, wrapStoreErr("list batches", err)
	}
	defer rows.Close()

	var out []domain.ReconciliationBatch
	for rows.Next() {
		var b domain.ReconciliationBatch
		if err := rows.Scan(
			&b.ID, &b.Filename, &b.Status, &b.Total, &b.Processed,
			&b.AutoMatched, &b.NeedsReview, &b.Unmatched,
			&b.StartedAt, &b.CompletedAt, &b.CreatedAt,
		); err != nil {
			return nil, 0, wrapStoreErr("scan batch", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func requireOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("check rows affected", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
