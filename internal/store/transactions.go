package store

import (
	"context"
	"database/sql"
	"fmt"

	"payrecon/internal/domain"
)

// BulkInsertTransactions writes one chunk's worth of matched
// transactions in a single multi-row INSERT (§4.G, §4.K step 4). It
// deliberately does not use RETURNING id — callers that need the
// generated ids back (the auto-matched audit step) recover them with
// FindAutoMatchedTransactions instead, keeping this the single
// round-trip the chunk budget assumes.
func (s *Store) BulkInsertTransactions(ctx context.Context, tx *sql.Tx, batchID string, rows []domain.BankTransaction) error {
	if len(rows) == 0 {
		return nil
	}

	const cols = 10
	args := make([]interface{}, 0, len(rows)*cols)
	for _, r := range rows {
		args = append(args,
			r.ID, batchID, r.TransactionDate, r.Description, r.Amount,
			r.ReferenceNumber, r.Status, r.MatchedInvoiceID, r.ConfidenceScore,
			r.MatchDetails,
		)
	}

	q := "INSERT INTO bank_transactions " +
		"(id, upload_batch_id, transaction_date, description, amount, " +
		"reference_number, status, matched_invoice_id, confidence_score, match_details) VALUES " +
		buildValueTuples(len(rows), cols)

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return wrapStoreErr("bulk insert transactions", err)
	}
	return nil
}

func buildValueTuples(rowCount, colCount int) string {
	out := ""
	n := 1
	for r := 0; r < rowCount; r++ {
		if r > 0 {
			out += ", "
		}
		out += "(" + sprintfArgs(colCount, n) + ")"
		n += colCount
	}
	return out
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.BankTransaction, error) {
	const q = `
		SELECT id, upload_batch_id, transaction_date, description, amount,
		       reference_number, status, matched_invoice_id, confidence_score,
		       created_at
		FROM bank_transactions
		WHERE id = $1
	`
	var r domain.BankTransaction
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.UploadBatchID, &r.TransactionDate, &r.Description, &r.Amount,
		&r.ReferenceNumber, &r.Status, &r.MatchedInvoiceID, &r.ConfidenceScore,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, wrapStoreErr("get transaction", err)
	}
	return &r, nil
}

// GetTransactionForUpdate re-reads a transaction inside the caller's
// transaction with a row lock, the first step every state-machine
// action takes before validating its transition (§4.L step 1).
func (s *Store) GetTransactionForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.BankTransaction, error) {
	const q = `
		SELECT id, upload_batch_id, transaction_date, description, amount,
		       reference_number, status, matched_invoice_id, confidence_score,
		       created_at
		FROM bank_transactions
		WHERE id = $1
		FOR UPDATE
	`
	var r domain.BankTransaction
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.UploadBatchID, &r.TransactionDate, &r.Description, &r.Amount,
		&r.ReferenceNumber, &r.Status, &r.MatchedInvoiceID, &r.ConfidenceScore,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, wrapStoreErr("get transaction for update", err)
	}
	return &r, nil
}

// ListAutoMatchedForBulkConfirm reads every auto_matched row in a
// batch as the first half of bulk_confirm_auto (§4.L): the UPDATE that
// follows re-checks status = auto_matched per row, so a transaction
// confirmed individually between this read and that UPDATE is simply
// excluded, not double-confirmed.
func (s *Store) ListAutoMatchedForBulkConfirm(ctx context.Context, tx *sql.Tx, batchID string) ([]AutoMatchedTransaction, error) {
	const q = `
		SELECT id, matched_invoice_id
		FROM bank_transactions
		WHERE upload_batch_id = $1 AND status = $2 AND matched_invoice_id IS NOT NULL
		ORDER BY created_at ASC
	`
	rows, err := tx.QueryContext(ctx, q, batchID, domain.TxAutoMatched)
	if err != nil {
		return nil, wrapStoreErr("list auto-matched for bulk confirm", err)
	}
	defer rows.Close()

	var out []AutoMatchedTransaction
	for rows.Next() {
		var r AutoMatchedTransaction
		if err := rows.Scan(&r.ID, &r.MatchedInvoiceID); err != nil {
			return nil, wrapStoreErr("scan auto-matched row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BulkUpdateStatus is the double-guarded UPDATE bulk_confirm_auto uses
// (§4.L): `id IN (...) AND status = from` means a row already moved by
// a concurrent per-row action is silently excluded, and RETURNING id
// reports exactly which ids it moved. A caller racing another bulk
// update must build its audit entries only from this returned set, not
// from the candidate ids it started with — a row a losing concurrent
// call doesn't actually transition must never get an audit entry (§8
// invariant 11, S5 "no duplicate audit per row").
func (s *Store) BulkUpdateStatus(ctx context.Context, tx *sql.Tx, ids []string, from, to domain.TransactionStatus) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, from, to)
	for _, id := range ids {
		args = append(args, id)
	}

	q := fmt.Sprintf(`
		UPDATE bank_transactions
		SET status = $2
		WHERE status = $1 AND id IN (%s)
		RETURNING id
	`, sprintfArgs(len(ids), 3))

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("bulk update transaction status", err)
	}
	defer rows.Close()

	var moved []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapStoreErr("scan bulk-updated transaction id", err)
		}
		moved = append(moved, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate bulk-updated transactions", err)
	}
	return moved, nil
}

// UpdateTransactionStatus is the single-row transition the state
// machine (§4.L) uses for every action; a WHERE clause on the expected
// prior status makes concurrent double-actions a no-op rather than a
// race (§5 "optimistic guard, not a lock").
func (s *Store) UpdateTransactionStatus(ctx context.Context, tx *sql.Tx, id string, from, to domain.TransactionStatus, matchedInvoiceID *string, confidence *float64) error {
	const q = `
		UPDATE bank_transactions
		SET status = $3, matched_invoice_id = $4, confidence_score = $5
		WHERE id = $1 AND status = $2
	`
	res, err := tx.ExecContext(ctx, q, id, from, to, matchedInvoiceID, confidence)
	if err != nil {
		return wrapStoreErr("update transaction status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("check transaction transition rows", err)
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// TransactionListParams are the shared filters for both the cursor and
// offset listings (§4.M).
type TransactionListParams struct {
	BatchID string
	Status  *domain.TransactionStatus
	Limit   int
}

// ListTransactionsCursor implements the strict (created_at DESC, id
// DESC) keyset pagination of §4.M. A nil cursor starts from the top.
func (s *Store) ListTransactionsCursor(ctx context.Context, params TransactionListParams, cursor *Cursor) ([]domain.BankTransaction, *Cursor, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	clauses := []string{"upload_batch_id = $1"}
	args := []interface{}{params.BatchID}
	idx := 2

	if params.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, *params.Status)
		idx++
	}
	if cursor != nil {
		clauses = append(clauses, fmt.Sprintf("(created_at < $%d OR (created_at = $%d AND id < $%d))", idx, idx, idx+1))
		args = append(args, cursor.CreatedAt, cursor.ID)
		idx += 2
	}

	where := ""
	for i, c := range clauses {
		if i == 0 {
			where = "WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	q := fmt.Sprintf(`
		SELECT id, upload_batch_id, transaction_date, description, amount,
		       reference_number, status, matched_invoice_id, confidence_score,
		       created_at
		FROM bank_transactions
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, where, idx)
	// Read one extra row to detect has_more without a second query
	// (§4.M: "read limit+1 rows; has_more = read > limit").
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, nil, wrapStoreErr("list transactions by cursor", err)
	}
	defer rows.Close()

	var out []domain.BankTransaction
	for rows.Next() {
		var r domain.BankTransaction
		if err := rows.Scan(
			&r.ID, &r.UploadBatchID, &r.TransactionDate, &r.Description, &r.Amount,
			&r.ReferenceNumber, &r.Status, &r.MatchedInvoiceID, &r.ConfidenceScore,
			&r.CreatedAt,
		); err != nil {
			return nil, nil, wrapStoreErr("scan transaction", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrapStoreErr("iterate transactions", err)
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}

	var next *Cursor
	if hasMore {
		last := out[len(out)-1]
		next = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return out, next, nil
}

// ListTransactionsOffset is the deprecated offset-paginated listing
// kept per Open Question 1 in DESIGN.md: reachable only through
// query.Service.ListTransactionsOffset, not exposed as a second public
// HTTP route.
func (s *Store) ListTransactionsOffset(ctx context.Context, batchID string, offset, limit int) ([]domain.BankTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
		SELECT id, upload_batch_id, transaction_date, description, amount,
		       reference_number, status, matched_invoice_id, confidence_score,
		       created_at
		FROM bank_transactions
		WHERE upload_batch_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, q, batchID, offset, limit)
	if err != nil {
		return nil, wrapStoreErr("list transactions by offset", err)
	}
	defer rows.Close()

	var out []domain.BankTransaction
	for rows.Next() {
		var r domain.BankTransaction
		if err := rows.Scan(
			&r.ID, &r.UploadBatchID, &r.TransactionDate, &r.Description, &r.Amount,
			&r.ReferenceNumber, &r.Status, &r.MatchedInvoiceID, &r.ConfidenceScore,
			&r.CreatedAt,
		); err != nil {
			return nil, wrapStoreErr("scan transaction", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AutoMatchedTransaction is the minimal projection
// FindAutoMatchedTransactions returns: just enough to build one audit
// row per transaction (§4.K step 5).
type AutoMatchedTransaction struct {
	ID               string
	MatchedInvoiceID string
	ConfidenceScore  float64
}

// FindAutoMatchedTransactions recovers the ids BulkInsertTransactions
// just wrote, scoped to the batch and auto-matched status, so the
// worker can append exactly one audit row per auto-matched transaction
// without a second round of id bookkeeping in application code (§4.K
// step 5 "bounded secondary query to recover inserted transaction
// ids"). Bounded by limit, the count of auto-matched rows the worker
// itself just classified.
func (s *Store) FindAutoMatchedTransactions(ctx context.Context, tx *sql.Tx, batchID string, limit int) ([]AutoMatchedTransaction, error) {
	if limit <= 0 {
		return nil, nil
	}
	const q = `
		SELECT id, matched_invoice_id, confidence_score
		FROM bank_transactions
		WHERE upload_batch_id = $1 AND status = $2 AND matched_invoice_id IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := tx.QueryContext(ctx, q, batchID, domain.TxAutoMatched, limit)
	if err != nil {
		return nil, wrapStoreErr("find auto-matched transactions", err)
	}
	defer rows.Close()

	var out []AutoMatchedTransaction
	for rows.Next() {
		var r AutoMatchedTransaction
		if err := rows.Scan(&r.ID, &r.MatchedInvoiceID, &r.ConfidenceScore); err != nil {
			return nil, wrapStoreErr("scan auto-matched transaction", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
