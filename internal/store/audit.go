package store

import (
	"context"
	"database/sql"

	"payrecon/internal/domain"
)

// InsertAudit appends a single audit row inside the caller's
// transaction (§4.L: every transition writes exactly one audit entry
// alongside its status update, same commit).
func (s *Store) InsertAudit(ctx context.Context, tx *sql.Tx, entry domain.MatchAuditEntry) error {
	const q = `
		INSERT INTO match_audit_log
			(id, transaction_id, action, previous_invoice_id, new_invoice_id, actor, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`
	_, err := tx.ExecContext(ctx, q, entry.ID, entry.TransactionID, entry.Action,
		entry.PreviousInvoiceID, entry.NewInvoiceID, entry.Actor, entry.Reason)
	if err != nil {
		return wrapStoreErr("insert audit entry", err)
	}
	return nil
}

// BulkInsertAudit appends the given audit entries, as they are, in a
// single statement. The batch worker uses it for a chunk's
// auto_matched entries after FindAutoMatchedTransactions resolves the
// chunk's new ids; the state machine's bulk confirm uses it for its
// confirmed entries.
func (s *Store) BulkInsertAudit(ctx context.Context, tx *sql.Tx, entries []domain.MatchAuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const cols = 7
	args := make([]interface{}, 0, len(entries)*cols)
	for _, e := range entries {
		args = append(args, e.ID, e.TransactionID, e.Action, e.PreviousInvoiceID, e.NewInvoiceID, e.Actor, e.Reason)
	}

	q := "INSERT INTO match_audit_log " +
		"(id, transaction_id, action, previous_invoice_id, new_invoice_id, actor, reason) VALUES " +
		buildValueTuples(len(entries), cols)

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return wrapStoreErr("bulk insert audit entries", err)
	}
	return nil
}

// ListAuditForTransaction returns the full audit trail of one
// transaction, oldest first (§6 transaction-audit endpoint).
func (s *Store) ListAuditForTransaction(ctx context.Context, transactionID string) ([]domain.MatchAuditEntry, error) {
	const q = `
		SELECT id, transaction_id, action, previous_invoice_id, new_invoice_id, actor, reason, created_at
		FROM match_audit_log
		WHERE transaction_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, q, transactionID)
	if err != nil {
		return nil, wrapStoreErr("list audit for transaction", err)
	}
	defer rows.Close()

	var out []domain.MatchAuditEntry
	for rows.Next() {
		var e domain.MatchAuditEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.Action, &e.PreviousInvoiceID, &e.NewInvoiceID, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, wrapStoreErr("scan audit entry", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
