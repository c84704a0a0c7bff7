// Package statemachine is the transaction state machine (§4.L): every
// user-visible mutation to a BankTransaction's status goes through one
// of the five actions here, each executed inside a single store
// transaction with a WHERE-status guard that closes the
// check-then-act race a separate read-then-write would have.
package statemachine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"payrecon/internal/domain"
	"payrecon/internal/store"
)

type StateMachine struct {
	store *store.Store
}

func New(s *store.Store) *StateMachine {
	return &StateMachine{store: s}
}

const defaultActor = domain.ActorDefaultAdmin

func actorOrDefault(actor string) string {
	if actor == "" {
		return defaultActor
	}
	return actor
}

// Confirm accepts the current match as final (§4.L: auto_matched or
// needs_review -> confirmed, matched_invoice_id unchanged). Returns
// the id of the audit entry it appended.
func (sm *StateMachine) Confirm(ctx context.Context, transactionID, actor string) (string, error) {
	auditID := uuid.NewString()
	err := sm.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := sm.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if current.Status != domain.TxAutoMatched && current.Status != domain.TxNeedsReview {
			return domain.ErrInvalidState
		}

		if err := sm.store.UpdateTransactionStatus(ctx, tx, transactionID, current.Status, domain.TxConfirmed, current.MatchedInvoiceID, current.ConfidenceScore); err != nil {
			return err
		}

		return sm.store.InsertAudit(ctx, tx, domain.MatchAuditEntry{
			ID:                auditID,
			TransactionID:     transactionID,
			Action:            domain.ActionConfirmed,
			PreviousInvoiceID: current.MatchedInvoiceID,
			NewInvoiceID:      current.MatchedInvoiceID,
			Actor:             actorOrDefault(actor),
		})
	})
	return auditID, err
}

// Reject discards the current match (§4.L: auto_matched or
// needs_review -> unmatched, matched_invoice_id cleared).
func (sm *StateMachine) Reject(ctx context.Context, transactionID, actor string, reason *string) error {
	return sm.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := sm.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if current.Status != domain.TxAutoMatched && current.Status != domain.TxNeedsReview {
			return domain.ErrInvalidState
		}

		if err := sm.store.UpdateTransactionStatus(ctx, tx, transactionID, current.Status, domain.TxUnmatched, nil, nil); err != nil {
			return err
		}

		return sm.store.InsertAudit(ctx, tx, domain.MatchAuditEntry{
			ID:                uuid.NewString(),
			TransactionID:     transactionID,
			Action:            domain.ActionRejected,
			PreviousInvoiceID: current.MatchedInvoiceID,
			Actor:             actorOrDefault(actor),
			Reason:            reason,
		})
	})
}

// ManualMatch assigns an operator-chosen invoice (§4.L: needs_review
// or unmatched -> confirmed, matched_invoice_id set; requires the
// invoice to exist).
func (sm *StateMachine) ManualMatch(ctx context.Context, transactionID, invoiceID, actor string) error {
	exists, err := sm.store.InvoiceExists(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrInvoiceNotFound
	}

	return sm.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := sm.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if current.Status != domain.TxNeedsReview && current.Status != domain.TxUnmatched {
			return domain.ErrInvalidState
		}

		if err := sm.store.UpdateTransactionStatus(ctx, tx, transactionID, current.Status, domain.TxConfirmed, &invoiceID, current.ConfidenceScore); err != nil {
			return err
		}

		return sm.store.InsertAudit(ctx, tx, domain.MatchAuditEntry{
			ID:                uuid.NewString(),
			TransactionID:     transactionID,
			Action:            domain.ActionManualMatched,
			PreviousInvoiceID: current.MatchedInvoiceID,
			NewInvoiceID:      &invoiceID,
			Actor:             actorOrDefault(actor),
		})
	})
}

// MarkExternal flags a transaction as out of scope for reconciliation
// (§4.L: unmatched -> external, matched_invoice_id cleared).
func (sm *StateMachine) MarkExternal(ctx context.Context, transactionID, actor string, reason *string) error {
	return sm.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := sm.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if current.Status != domain.TxUnmatched {
			return domain.ErrInvalidState
		}

		if err := sm.store.UpdateTransactionStatus(ctx, tx, transactionID, current.Status, domain.TxExternal, nil, nil); err != nil {
			return err
		}

		return sm.store.InsertAudit(ctx, tx, domain.MatchAuditEntry{
			ID:                uuid.NewString(),
			TransactionID:     transactionID,
			Action:            domain.ActionMarkExternal,
			PreviousInvoiceID: current.MatchedInvoiceID,
			Actor:             actorOrDefault(actor),
			Reason:            reason,
		})
	})
}

// BulkConfirmAuto confirms every auto_matched transaction in a batch
// with one statement (§4.L): a double-guarded UPDATE (id IN (...) AND
// status = auto_matched) prevents a race with a concurrent per-row
// confirm, followed by a single bulk audit append.
func (sm *StateMachine) BulkConfirmAuto(ctx context.Context, batchID, actor string) (int, []string, error) {
	var moved []string
	err := sm.store.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := sm.store.ListAutoMatchedForBulkConfirm(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		candidateIDs := make([]string, len(rows))
		invoiceByID := make(map[string]string, len(rows))
		for i, r := range rows {
			candidateIDs[i] = r.ID
			invoiceByID[r.ID] = r.MatchedInvoiceID
		}

		moved, err = sm.store.BulkUpdateStatus(ctx, tx, candidateIDs, domain.TxAutoMatched, domain.TxConfirmed)
		if err != nil {
			return err
		}
		if len(moved) == 0 {
			return nil
		}

		// Audit entries are built only from moved, the ids the UPDATE
		// actually flipped — a candidate a concurrent bulk-confirm
		// already claimed must not get a second audit entry here.
		reason := "Bulk confirmation of auto-matched transactions"
		entries := make([]domain.MatchAuditEntry, 0, len(moved))
		for _, id := range moved {
			invoiceID := invoiceByID[id]
			entries = append(entries, domain.MatchAuditEntry{
				ID:                uuid.NewString(),
				TransactionID:     id,
				Action:            domain.ActionConfirmed,
				PreviousInvoiceID: &invoiceID,
				NewInvoiceID:      &invoiceID,
				Actor:             actorOrDefault(actor),
				Reason:            &reason,
			})
		}
		return sm.store.BulkInsertAudit(ctx, tx, entries)
	})
	return len(moved), moved, err
}

func (sm *StateMachine) loadForUpdate(ctx context.Context, tx *sql.Tx, transactionID string) (*domain.BankTransaction, error) {
	t, err := sm.store.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	return t, nil
}
