// Package query is the listing/query service (§4.M): cursor-paginated
// transaction listing, invoice search for manual matching, and the
// derived batch-summary view. It composes store queries; it holds no
// state of its own.
package query

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/domain"
	"payrecon/internal/store"
)

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// TransactionPage is one page of the cursor-paginated listing, with
// the opaque token for the next page when more rows remain.
type TransactionPage struct {
	Rows       []domain.BankTransaction
	NextCursor string
	HasMore    bool
}

// ListTransactions implements §4.M's cursor listing: default limit 50,
// max 100, optional status filter, opaque cursor token decoded and
// validated up front so a malformed token never reaches the store.
func (s *Service) ListTransactions(ctx context.Context, batchID string, status *domain.TransactionStatus, cursorToken string, limit int) (TransactionPage, error) {
	var cursor *store.Cursor
	if cursorToken != "" {
		c, err := store.DecodeCursor(cursorToken)
		if err != nil {
			return TransactionPage{}, err
		}
		cursor = &c
	}

	rows, next, err := s.store.ListTransactionsCursor(ctx, store.TransactionListParams{
		BatchID: batchID,
		Status:  status,
		Limit:   limit,
	}, cursor)
	if err != nil {
		return TransactionPage{}, err
	}

	page := TransactionPage{Rows: rows}
	if next != nil {
		page.HasMore = true
		page.NextCursor = store.EncodeCursor(*next)
	}
	return page, nil
}

// ListTransactionsOffset is the deprecated offset-paginated listing
// kept internally per DESIGN.md's Open Question 1 decision.
func (s *Service) ListTransactionsOffset(ctx context.Context, batchID string, offset, limit int) ([]domain.BankTransaction, error) {
	return s.store.ListTransactionsOffset(ctx, batchID, offset, limit)
}

// ListBatches is a passthrough to the store's filtered/ordered batch
// listing (§6's `GET /reconciliation`), including the real total
// matching-row count independent of limit/offset.
func (s *Service) ListBatches(ctx context.Context, params store.BatchListParams) ([]domain.ReconciliationBatch, int, error) {
	return s.store.ListBatches(ctx, params)
}

// SearchInvoices implements §4.M's invoice-search predicate, defaulting
// to unpaid invoices unless the caller opts into paid ones.
func (s *Service) SearchInvoices(ctx context.Context, amount *decimal.Decimal, statuses []domain.InvoiceStatus, includePaid bool, queryText string, limit int) ([]domain.Invoice, error) {
	return s.store.SearchInvoices(ctx, store.InvoiceSearchParams{
		Amount:      amount,
		Statuses:    statuses,
		IncludePaid: includePaid,
		Query:       queryText,
		Limit:       limit,
	})
}

// BatchSummary builds the derived view of §4.M from the batch's raw
// counters and timestamps.
func (s *Service) BatchSummary(ctx context.Context, batchID string) (*domain.BatchSummary, error) {
	b, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	summary := &domain.BatchSummary{
		BatchID:     b.ID,
		Status:      b.Status,
		Total:       b.Total,
		Processed:   b.Processed,
		AutoMatched: b.AutoMatched,
		NeedsReview: b.NeedsReview,
		Unmatched:   b.Unmatched,
	}

	isTerminal := b.Status == domain.BatchCompleted || b.Status == domain.BatchFailed
	if isTerminal && b.CompletedAt != nil {
		duration := b.CompletedAt.Sub(b.StartedAt)
		ms := duration.Milliseconds()
		summary.DurationMs = &ms
		human := humanDuration(duration)
		summary.DurationHuman = &human

		if ms > 0 {
			rate := float64(b.Processed) / float64(ms) * 1000
			summary.RowsPerSec = &rate
		}
	}

	if b.Processed > 0 {
		summary.AutoMatchedPct = pctOf(b.AutoMatched, b.Processed)
		summary.NeedsReviewPct = pctOf(b.NeedsReview, b.Processed)
		summary.UnmatchedPct = pctOf(b.Unmatched, b.Processed)
	}

	return summary, nil
}

func pctOf(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// humanDuration renders d as "123ms", "4s", or "2m 3s" per §4.M.
func humanDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
