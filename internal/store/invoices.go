package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"payrecon/internal/domain"
)

// GetInvoice fetches a single invoice by id (§4.G get_invoice).
func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	const q = `
		SELECT id, invoice_number, customer_name, customer_email, amount,
		       due_date, status, paid_at, created_at
		FROM invoices
		WHERE id = $1
	`
	var inv domain.Invoice
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail,
		&inv.Amount, &inv.DueDate, &inv.Status, &inv.PaidAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, wrapStoreErr("get invoice", err)
	}
	return &inv, nil
}

// GetInvoiceByNumber fetches by the human-readable invoice number
// (SPEC_FULL.md supplement 2).
func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	const q = `
		SELECT id, invoice_number, customer_name, customer_email, amount,
		       due_date, status, paid_at, created_at
		FROM invoices
		WHERE invoice_number = $1
	`
	var inv domain.Invoice
	err := s.db.QueryRowContext(ctx, q, number).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail,
		&inv.Amount, &inv.DueDate, &inv.Status, &inv.PaidAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, wrapStoreErr("get invoice by number", err)
	}
	return &inv, nil
}

// InvoiceExists is the cheap existence check manual_match validates
// against (§4.L "Requires: invoice exists").
func (s *Store) InvoiceExists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, wrapStoreErr("check invoice exists", err)
	}
	return exists, nil
}

// FindCandidateInvoicesByAmounts is the single bulk candidate query
// the batch worker issues per chunk (§4.G, §4.K step 3b): unpaid
// invoices whose amount is in the given set, grouped by amount string
// for O(1) chunk-local lookup.
func (s *Store) FindCandidateInvoicesByAmounts(ctx context.Context, amounts []string) (map[string][]domain.InvoiceCandidate, error) {
	result := make(map[string][]domain.InvoiceCandidate)
	if len(amounts) == 0 {
		return result, nil
	}

	args := make([]interface{}, len(amounts))
	for i, a := range amounts {
		args[i] = a
	}

	q := fmt.Sprintf(`
		SELECT id, invoice_number, customer_name, due_date, amount
		FROM invoices
		WHERE status != 'paid' AND amount::text IN (%s)
		ORDER BY due_date ASC, id ASC
	`, sprintfArgs(len(amounts), 1))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("find candidate invoices", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.InvoiceCandidate
		var amount decimal.Decimal
		if err := rows.Scan(&c.ID, &c.InvoiceNumber, &c.CustomerName, &c.DueDate, &amount); err != nil {
			return nil, wrapStoreErr("scan candidate invoice", err)
		}
		key := amount.StringFixed(2)
		result[key] = append(result[key], c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate candidate invoices", err)
	}

	return result, nil
}

// SearchInvoices implements the invoice-search predicate of §4.M:
// amount within ±0.01, status set (defaulting to "not paid"),
// case-insensitive substring on customer name, ordered by due_date
// ASC then created_at DESC.
type InvoiceSearchParams struct {
	Amount       *decimal.Decimal
	Statuses     []domain.InvoiceStatus
	IncludePaid  bool
	Query        string
	Limit        int
}

func (s *Store) SearchInvoices(ctx context.Context, params InvoiceSearchParams) ([]domain.Invoice, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var clauses []string
	var args []interface{}
	idx := 1

	if params.Amount != nil {
		lo := params.Amount.Sub(decimal.NewFromFloat(0.01))
		hi := params.Amount.Add(decimal.NewFromFloat(0.01))
		clauses = append(clauses, fmt.Sprintf("amount BETWEEN $%d AND $%d", idx, idx+1))
		args = append(args, lo, hi)
		idx += 2
	}

	switch {
	case len(params.Statuses) > 0:
		placeholders := make([]string, len(params.Statuses))
		for i, st := range params.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", idx)
			args = append(args, st)
			idx++
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	case !params.IncludePaid:
		clauses = append(clauses, "status != 'paid'")
	}

	if params.Query != "" {
		clauses = append(clauses, fmt.Sprintf("customer_name ILIKE $%d", idx))
		args = append(args, "%"+params.Query+"%")
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	q := fmt.Sprintf(`
		SELECT id, invoice_number, customer_name, customer_email, amount,
		       due_date, status, paid_at, created_at
		FROM invoices
		%s
		ORDER BY due_date ASC, created_at DESC
		LIMIT $%d
	`, where, idx)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("search invoices", err)
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail,
			&inv.Amount, &inv.DueDate, &inv.Status, &inv.PaidAt, &inv.CreatedAt,
		); err != nil {
			return nil, wrapStoreErr("scan searched invoice", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
