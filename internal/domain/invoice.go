package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the invoice lifecycle status (§3). Invoices are
// created externally (seed) and are only ever mutated to set `paid`;
// payrecon never creates, updates, or deletes them outside that one
// transition's read-side visibility.
type InvoiceStatus string

const (
	InvoiceDraft    InvoiceStatus = "draft"
	InvoiceSent     InvoiceStatus = "sent"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceOverdue  InvoiceStatus = "overdue"
)

// Invoice is the durable record a bank transaction reconciles against.
// Only non-paid invoices are eligible match candidates (§3 invariant).
type Invoice struct {
	ID            string          `json:"id" db:"id"`
	InvoiceNumber string          `json:"invoiceNumber" db:"invoice_number"`
	CustomerName  string          `json:"customerName" db:"customer_name"`
	CustomerEmail string          `json:"customerEmail" db:"customer_email"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	DueDate       time.Time       `json:"dueDate" db:"due_date"`
	Status        InvoiceStatus   `json:"status" db:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// InvoiceCandidate is the projection the authoritative store returns
// from find_candidate_invoices_by_amounts (§4.G) — just enough fields
// for the matcher to score against, never the full Invoice row.
type InvoiceCandidate struct {
	ID            string
	InvoiceNumber string
	CustomerName  string
	DueDate       time.Time
}
