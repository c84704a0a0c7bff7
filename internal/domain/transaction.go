package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the BankTransaction lifecycle (§3, §4.L). The
// set is closed; represent it as this tagged string and validate on
// read, never as scattered comparisons.
type TransactionStatus string

const (
	TxPending     TransactionStatus = "pending"
	TxAutoMatched TransactionStatus = "auto_matched"
	TxNeedsReview TransactionStatus = "needs_review"
	TxUnmatched   TransactionStatus = "unmatched"
	TxConfirmed   TransactionStatus = "confirmed"
	TxExternal    TransactionStatus = "external"
)

// BankTransaction is one reconciled row out of an uploaded CSV.
//
// Invariants (§3): status == confirmed implies MatchedInvoiceID is
// set; status in {unmatched, external} implies MatchedInvoiceID is
// nil.
type BankTransaction struct {
	ID                string            `json:"id" db:"id"`
	UploadBatchID     string            `json:"uploadBatchId" db:"upload_batch_id"`
	TransactionDate   time.Time         `json:"transactionDate" db:"transaction_date"`
	Description       string            `json:"description" db:"description"`
	Amount            decimal.Decimal   `json:"amount" db:"amount"`
	ReferenceNumber   *string           `json:"referenceNumber,omitempty" db:"reference_number"`
	Status            TransactionStatus `json:"status" db:"status"`
	MatchedInvoiceID  *string           `json:"matchedInvoiceId,omitempty" db:"matched_invoice_id"`
	ConfidenceScore   *float64          `json:"confidenceScore,omitempty" db:"confidence_score"`
	MatchDetails      string            `json:"matchDetails,omitempty" db:"match_details"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
}

// Valid reports whether the invariants above hold for the row as it
// stands; used defensively when reading untrusted/legacy rows.
func (t *BankTransaction) Valid() bool {
	if t.Status == TxConfirmed && t.MatchedInvoiceID == nil {
		return false
	}
	if (t.Status == TxUnmatched || t.Status == TxExternal) && t.MatchedInvoiceID != nil {
		return false
	}
	return true
}

// AuditAction enumerates MatchAuditEntry.Action (§3, §4.L).
type AuditAction string

const (
	ActionAutoMatched   AuditAction = "auto_matched"
	ActionConfirmed     AuditAction = "confirmed"
	ActionRejected      AuditAction = "rejected"
	ActionManualMatched AuditAction = "manual_matched"
	ActionMarkExternal  AuditAction = "marked_external"
)

// MatchAuditEntry is an append-only audit row (§3).
type MatchAuditEntry struct {
	ID                string      `json:"id" db:"id"`
	TransactionID     string      `json:"transactionId" db:"transaction_id"`
	Action            AuditAction `json:"action" db:"action"`
	PreviousInvoiceID *string     `json:"previousInvoiceId,omitempty" db:"previous_invoice_id"`
	NewInvoiceID      *string     `json:"newInvoiceId,omitempty" db:"new_invoice_id"`
	Actor             string      `json:"actor" db:"actor"`
	Reason            *string     `json:"reason,omitempty" db:"reason"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
}

const (
	ActorSystem       = "system"
	ActorDefaultAdmin = "admin"
)
