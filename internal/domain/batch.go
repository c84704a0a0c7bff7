package domain

import "time"

// BatchStatus is the reconciliation batch lifecycle (§3).
type BatchStatus string

const (
	BatchUploading  BatchStatus = "uploading"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// ReconciliationBatch is one CSV upload session and the counters the
// batch worker (§4.K) accumulates while processing it.
//
// Invariants (§3): processed = autoMatched + needsReview + unmatched
// at terminal state; processed <= total; completedAt is set iff
// status is completed or failed.
type ReconciliationBatch struct {
	ID               string      `json:"id" db:"id"`
	Filename         string      `json:"filename" db:"filename"`
	Status           BatchStatus `json:"status" db:"status"`
	Total            int         `json:"total" db:"total_transactions"`
	Processed        int         `json:"processed" db:"processed_count"`
	AutoMatched      int         `json:"autoMatched" db:"auto_matched_count"`
	NeedsReview      int         `json:"needsReview" db:"needs_review_count"`
	Unmatched        int         `json:"unmatched" db:"unmatched_count"`
	StartedAt        time.Time   `json:"startedAt" db:"started_at"`
	CompletedAt      *time.Time  `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
}

// ProgressPercent returns processed/total*100, 0 when total is 0.
func (b *ReconciliationBatch) ProgressPercent() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Processed) / float64(b.Total) * 100
}

// CountersConsistent checks the §3 terminal invariant.
func (b *ReconciliationBatch) CountersConsistent() bool {
	if b.Status != BatchCompleted && b.Status != BatchFailed {
		return true
	}
	return b.Processed == b.AutoMatched+b.NeedsReview+b.Unmatched &&
		b.Processed <= b.Total &&
		b.AutoMatched >= 0 && b.NeedsReview >= 0 && b.Unmatched >= 0
}

// BatchSummary is the derived view described in §4.M.
type BatchSummary struct {
	BatchID           string  `json:"batchId"`
	Status            BatchStatus `json:"status"`
	Total             int     `json:"total"`
	Processed         int     `json:"processed"`
	AutoMatched       int     `json:"autoMatched"`
	NeedsReview       int     `json:"needsReview"`
	Unmatched         int     `json:"unmatched"`
	DurationMs        *int64  `json:"durationMs,omitempty"`
	DurationHuman     *string `json:"durationHuman,omitempty"`
	RowsPerSec        *float64 `json:"rowsPerSec,omitempty"`
	AutoMatchedPct    int     `json:"autoMatchedPct"`
	NeedsReviewPct    int     `json:"needsReviewPct"`
	UnmatchedPct      int     `json:"unmatchedPct"`
}
