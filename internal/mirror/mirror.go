// Package mirror is the progress mirror (§4.H): a fast-path, advisory
// counter store for in-flight batches. It is never authoritative — the
// store (§4.G) always wins on conflict — and every operation is
// best-effort: failures are logged, never propagated to callers.
package mirror

import "payrecon/internal/domain"

// Counters is the mirror's view of one batch's progress.
type Counters struct {
	Total       int                  `json:"total"`
	Processed   int                  `json:"processed"`
	AutoMatched int                  `json:"autoMatched"`
	NeedsReview int                  `json:"needsReview"`
	Unmatched   int                  `json:"unmatched"`
	Status      domain.BatchStatus   `json:"status"`
}

// Fields is an atomic per-field increment, matching the store's
// IncrementBatchCounters call so a chunk's counters move together.
type Fields struct {
	Processed   int
	AutoMatched int
	NeedsReview int
	Unmatched   int
}

// Mirror is the capability interface the core depends on (§9
// "capability interfaces with null implementations"). Init/SetTotal/
// Increment/SetStatus/Clear never return an error to the caller —
// implementations log and swallow internally, per §4.H's semantics.
type Mirror interface {
	Init(batchID string)
	SetTotal(batchID string, total int)
	Increment(batchID string, f Fields)
	SetStatus(batchID string, status domain.BatchStatus)
	Get(batchID string) (Counters, bool)
	Clear(batchID string)
}
