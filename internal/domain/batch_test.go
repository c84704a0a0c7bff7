package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountersConsistent_NonTerminalAlwaysTrue(t *testing.T) {
	b := ReconciliationBatch{Status: BatchProcessing, Processed: 3, AutoMatched: 0, NeedsReview: 0, Unmatched: 0, Total: 100}
	assert.True(t, b.CountersConsistent())
}

func TestCountersConsistent_TerminalRequiresSumMatch(t *testing.T) {
	now := time.Now()
	good := ReconciliationBatch{
		Status: BatchCompleted, Total: 10, Processed: 10,
		AutoMatched: 6, NeedsReview: 3, Unmatched: 1,
		CompletedAt: &now,
	}
	assert.True(t, good.CountersConsistent())

	bad := good
	bad.Unmatched = 2
	assert.False(t, bad.CountersConsistent())
}

func TestProgressPercent_ZeroTotalIsZero(t *testing.T) {
	b := ReconciliationBatch{Total: 0, Processed: 0}
	assert.Equal(t, 0.0, b.ProgressPercent())
}

func TestProgressPercent_Computed(t *testing.T) {
	b := ReconciliationBatch{Total: 200, Processed: 50}
	assert.Equal(t, 25.0, b.ProgressPercent())
}
