package worker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/domain"
	"payrecon/internal/matching"
)

func TestStatusFor_MapsClassificationToTransactionStatus(t *testing.T) {
	assert.Equal(t, domain.TxAutoMatched, statusFor(matching.AutoMatched))
	assert.Equal(t, domain.TxNeedsReview, statusFor(matching.NeedsReview))
	assert.Equal(t, domain.TxUnmatched, statusFor(matching.Unmatched))
}

func TestSerializeMatchDetails_RoundTrips(t *testing.T) {
	id := "inv-1"
	result := matching.MatchResult{
		MatchedInvoiceID: &id,
		InvoiceNumber:    "INV-001",
		Score:            97.5,
		Classification:   matching.AutoMatched,
		Breakdown:        matching.Breakdown{RawName: 98, Date: 15, Ambiguity: 0, RawTotal: 113, Score: 97.5},
		Explanation:      "Auto-matched to INV-001 with 97.50% confidence",
	}

	raw := serializeMatchDetails(result)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "AUTO_MATCHED", decoded["classification"])
	assert.Equal(t, "INV-001", decoded["invoiceNumber"])
}

func TestChunkSize_MatchesSpecBudget(t *testing.T) {
	assert.Equal(t, 1000, ChunkSize)
}
