package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"payrecon/internal/domain"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// S1: perfect match.
func TestMatch_S1_PerfectMatch(t *testing.T) {
	candidates := []domain.InvoiceCandidate{
		{ID: "inv1", InvoiceNumber: "INV-2024-001", CustomerName: "Acme Corporation", DueDate: mustDate("2024-01-15")},
	}

	result := Match("ACME CORPORATION", mustDate("2024-01-15"), candidates)

	assert.Equal(t, AutoMatched, result.Classification)
	assert.Equal(t, 100.0, result.Score)
	require := assert.New(t)
	require.NotNil(result.MatchedInvoiceID)
	require.Equal("inv1", *result.MatchedInvoiceID)
	assert.Equal(t, 15, result.Breakdown.Date)
	assert.Equal(t, 0, result.Breakdown.Ambiguity)
}

// S2: reordered words, order-independent similarity.
func TestMatch_S2_ReorderedWords(t *testing.T) {
	candidates := []domain.InvoiceCandidate{
		{ID: "inv1", InvoiceNumber: "INV-2024-001", CustomerName: "John Smith", DueDate: mustDate("2024-01-15")},
	}

	result := Match("CHK DEP SMITH JOHN", mustDate("2024-01-15"), candidates)

	assert.Equal(t, AutoMatched, result.Classification)
	require := assert.New(t)
	require.NotNil(result.MatchedInvoiceID)
	require.Equal("inv1", *result.MatchedInvoiceID)
}

// S3: ambiguity pushes a mid-similarity match to needs-review.
func TestMatch_S3_AmbiguityPushesReview(t *testing.T) {
	candidates := []domain.InvoiceCandidate{
		{ID: "inv1", InvoiceNumber: "INV-1", CustomerName: "Smith Anne", DueDate: mustDate("2024-01-15")},
		{ID: "inv2", InvoiceNumber: "INV-2", CustomerName: "Smith Barry", DueDate: mustDate("2024-01-15")},
		{ID: "inv3", InvoiceNumber: "INV-3", CustomerName: "Smith Carl", DueDate: mustDate("2024-01-15")},
	}

	result := Match("PAYMENT FROM SMITH", mustDate("2024-01-15"), candidates)

	assert.Equal(t, 10, result.Breakdown.Ambiguity)
	if result.Breakdown.RawName >= 85 && result.Breakdown.RawName <= 94 {
		assert.Equal(t, NeedsReview, result.Classification)
	}
}

// S4: unmatched on far date and low similarity.
func TestMatch_S4_UnmatchedFarDateLowSimilarity(t *testing.T) {
	candidates := []domain.InvoiceCandidate{
		{ID: "inv1", InvoiceNumber: "INV-1", CustomerName: "XYZ Corp", DueDate: mustDate("2024-01-15")},
	}

	result := Match("PAYMENT ABC", mustDate("2024-03-15"), candidates)

	assert.Equal(t, Unmatched, result.Classification)
	assert.Nil(t, result.MatchedInvoiceID)
	assert.Equal(t, -10, result.Breakdown.Date)
}

func TestMatch_NoCandidates(t *testing.T) {
	result := Match("ANYTHING", mustDate("2024-01-15"), nil)
	assert.Equal(t, Unmatched, result.Classification)
	assert.Equal(t, 0.0, result.Score)
	assert.Nil(t, result.MatchedInvoiceID)
	assert.Equal(t, "No candidate invoices found with matching amount", result.Explanation)
}

func TestMatch_UnmatchedNeverReturnsInvoiceID(t *testing.T) {
	// Even when a winner is identified internally, UNMATCHED must never
	// surface a matched invoice id (§4.F step 6, §8 property 4).
	candidates := []domain.InvoiceCandidate{
		{ID: "inv1", InvoiceNumber: "INV-1", CustomerName: "Totally Unrelated Entity", DueDate: mustDate("2020-01-01")},
	}
	result := Match("NOTHING LIKE IT", mustDate("2024-06-01"), candidates)
	assert.Equal(t, Unmatched, result.Classification)
	assert.Nil(t, result.MatchedInvoiceID)
}

func TestMatch_Deterministic(t *testing.T) {
	candidates := []domain.InvoiceCandidate{
		{ID: "inv2", InvoiceNumber: "INV-2", CustomerName: "Bob Jones", DueDate: mustDate("2024-01-10")},
		{ID: "inv1", InvoiceNumber: "INV-1", CustomerName: "Bob Jones", DueDate: mustDate("2024-01-10")},
	}
	r1 := Match("BOB JONES", mustDate("2024-01-10"), candidates)

	reversed := []domain.InvoiceCandidate{candidates[1], candidates[0]}
	r2 := Match("BOB JONES", mustDate("2024-01-10"), reversed)

	assert.Equal(t, r1.MatchedInvoiceID, r2.MatchedInvoiceID)
	assert.Equal(t, r1.Score, r2.Score)
	// Tie-break by smaller candidate id: "inv1" < "inv2".
	assert.Equal(t, "inv1", *r1.MatchedInvoiceID)
}
