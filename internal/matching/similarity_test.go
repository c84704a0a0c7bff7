package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("ACME CORPORATION", "ACME CORPORATION"))
}

func TestSimilarity_EitherEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "ACME"))
	assert.Equal(t, 0.0, Similarity("ACME", ""))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarity_OrderIndependent(t *testing.T) {
	// "SMITH JOHN" vs "JOHN SMITH" should be a perfect match once
	// token-sorted, even though the direct Jaro-Winkler score is lower.
	got := Similarity("SMITH JOHN", "JOHN SMITH")
	assert.Equal(t, 100.0, got)
}

func TestSimilarity_NeverBelowDirect(t *testing.T) {
	// Property 6 of §8: order-independent similarity >= direct similarity.
	cases := [][2]string{
		{"SMITH JOHN", "JOHN SMITH"},
		{"ACME CORP", "CORP ACME INDUSTRIES"},
		{"JANE DOE", "JANE DOE"},
		{"XYZ", "ABC"},
	}
	for _, c := range cases {
		direct := jaroWinkler(c[0], c[1])
		best := Similarity(c[0], c[1])
		assert.GreaterOrEqual(t, best, direct)
	}
}
