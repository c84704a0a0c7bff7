package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidence_ClassificationBoundaries(t *testing.T) {
	_, c, _ := Confidence(95, 0, 1)
	assert.Equal(t, AutoMatched, c)

	_, c, _ = Confidence(94.99, 0, 1)
	assert.Equal(t, NeedsReview, c)

	_, c, _ = Confidence(60, 0, 1)
	assert.Equal(t, NeedsReview, c)

	_, c, _ = Confidence(59.99, 0, 1)
	assert.Equal(t, Unmatched, c)
}

func TestConfidence_Clamped(t *testing.T) {
	score, _, _ := Confidence(100, 15, 0)
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)

	score, _, _ = Confidence(0, -10, 3)
	assert.Equal(t, 0.0, score)
}

func TestConfidence_Breakdown(t *testing.T) {
	score, class, b := Confidence(90, 15, 1)
	assert.Equal(t, AutoMatched, class)
	assert.Equal(t, 100.0, score)
	assert.Equal(t, 90.0, b.RawName)
	assert.Equal(t, 15, b.Date)
	assert.Equal(t, 0, b.Ambiguity)
	assert.Equal(t, 105.0, b.RawTotal)
}
