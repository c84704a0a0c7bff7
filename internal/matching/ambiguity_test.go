package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmbiguityPenalty(t *testing.T) {
	assert.Equal(t, 0, AmbiguityPenalty(0))
	assert.Equal(t, 0, AmbiguityPenalty(1))
	assert.Equal(t, 5, AmbiguityPenalty(2))
	assert.Equal(t, 10, AmbiguityPenalty(3))
	assert.Equal(t, 10, AmbiguityPenalty(100))
}
