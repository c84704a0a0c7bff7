package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanDuration_Tiers(t *testing.T) {
	assert.Equal(t, "500ms", humanDuration(500*time.Millisecond))
	assert.Equal(t, "4s", humanDuration(4*time.Second))
	assert.Equal(t, "2m 3s", humanDuration(2*time.Minute+3*time.Second))
}

func TestPctOf(t *testing.T) {
	assert.Equal(t, 0, pctOf(0, 0))
	assert.Equal(t, 50, pctOf(5, 10))
	assert.Equal(t, 33, pctOf(1, 3))
}
