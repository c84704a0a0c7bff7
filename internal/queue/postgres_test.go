package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffFor_Exponential(t *testing.T) {
	base := time.Second
	assert.Equal(t, time.Second, backoffFor(1, base))
	assert.Equal(t, 2*time.Second, backoffFor(2, base))
	assert.Equal(t, 4*time.Second, backoffFor(3, base))
}

func TestConsumeOptions_Defaults(t *testing.T) {
	opts := ConsumeOptions{}.withDefaults()
	assert.Equal(t, 2, opts.Concurrency)
	assert.Equal(t, 60*time.Second, opts.LockDuration)
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.BackoffBase)
}

func TestConsumeOptions_RespectsFloor(t *testing.T) {
	opts := ConsumeOptions{LockDuration: 10 * time.Second}.withDefaults()
	assert.Equal(t, 60*time.Second, opts.LockDuration)
}
