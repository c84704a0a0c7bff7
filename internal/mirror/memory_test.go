package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"payrecon/internal/domain"
)

func TestMemoryMirror_IncrementAccumulates(t *testing.T) {
	m := NewMemoryMirror()
	m.Init("batch-1")
	m.SetTotal("batch-1", 100)
	m.Increment("batch-1", Fields{Processed: 10, AutoMatched: 8, NeedsReview: 1, Unmatched: 1})
	m.Increment("batch-1", Fields{Processed: 10, AutoMatched: 9, NeedsReview: 0, Unmatched: 1})

	c, ok := m.Get("batch-1")
	assert.True(t, ok)
	assert.Equal(t, 100, c.Total)
	assert.Equal(t, 20, c.Processed)
	assert.Equal(t, 17, c.AutoMatched)
	assert.Equal(t, 1, c.NeedsReview)
	assert.Equal(t, 2, c.Unmatched)
}

func TestMemoryMirror_MissingKey(t *testing.T) {
	m := NewMemoryMirror()
	_, ok := m.Get("nope")
	assert.False(t, ok)
}

func TestMemoryMirror_ClearRemoves(t *testing.T) {
	m := NewMemoryMirror()
	m.Init("batch-1")
	m.Clear("batch-1")
	_, ok := m.Get("batch-1")
	assert.False(t, ok)
}

func TestMemoryMirror_SetStatus(t *testing.T) {
	m := NewMemoryMirror()
	m.Init("batch-1")
	m.SetStatus("batch-1", domain.BatchCompleted)
	c, ok := m.Get("batch-1")
	assert.True(t, ok)
	assert.Equal(t, domain.BatchCompleted, c.Status)
}

func TestNullMirror_AlwaysMisses(t *testing.T) {
	var n NullMirror
	n.Init("x")
	n.Increment("x", Fields{Processed: 1})
	_, ok := n.Get("x")
	assert.False(t, ok)
}
