package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/domain"
)

func TestCursor_RoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), ID: "5b1e2a0e-6b1a-4e3a-9c2a-1f6f9c2b3a4d"}
	encoded := EncodeCursor(c)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestCursor_RejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not-valid-base64!!")
	assert.Error(t, err)

	_, err = DecodeCursor("e30=") // base64 of "{}"
	assert.Error(t, err)
}

func TestCursor_RejectsNonUUIDID(t *testing.T) {
	c := Cursor{CreatedAt: time.Now(), ID: "tx-123"}
	_, err := DecodeCursor(EncodeCursor(c))
	assert.ErrorIs(t, err, domain.ErrBadCursor)
}
