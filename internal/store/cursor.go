package store

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"payrecon/internal/domain"
)

// Cursor is the opaque pagination token of §4.M: created_at plus id,
// the tie-break that makes the ordering total even when two rows
// share a timestamp.
type Cursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// EncodeCursor base64url-encodes the cursor's JSON form.
func EncodeCursor(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.URLEncoding.EncodeToString(b)
}

// DecodeCursor reverses EncodeCursor, rejecting malformed tokens with
// ErrBadCursor rather than letting a broken query leak through.
func DecodeCursor(s string) (Cursor, error) {
	var c Cursor
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return c, domain.ErrBadCursor
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, domain.ErrBadCursor
	}
	if c.ID == "" {
		return c, domain.ErrBadCursor
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return c, domain.ErrBadCursor
	}
	return c, nil
}
