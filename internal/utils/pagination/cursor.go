package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque timeline position handed to clients.
// TimestampMillis + UpdateID identify the last entry of the previous page.
type Cursor struct {
	TimestampMillis int64 `json:"ts"`
	UpdateID        uint  `json:"id"`
}

// After builds the cursor pointing past an entry.
func After(timestamp time.Time, updateID uint) Cursor {
	return Cursor{TimestampMillis: timestamp.UnixMilli(), UpdateID: updateID}
}

// IsZero reports whether c is the first-page cursor.
func (c Cursor) IsZero() bool {
	return c.TimestampMillis == 0 && c.UpdateID == 0
}

// Time returns the cursor timestamp in UTC.
func (c Cursor) Time() time.Time {
	return time.UnixMilli(c.TimestampMillis).UTC()
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}
