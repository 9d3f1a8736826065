// Package pagination encodes keyset positions as opaque page tokens.
//
// Only store implementations build or read these tokens; services pass them
// through untouched.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the keyset position of the last item on a page.
type Cursor struct {
	// Date is the sort key of time-ordered scans. Zero for ID-ordered scans.
	Date time.Time `json:"date,omitempty"`
	ID   string    `json:"id"`
}

// Encode returns the opaque token for c.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.ID == "" {
		return Cursor{}, fmt.Errorf("cursor missing id")
	}
	return c, nil
}

// DecodeTimeKey decodes a token for a date-ordered scan. ok is false when the
// token is empty or lacks either key field; callers then start from the top.
func DecodeTimeKey(token string) (c Cursor, ok bool) {
	c, err := Decode(token)
	if err != nil || c.Date.IsZero() {
		return Cursor{}, false
	}
	return c, true
}

// DecodeIDKey decodes a token for an ID-ordered scan.
func DecodeIDKey(token string) (c Cursor, ok bool) {
	c, err := Decode(token)
	if err != nil {
		return Cursor{}, false
	}
	return c, true
}
