package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTimeKey(t *testing.T) {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := Encode(Cursor{Date: date, ID: "post-1"})
	require.NoError(t, err)

	c, ok := DecodeTimeKey(token)
	require.True(t, ok)
	assert.Equal(t, "post-1", c.ID)
	assert.True(t, date.Equal(c.Date))
}

func TestDecodeTimeKeyRejectsIncompleteTokens(t *testing.T) {
	idOnly, err := Encode(Cursor{ID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "%%%"},
		{name: "not json", token: "bm90IGpzb24="},
		{name: "missing date", token: idOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DecodeTimeKey(tt.token)
			assert.False(t, ok)
		})
	}
}

func TestDecodeIDKey(t *testing.T) {
	token, err := Encode(Cursor{ID: "user-9"})
	require.NoError(t, err)

	c, ok := DecodeIDKey(token)
	require.True(t, ok)
	assert.Equal(t, "user-9", c.ID)

	_, ok = DecodeIDKey("")
	assert.False(t, ok)
}
