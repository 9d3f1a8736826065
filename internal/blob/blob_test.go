package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedImage(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"anim.Gif", true},
		{"doc.pdf", false},
		{"photo.jpg.exe", false},
		{"jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedImage(tt.filename))
		})
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey(ClassPost, "Holiday.PNG")

	assert.True(t, strings.HasPrefix(key, "post-"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewKey(ClassPost, "Holiday.PNG"))
}
