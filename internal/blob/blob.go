// Package blob stores uploaded images and turns their opaque keys into
// time-limited retrieval URLs.
package blob

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Bucket classes. Each class maps to one configured bucket.
const (
	ClassAvatar = "avatar"
	ClassPost   = "post"
)

// Store persists image bytes and resolves stored keys to URLs.
type Store interface {
	Store(ctx context.Context, class string, data []byte, filename string) (string, error)
	ResolveURL(ctx context.Context, class, key string) (string, error)
}

var allowedImageExtensions = regexp.MustCompile(`(?i)(\.jpg|\.jpeg|\.png|\.gif)$`)

// IsAllowedImage reports whether filename ends in a supported image extension.
func IsAllowedImage(filename string) bool {
	return allowedImageExtensions.MatchString(filename)
}

// NewKey builds the object key for an upload: <class>-<uuid><ext>.
func NewKey(class, filename string) string {
	ext := strings.ToLower(allowedImageExtensions.FindString(filename))
	return class + "-" + uuid.NewString() + ext
}
