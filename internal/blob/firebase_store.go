package blob

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"firebase.google.com/go/v4/storage"
)

// FirebaseStore keeps images in Firebase Cloud Storage buckets and hands out
// V4 signed URLs.
type FirebaseStore struct {
	buckets map[string]*gcs.BucketHandle
	urlTTL  time.Duration
}

// NewFirebaseStore resolves one bucket handle per class from bucketNames.
func NewFirebaseStore(client *storage.Client, bucketNames map[string]string, urlTTL time.Duration) (*FirebaseStore, error) {
	s := &FirebaseStore{buckets: make(map[string]*gcs.BucketHandle, len(bucketNames)), urlTTL: urlTTL}
	for class, name := range bucketNames {
		if name == "" {
			return nil, fmt.Errorf("bucket for class %q not configured", class)
		}
		b, err := client.Bucket(name)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", name, err)
		}
		s.buckets[class] = b
	}
	return s, nil
}

func (s *FirebaseStore) bucket(class string) (*gcs.BucketHandle, error) {
	b, ok := s.buckets[class]
	if !ok {
		return nil, fmt.Errorf("unknown bucket class %q", class)
	}
	return b, nil
}

// Store uploads data under a freshly generated key and returns the key.
func (s *FirebaseStore) Store(ctx context.Context, class string, data []byte, filename string) (string, error) {
	b, err := s.bucket(class)
	if err != nil {
		return "", err
	}
	key := NewKey(class, filename)

	w := b.Object(key).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(key))
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return key, nil
}

// ResolveURL signs a GET URL for key valid for the configured TTL.
func (s *FirebaseStore) ResolveURL(_ context.Context, class, key string) (string, error) {
	b, err := s.bucket(class)
	if err != nil {
		return "", err
	}
	url, err := b.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.urlTTL),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", key, err)
	}
	return url, nil
}

// URLTTL is how long resolved URLs stay valid.
func (s *FirebaseStore) URLTTL() time.Duration { return s.urlTTL }
