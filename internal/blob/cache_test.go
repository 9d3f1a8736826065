package blob_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/blob/blobtest"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries map[string]string
	getErr  error
	setErr  error
	ttl     time.Duration
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	url, ok := c.entries[key]
	return url, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, url string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = url
	c.ttl = ttl
	return nil
}

func TestCachedStoreServesFromCache(t *testing.T) {
	store := blobtest.New()
	cache := &fakeCache{entries: map[string]string{}}
	log, _ := test.NewNullLogger()
	s := blob.NewCachedStore(store, cache, 10*time.Minute, log)
	ctx := context.Background()

	first, err := s.ResolveURL(ctx, blob.ClassPost, "post-1.png")
	require.NoError(t, err)
	second, err := s.ResolveURL(ctx, blob.ClassPost, "post-1.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Resolved)
	assert.Equal(t, 10*time.Minute, cache.ttl)
	assert.Equal(t, first, cache.entries["post/post-1.png"])
}

func TestCachedStoreFallsThroughOnCacheFailure(t *testing.T) {
	store := blobtest.New()
	cache := &fakeCache{entries: map[string]string{}, getErr: errors.New("dial tcp: refused"), setErr: errors.New("dial tcp: refused")}
	log, hook := test.NewNullLogger()
	s := blob.NewCachedStore(store, cache, time.Minute, log)

	url, err := s.ResolveURL(context.Background(), blob.ClassAvatar, "avatar-1.jpg")
	require.NoError(t, err)

	assert.Equal(t, blobtest.URL(blob.ClassAvatar, "avatar-1.jpg"), url)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestCachedStorePropagatesResolveError(t *testing.T) {
	store := blobtest.New()
	store.ResolveErr = errors.New("signing key missing")
	log, _ := test.NewNullLogger()
	s := blob.NewCachedStore(store, &fakeCache{entries: map[string]string{}}, time.Minute, log)

	_, err := s.ResolveURL(context.Background(), blob.ClassPost, "post-1.png")
	assert.ErrorIs(t, err, store.ResolveErr)
}

func TestCachedStoreUploadsThroughUnderlyingStore(t *testing.T) {
	store := blobtest.New()
	cache := &fakeCache{entries: map[string]string{}}
	log, _ := test.NewNullLogger()
	var s blob.Store = blob.NewCachedStore(store, cache, time.Minute, log)

	key, err := s.Store(context.Background(), blob.ClassPost, []byte("img"), "photo.PNG")
	require.NoError(t, err)

	assert.Equal(t, []byte("img"), store.Objects[key])
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Empty(t, cache.entries)

	url, err := s.ResolveURL(context.Background(), blob.ClassPost, key)
	require.NoError(t, err)
	assert.Equal(t, blobtest.URL(blob.ClassPost, key), url)
}
