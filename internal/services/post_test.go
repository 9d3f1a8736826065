package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(f *fixture) *PostService {
	svc := NewPostService(f.accounts, f.posts, f.blobs, f.log)
	svc.now = stepClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return svc
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := NewPostService(f.accounts, f.posts, f.blobs, f.log)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 123456789, time.UTC) }

	post, err := svc.CreatePost(context.Background(), "ana", "hello", &Upload{Filename: "Sunset.PNG", Data: []byte("png")})
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "ana", post.UserID)
	assert.True(t, strings.HasPrefix(post.Image, "post-"))
	assert.True(t, strings.HasSuffix(post.Image, ".png"))
	assert.Equal(t, 123000000, post.Date.Nanosecond())
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)
	assert.Contains(t, f.blobs.Objects, post.Image)

	stored := f.post(t, post.ID)
	assert.Equal(t, "hello", stored.Description)
	assert.Equal(t, 1, f.account(t, "ana").PostCount)
}

func TestCreatePostWithoutImage(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)

	post, err := svc.CreatePost(context.Background(), "ana", "text only", nil)
	require.NoError(t, err)
	assert.Empty(t, post.Image)
	assert.Empty(t, f.blobs.Objects)
}

func TestCreatePostRejectsBadImage(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)

	_, err := svc.CreatePost(context.Background(), "ana", "hello", &Upload{Filename: "virus.exe"})
	assert.Equal(t, apperrors.KindInvalidImage, apperrors.KindOf(err))
	assert.Empty(t, f.blobs.Objects)
	assert.Equal(t, 0, f.account(t, "ana").PostCount)
}

func TestCreatePostFailures(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)

	_, err := svc.CreatePost(context.Background(), "ghost", "hello", nil)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	f.blobs.StoreErr = errors.New("bucket unavailable")
	_, err = svc.CreatePost(context.Background(), "ana", "hello", &Upload{Filename: "a.jpg"})
	assert.Equal(t, apperrors.KindDependencyFailure, apperrors.KindOf(err))
	assert.Equal(t, 0, f.account(t, "ana").PostCount)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana", "bob")
	svc := newPostService(f)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "ana", "hello", nil)
	require.NoError(t, err)

	state, err := svc.ToggleLike(ctx, "bob", post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Liked, state)
	assert.Equal(t, []string{"bob"}, f.post(t, post.ID).Likes)

	state, err = svc.ToggleLike(ctx, "ana", post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Liked, state)

	state, err = svc.ToggleLike(ctx, "bob", post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Unliked, state)
	assert.Equal(t, []string{"ana"}, f.post(t, post.ID).Likes)
}

func TestToggleLikeMissingRecords(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)

	_, err := svc.ToggleLike(context.Background(), "ana", "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "Post not found", apperrors.Message(err))

	_, err = svc.ToggleLike(context.Background(), "ghost", "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "User not found", apperrors.Message(err))
}

func TestToggleLikeRetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)
	post, err := svc.CreatePost(context.Background(), "ana", "hello", nil)
	require.NoError(t, err)

	conflicts := 2
	f.posts.OnUpdate = func(*models.Post) error {
		if conflicts > 0 {
			conflicts--
			return repositories.ErrConflict
		}
		return nil
	}

	state, err := svc.ToggleLike(context.Background(), "ana", post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Liked, state)
	assert.Equal(t, []string{"ana"}, f.post(t, post.ID).Likes)
}

func TestToggleLikeGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)
	post, err := svc.CreatePost(context.Background(), "ana", "hello", nil)
	require.NoError(t, err)

	attempts := 0
	f.posts.OnUpdate = func(*models.Post) error {
		attempts++
		return repositories.ErrConflict
	}

	_, err = svc.ToggleLike(context.Background(), "ana", post.ID)
	assert.Equal(t, apperrors.KindDependencyFailure, apperrors.KindOf(err))
	assert.Equal(t, maxUpdateAttempts, attempts)
	assert.Empty(t, f.post(t, post.ID).Likes)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana", "bob")
	svc := newPostService(f)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "ana", "hello", nil)
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, "bob", post.ID, "  nice shot  ")
	require.NoError(t, err)
	assert.Equal(t, "  nice shot  ", comment.Content)
	assert.Equal(t, "User bob", comment.UserName)

	_, err = svc.AddComment(ctx, "bob", post.ID, "again")
	require.NoError(t, err)

	comments := f.post(t, post.ID).Comments
	require.Len(t, comments, 2)
	assert.Equal(t, "  nice shot  ", comments[0].Content)
	assert.Equal(t, "again", comments[1].Content)
	assert.True(t, comments[0].Date.Before(comments[1].Date))
}

func TestAddCommentKeepsNameSnapshot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "ana", "hello", nil)
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "ana", post.ID, "first")
	require.NoError(t, err)

	renamed := f.account(t, "ana")
	renamed.Name = "Ana Maria"
	require.NoError(t, f.accounts.UpdateAccount(ctx, renamed))

	assert.Equal(t, "User ana", f.post(t, post.ID).Comments[0].UserName)
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ana")
	svc := newPostService(f)
	post, err := svc.CreatePost(context.Background(), "ana", "hello", nil)
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), "ana", post.ID, "   ")
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = svc.AddComment(context.Background(), "ana", "missing", "hi")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.Empty(t, f.post(t, post.ID).Comments)
}
