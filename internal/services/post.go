package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PostService creates posts and applies likes and comments to them.
type PostService struct {
	accounts repositories.AccountRepository
	posts    repositories.PostRepository
	blobs    blob.Store
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewPostService(accounts repositories.AccountRepository, posts repositories.PostRepository, blobs blob.Store, log logrus.FieldLogger) *PostService {
	return &PostService{
		accounts: accounts,
		posts:    posts,
		blobs:    blobs,
		log:      log,
		now:      time.Now,
	}
}

func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CreatePost stores the optional image, persists the post and increments the
// author's post count.
func (s *PostService) CreatePost(ctx context.Context, callerID, description string, image *Upload) (*models.Post, error) {
	if _, err := loadAccount(ctx, s.accounts, callerID, "User not found"); err != nil {
		return nil, err
	}

	key, err := storeImage(ctx, s.blobs, blob.ClassPost, image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		UserID:      callerID,
		Description: description,
		Image:       key,
		Date:        s.timestamp(),
		Likes:       []string{},
		Comments:    []models.Comment{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Dependency("Error on create post, please try again.", err)
	}
	if err := s.accounts.IncrementPostCount(ctx, callerID, 1); err != nil {
		return nil, apperrors.Dependency("Error on update post count, please try again.", err)
	}

	s.log.WithFields(logrus.Fields{"user": callerID, "post": post.ID}).Info("post created")
	return post, nil
}

// ToggleLike adds callerID to the post's likes, or removes it when present.
func (s *PostService) ToggleLike(ctx context.Context, callerID, postID string) (models.LikeState, error) {
	if _, err := loadAccount(ctx, s.accounts, callerID, "User not found"); err != nil {
		return "", err
	}

	var state models.LikeState
	_, err := s.mutatePost(ctx, postID, func(post *models.Post) {
		if post.HasLiked(callerID) {
			likes := make([]string, 0, len(post.Likes))
			for _, id := range post.Likes {
				if id != callerID {
					likes = append(likes, id)
				}
			}
			post.Likes = likes
			state = models.Unliked
			return
		}
		post.Likes = append(post.Likes, callerID)
		state = models.Liked
	})
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{"user": callerID, "post": postID, "state": state}).Info("like toggled")
	return state, nil
}

// AddComment appends a comment to the post. The comment carries the caller's
// current display name. Content is stored as sent.
func (s *PostService) AddComment(ctx context.Context, callerID, postID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidInput("Comment content is required")
	}
	caller, err := loadAccount(ctx, s.accounts, callerID, "User not found")
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		UserID:   caller.ID,
		UserName: caller.Name,
		Date:     s.timestamp(),
		Content:  content,
	}
	if _, err := s.mutatePost(ctx, postID, func(post *models.Post) {
		post.Comments = append(post.Comments, comment)
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user": callerID, "post": postID}).Info("comment added")
	return &comment, nil
}

// mutatePost applies mutate to a fresh copy of the post and writes it back
// under the post's version, retrying on concurrent modification.
func (s *PostService) mutatePost(ctx context.Context, postID string, mutate func(*models.Post)) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return nil, err
		}
		mutate(post)

		err = s.posts.UpdatePost(ctx, post)
		switch {
		case err == nil:
			return post, nil
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.NotFound("Post not found")
		case errors.Is(err, repositories.ErrConflict) && attempt < maxUpdateAttempts:
			s.log.WithFields(logrus.Fields{"post": postID, "attempt": attempt}).Debug("post version conflict, retrying")
			continue
		default:
			return nil, apperrors.Dependency("Error on update post, please try again.", err)
		}
	}
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, apperrors.NotFound("Post not found")
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Dependency("Error loading post, please try again.", err)
	}
	return post, nil
}
