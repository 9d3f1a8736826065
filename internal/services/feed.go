package services

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// FeedService assembles paginated, newest-first views of posts.
type FeedService struct {
	accounts repositories.AccountRepository
	posts    repositories.PostRepository
	blobs    blob.Store
	log      logrus.FieldLogger
}

func NewFeedService(accounts repositories.AccountRepository, posts repositories.PostRepository, blobs blob.Store, log logrus.FieldLogger) *FeedService {
	return &FeedService{accounts: accounts, posts: posts, blobs: blobs, log: log}
}

// UserFeed returns one page of targetID's posts. An empty targetID means the
// caller's own posts.
func (s *FeedService) UserFeed(ctx context.Context, callerID, targetID, cursor string) (*models.Page[models.Post], error) {
	if targetID == "" {
		targetID = callerID
	}
	if _, err := loadAccount(ctx, s.accounts, targetID, "User not found"); err != nil {
		return nil, err
	}

	page, err := s.posts.GetPostsByUserID(ctx, targetID, cursor, FeedPageSize)
	if err != nil {
		return nil, apperrors.Dependency("Error loading feed, please try again.", err)
	}
	if err := resolvePostImages(ctx, s.blobs, page.Data); err != nil {
		return nil, err
	}
	return page, nil
}

// HomeFeed returns one page of posts written by the caller or anyone the
// caller follows, merged newest first.
func (s *FeedService) HomeFeed(ctx context.Context, callerID, cursor string) (*models.Page[models.Post], error) {
	caller, err := loadAccount(ctx, s.accounts, callerID, "User not found")
	if err != nil {
		return nil, err
	}

	authors := feedAuthors(caller)
	page, err := s.posts.GetPostsByUserIDs(ctx, authors, cursor, FeedPageSize)
	if err != nil {
		return nil, apperrors.Dependency("Error loading feed, please try again.", err)
	}
	if err := resolvePostImages(ctx, s.blobs, page.Data); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user": callerID, "authors": len(authors), "count": page.Count}).Debug("home feed served")
	return page, nil
}

func feedAuthors(caller *models.Account) []string {
	seen := map[string]bool{caller.ID: true}
	authors := []string{caller.ID}
	for _, id := range caller.FollowingIDs {
		if !seen[id] {
			seen[id] = true
			authors = append(authors, id)
		}
	}
	return authors
}
