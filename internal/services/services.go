// Package services holds the social graph, post interaction, feed and
// profile operations. Services are stateless; every record they touch lives
// in the repositories they are given.
package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

const (
	// FeedPageSize is the fixed number of posts per feed page.
	FeedPageSize = 15
	// SearchPageSize is the fixed number of accounts per search page.
	SearchPageSize = 15

	maxUpdateAttempts = 3
)

// Upload is an image received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

func loadAccount(ctx context.Context, repo repositories.AccountRepository, id, notFound string) (*models.Account, error) {
	if id == "" {
		return nil, apperrors.NotFound(notFound)
	}
	account, err := repo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(notFound)
		}
		return nil, apperrors.Dependency("Error loading user, please try again.", err)
	}
	return account, nil
}

// asAppError keeps classified errors and wraps anything else as a dependency failure.
func asAppError(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Dependency(message, err)
}

// resolvePostImages replaces stored image keys with retrieval URLs on the
// in-memory copies. Posts without an image are left untouched.
func resolvePostImages(ctx context.Context, blobs blob.Store, posts []models.Post) error {
	for i := range posts {
		if posts[i].Image == "" {
			continue
		}
		url, err := blobs.ResolveURL(ctx, blob.ClassPost, posts[i].Image)
		if err != nil {
			return apperrors.Dependency("Error resolving post image, please try again.", err)
		}
		posts[i].Image = url
	}
	return nil
}

func resolveAvatar(ctx context.Context, blobs blob.Store, account *models.Account) error {
	if account.Avatar == "" {
		return nil
	}
	url, err := blobs.ResolveURL(ctx, blob.ClassAvatar, account.Avatar)
	if err != nil {
		return apperrors.Dependency("Error resolving avatar, please try again.", err)
	}
	account.Avatar = url
	return nil
}

// storeImage validates the upload's extension and persists it under class.
// A nil upload stores nothing and returns an empty key.
func storeImage(ctx context.Context, blobs blob.Store, class string, upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	if !blob.IsAllowedImage(upload.Filename) {
		return "", apperrors.InvalidImage("Invalid image extension.")
	}
	key, err := blobs.Store(ctx, class, upload.Data, upload.Filename)
	if err != nil {
		return "", apperrors.Dependency("Error saving image, please try again.", err)
	}
	return key, nil
}
