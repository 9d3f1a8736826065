package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// FeedService serves paginated post feeds.
type FeedService interface {
	UserFeed(ctx context.Context, callerID, targetID, cursor string) (*models.Page[models.Post], error)
	HomeFeed(ctx context.Context, callerID, cursor string) (*models.Page[models.Post], error)
}

// FeedHandler handles feed HTTP requests
type FeedHandler struct {
	feeds FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feeds FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.HomeFeed)
	g.GET("/feed/user", h.UserFeed)
	g.GET("/feed/user/:userId", h.UserFeed)
}

// HomeFeed returns posts from the caller and everyone they follow
func (h *FeedHandler) HomeFeed(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	page, err := h.feeds.HomeFeed(c.Request().Context(), callerID, c.QueryParam("lastKey"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

// UserFeed returns one user's posts, the caller's when no user is given
func (h *FeedHandler) UserFeed(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	page, err := h.feeds.UserFeed(c.Request().Context(), callerID, c.Param("userId"), c.QueryParam("lastKey"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}
