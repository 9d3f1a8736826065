package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostService creates posts and applies interactions to them.
type PostService interface {
	CreatePost(ctx context.Context, callerID, description string, image *services.Upload) (*models.Post, error)
	ToggleLike(ctx context.Context, callerID, postID string) (models.LikeState, error)
	AddComment(ctx context.Context, callerID, postID, content string) (*models.Comment, error)
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts   PostService
	actions ActionRecorder
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostService, actions ActionRecorder) *PostHandler {
	return &PostHandler{posts: posts, actions: actions}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
}

// CreatePost publishes a post from a multipart form with an optional image
func (h *PostHandler) CreatePost(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := formUpload(c, "file")
	if err != nil {
		return err
	}

	if _, err := h.posts.CreatePost(c.Request().Context(), callerID, req.Description, image); err != nil {
		return err
	}
	h.actions.RecordAction("post", "created")

	return respond(c, http.StatusOK, "Post sent with success!", nil)
}
