package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// RegisterCommentRoutes registers comment-related routes
func (h *PostHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:postId/comments", h.AddComment)
}

// AddComment appends the caller's comment to a post
func (h *PostHandler) AddComment(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.posts.AddComment(c.Request().Context(), callerID, c.Param("postId"), req.CommentContent); err != nil {
		return err
	}
	h.actions.RecordAction("comment", "added")

	return respond(c, http.StatusOK, "Post commented with success!", nil)
}
