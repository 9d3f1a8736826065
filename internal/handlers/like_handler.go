package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// RegisterLikeRoutes registers like-related routes
func (h *PostHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/posts/:postId/like", h.ToggleLike)
}

// ToggleLike likes the post, or removes the caller's like when present
func (h *PostHandler) ToggleLike(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	state, err := h.posts.ToggleLike(c.Request().Context(), callerID, c.Param("postId"))
	if err != nil {
		return err
	}
	h.actions.RecordAction("like", string(state))

	if state == models.Liked {
		return respond(c, http.StatusOK, "Post liked with success!", nil)
	}
	return respond(c, http.StatusOK, "Post disliked with success!", nil)
}
