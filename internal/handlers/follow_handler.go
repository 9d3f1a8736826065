package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// FollowService toggles follow relations.
type FollowService interface {
	ToggleFollow(ctx context.Context, callerID, targetID string) (models.FollowState, error)
}

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	follows FollowService
	actions ActionRecorder
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows FollowService, actions ActionRecorder) *FollowHandler {
	return &FollowHandler{follows: follows, actions: actions}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PUT("/users/:followId/follow", h.ToggleFollow)
}

// ToggleFollow follows the user in the path, or unfollows when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	state, err := h.follows.ToggleFollow(c.Request().Context(), callerID, c.Param("followId"))
	if err != nil {
		return err
	}
	h.actions.RecordAction("follow", string(state))

	if state == models.Followed {
		return respond(c, http.StatusOK, "User followed", nil)
	}
	return respond(c, http.StatusOK, "User unfollowed", nil)
}
