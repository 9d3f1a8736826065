package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ProfileService reads and updates account profiles.
type ProfileService interface {
	Me(ctx context.Context, callerID string) (*models.Account, error)
	Profile(ctx context.Context, userID string) (*models.Account, error)
	UpdateProfile(ctx context.Context, callerID, name string, avatar *services.Upload) (*models.Account, error)
	Search(ctx context.Context, filter, cursor string) (*models.Page[models.Account], error)
}

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	profiles ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.PUT("/me", h.UpdateProfile)
	g.GET("/users/search", h.Search)
	g.GET("/users/:userId", h.GetUser)
}

// Me returns the caller's own profile
func (h *UserHandler) Me(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	account, err := h.profiles.Me(c.Request().Context(), callerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", account)
}

// GetUser returns another user's profile
func (h *UserHandler) GetUser(c echo.Context) error {
	if _, err := middleware.CallerID(c); err != nil {
		return err
	}
	account, err := h.profiles.Profile(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", account)
}

// UpdateProfile renames the caller and/or replaces their avatar
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	avatar, err := formUpload(c, "file")
	if err != nil {
		return err
	}

	account, err := h.profiles.UpdateProfile(c.Request().Context(), callerID, req.Name, avatar)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", account)
}

// Search finds users by name or email
func (h *UserHandler) Search(c echo.Context) error {
	if _, err := middleware.CallerID(c); err != nil {
		return err
	}
	page, err := h.profiles.Search(c.Request().Context(), c.QueryParam("filter"), c.QueryParam("lastKey"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}
