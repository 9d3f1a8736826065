package router

import (
	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies are the stores and collaborators the routes are built on.
type Dependencies struct {
	Accounts repositories.AccountRepository
	Posts    repositories.PostRepository
	Blobs    blob.Store
	Identity services.IdentityProvider
	Codes    repositories.CodeRepository
	Mail     services.Mailer
	// Auth resolves the caller for every route except /api/v1/auth and health.
	Auth    echo.MiddlewareFunc
	Metrics *metrics.Collector
	Log     logrus.FieldLogger
}

// SetupMiddleware configures the validator, error handler and the global
// middleware every route shares.
func SetupMiddleware(e *echo.Echo, deps Dependencies) {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(deps.Log)
	e.Use(eMiddleware.Recover())
	e.Use(deps.Metrics.Middleware())
	deps.Log.Debug("Global middleware configured.")
}

// SetupRoutes builds the services and registers all application routes
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	log := deps.Log
	follows := services.NewFollowService(deps.Accounts, log.WithField("component", "follow"))
	posts := services.NewPostService(deps.Accounts, deps.Posts, deps.Blobs, log.WithField("component", "post"))
	feeds := services.NewFeedService(deps.Accounts, deps.Posts, deps.Blobs, log.WithField("component", "feed"))
	profiles := services.NewProfileService(deps.Accounts, deps.Blobs, deps.Identity, deps.Codes, deps.Mail, log.WithField("component", "profile"))

	// --- Unprotected routes ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(profiles, profiles).RegisterAuthRoutes(authGroup)
	log.Debug("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(deps.Auth)

	handlers.NewUserHandler(profiles).RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(posts, deps.Metrics)
	postHandler.RegisterPostRoutes(api)
	postHandler.RegisterLikeRoutes(api)
	postHandler.RegisterCommentRoutes(api)

	handlers.NewFeedHandler(feeds).RegisterFeedRoutes(api)
	handlers.NewFollowHandler(follows, deps.Metrics).RegisterFollowRoutes(api)

	log.Info("All routes configured.")
}
