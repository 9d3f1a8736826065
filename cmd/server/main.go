package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/mail"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/repositories/memory"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log.Component("database"))
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := db.Postgres.AutoMigrate(&models.Account{}); err != nil {
		return fmt.Errorf("auto migrate accounts: %w", err)
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log.Component("firebase"))
	if err != nil {
		return fmt.Errorf("initialize firebase: %w", err)
	}

	posts, err := newPostRepository(ctx, cfg, db)
	if err != nil {
		return err
	}
	blobs, err := newBlobStore(cfg, firebaseApp, db, log)
	if err != nil {
		return err
	}

	codes, mailer := newCredentialStores(cfg, db, log)

	deps := router.Dependencies{
		Accounts: repositories.NewPostgresAccountRepository(db.Postgres),
		Posts:    posts,
		Blobs:    blobs,
		Identity: firebase.NewIdentity(firebaseApp.AuthClient),
		Codes:    codes,
		Mail:     mailer,
		Auth:     authMiddleware(cfg, firebaseApp),
		Metrics:  metrics.NewCollector(""),
		Log:      log.Component("api"),
	}

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg, log.Component("http"))
	router.SetupMiddleware(e, deps)
	router.SetupRoutes(e, deps)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newPostRepository(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.PostRepository, error) {
	if strings.EqualFold(cfg.PostStore, config.PostStorePostgres) {
		repo := repositories.NewPgPostRepository(db.PgPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func newBlobStore(cfg *config.Config, app *firebase.App, db *config.DB, log *logger.Logger) (blob.Store, error) {
	store, err := blob.NewFirebaseStore(app.StorageClient, map[string]string{
		blob.ClassAvatar: cfg.AvatarBucket,
		blob.ClassPost:   cfg.PostBucket,
	}, cfg.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("initialize blob store: %w", err)
	}
	if db.Redis == nil {
		return store, nil
	}
	// Cached URLs expire well before their signature does.
	return blob.NewCachedStore(store, blob.NewRedisURLCache(db.Redis), store.URLTTL()/2, log.Component("blob")), nil
}

// newCredentialStores keeps verification codes and outgoing mail in Redis.
// Without Redis, codes live in process and messages go to the log.
func newCredentialStores(cfg *config.Config, db *config.DB, log *logger.Logger) (repositories.CodeRepository, services.Mailer) {
	if db.Redis != nil {
		return repositories.NewRedisCodeRepository(db.Redis), mail.NewRedisOutbox(db.Redis, cfg.MailOutboxKey)
	}
	log.Warn("REDIS_URL not set: verification codes are kept in process and mailed to the log")
	return memory.NewCodeRepository(), mail.NewLogMailer(log.Component("mail"))
}

func authMiddleware(cfg *config.Config, app *firebase.App) echo.MiddlewareFunc {
	if strings.EqualFold(cfg.AuthProvider, config.AuthProviderJWT) {
		return middleware.JWTAuthMiddleware([]byte(cfg.JWTSecret))
	}
	return middleware.FirebaseAuthMiddleware(app.AuthClient)
}
