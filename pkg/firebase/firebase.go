package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its auth and storage clients
type App struct {
	FirebaseApp   *firebase.App
	AuthClient    *auth.Client
	StorageClient *storage.Client
}

// InitFirebase initializes the Firebase application, authentication and storage clients
func InitFirebase(ctx context.Context, credentialsPath string, log logrus.FieldLogger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	log.Info("Firebase app, auth and storage clients initialized successfully!")
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient, StorageClient: storageClient}, nil
}

// UserManager is satisfied by *auth.Client.
type UserManager interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// Identity manages login identities in Firebase Authentication.
type Identity struct {
	users UserManager
}

// NewIdentity creates a new Identity
func NewIdentity(users UserManager) *Identity {
	return &Identity{users: users}
}

// SignUp creates a Firebase user and returns its UID.
func (i *Identity) SignUp(ctx context.Context, email, password, name string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	record, err := i.users.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", apperrors.Wrap(apperrors.KindInvalidInput, "Email already registered.", err)
		}
		return "", apperrors.Dependency("Error on creating user, please try again.", err)
	}
	return record.UID, nil
}

// VerificationLink returns the Firebase email verification link for email.
func (i *Identity) VerificationLink(ctx context.Context, email string) (string, error) {
	link, err := i.users.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", identityError(err, "Error sending verification code, please try again.")
	}
	return link, nil
}

// PasswordResetLink returns the Firebase password reset link for email.
func (i *Identity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := i.users.PasswordResetLink(ctx, email)
	if err != nil {
		return "", identityError(err, "Error sending forgot password code, please try again.")
	}
	return link, nil
}

// MarkEmailVerified flags the user's email as verified.
func (i *Identity) MarkEmailVerified(ctx context.Context, email string) error {
	return i.updateByEmail(ctx, email, (&auth.UserToUpdate{}).EmailVerified(true), "Error confirming user, please try again.")
}

// SetPassword replaces the user's password.
func (i *Identity) SetPassword(ctx context.Context, email, password string) error {
	return i.updateByEmail(ctx, email, (&auth.UserToUpdate{}).Password(password), "Error changing password, please try again.")
}

func (i *Identity) updateByEmail(ctx context.Context, email string, update *auth.UserToUpdate, message string) error {
	record, err := i.users.GetUserByEmail(ctx, email)
	if err != nil {
		return identityError(err, message)
	}
	if _, err := i.users.UpdateUser(ctx, record.UID, update); err != nil {
		return identityError(err, message)
	}
	return nil
}

func identityError(err error, message string) error {
	if auth.IsUserNotFound(err) || auth.IsEmailNotFound(err) {
		return apperrors.Wrap(apperrors.KindNotFound, "User not found", err)
	}
	return apperrors.Dependency(message, err)
}
