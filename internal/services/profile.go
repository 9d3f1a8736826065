package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/blob"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const minNameLength = 2

// IdentityProvider owns login identities and their credentials. The UID
// returned by SignUp becomes the account ID.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (string, error)
	VerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	MarkEmailVerified(ctx context.Context, email string) error
	SetPassword(ctx context.Context, email, password string) error
}

// Mailer delivers verification messages.
type Mailer interface {
	Send(ctx context.Context, msg models.VerificationMessage) error
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *Upload
}

// ProfileService manages account profiles.
type ProfileService struct {
	accounts repositories.AccountRepository
	blobs    blob.Store
	identity IdentityProvider
	codes    repositories.CodeRepository
	mail     Mailer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewProfileService(accounts repositories.AccountRepository, blobs blob.Store, identity IdentityProvider, codes repositories.CodeRepository, mail Mailer, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{accounts: accounts, blobs: blobs, identity: identity, codes: codes, mail: mail, log: log, now: time.Now}
}

// Register creates the login identity, stores the optional avatar and writes
// a new account with zeroed counters. A verification code is then mailed; if
// that fails the account still stands and the code can be re-sent.
func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if len(name) < minNameLength {
		return nil, apperrors.InvalidInput("Invalid name.")
	}
	if !validators.IsValidEmail(email) {
		return nil, apperrors.InvalidInput("Invalid email.")
	}
	if !validators.IsValidPassword(in.Password) {
		return nil, apperrors.InvalidInput("Invalid password.")
	}
	if in.Avatar != nil && !blob.IsAllowedImage(in.Avatar.Filename) {
		return nil, apperrors.InvalidImage("Invalid image extension.")
	}

	uid, err := s.identity.SignUp(ctx, email, in.Password, name)
	if err != nil {
		return nil, asAppError(err, "Error on sign up, please try again.")
	}

	avatar, err := storeImage(ctx, s.blobs, blob.ClassAvatar, in.Avatar)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uid,
		Name:         name,
		Email:        email,
		Avatar:       avatar,
		FollowingIDs: pq.StringArray{},
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, apperrors.Dependency("Error on create user, please try again.", err)
	}

	s.log.WithField("user", uid).Info("account registered")
	if err := s.issueCode(ctx, models.PurposeVerifyEmail, email, s.identity.VerificationLink); err != nil {
		s.log.WithError(err).WithField("user", uid).Warn("verification code not sent")
	}
	if err := resolveAvatar(ctx, s.blobs, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Me returns the caller's own account.
func (s *ProfileService) Me(ctx context.Context, callerID string) (*models.Account, error) {
	return s.Profile(ctx, callerID)
}

// Profile returns the account for userID with its avatar resolved.
func (s *ProfileService) Profile(ctx context.Context, userID string) (*models.Account, error) {
	account, err := loadAccount(ctx, s.accounts, userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := resolveAvatar(ctx, s.blobs, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateProfile renames the caller and/or replaces their avatar. Empty name
// and nil avatar leave the respective field unchanged.
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID, name string, avatar *Upload) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name != "" && len(name) < minNameLength {
		return nil, apperrors.InvalidInput("Invalid name.")
	}
	if _, err := loadAccount(ctx, s.accounts, callerID, "User not found"); err != nil {
		return nil, err
	}

	key, err := storeImage(ctx, s.blobs, blob.ClassAvatar, avatar)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = s.accounts.Transaction(ctx, func(tx repositories.AccountRepository) error {
		current, err := loadAccount(ctx, tx, callerID, "User not found")
		if err != nil {
			return err
		}
		if name != "" {
			current.Name = name
		}
		if key != "" {
			current.Avatar = key
		}
		if err := tx.UpdateAccount(ctx, current); err != nil {
			return err
		}
		account = current
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Error on update user, please try again.")
	}

	s.log.WithField("user", callerID).Info("profile updated")
	if err := resolveAvatar(ctx, s.blobs, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Search returns one page of accounts whose name or email contains filter.
func (s *ProfileService) Search(ctx context.Context, filter, cursor string) (*models.Page[models.Account], error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, apperrors.InvalidInput("Search filter is required")
	}

	page, err := s.accounts.SearchAccounts(ctx, filter, cursor, SearchPageSize)
	if err != nil {
		return nil, apperrors.Dependency("Error on search users, please try again.", err)
	}
	for i := range page.Data {
		if err := resolveAvatar(ctx, s.blobs, &page.Data[i]); err != nil {
			return nil, err
		}
	}
	return page, nil
}
