package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/pagination"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	SearchAccounts(ctx context.Context, filter, cursor string, limit int) (*models.Page[models.Account], error)
	IncrementPostCount(ctx context.Context, id string, delta int) error
	// Transaction runs fn against a repository bound to one transaction.
	// Reads inside fn lock the rows they return until the transaction ends.
	Transaction(ctx context.Context, fn func(tx AccountRepository) error) error
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// CreateAccount creates a new account in PostgreSQL
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.FollowingIDs == nil {
		account.FollowingIDs = pq.StringArray{}
	}
	return r.db.WithContext(ctx).Create(account).Error
}

// GetAccount retrieves an account by its identity provider UID
func (r *PostgresAccountRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateAccount writes every column of an existing account
func (r *PostgresAccountRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchAccounts searches accounts by name or email (case-insensitive), ordered by ID
func (r *PostgresAccountRepository) SearchAccounts(ctx context.Context, filter, cursor string, limit int) (*models.Page[models.Account], error) {
	pattern := "%" + likeEscaper.Replace(filter) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	if c, ok := pagination.DecodeIDKey(cursor); ok {
		q = q.Where("id > ?", c.ID)
	}

	var accounts []models.Account
	if err := q.Order("id ASC").Limit(limit + 1).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return NewPage(accounts, limit, func(a models.Account) pagination.Cursor {
		return pagination.Cursor{ID: a.ID}
	})
}

// IncrementPostCount adds delta to the account's post counter in a single statement
func (r *PostgresAccountRepository) IncrementPostCount(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("post_count", gorm.Expr("GREATEST(post_count + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transaction runs fn inside a database transaction with row locking reads
func (r *PostgresAccountRepository) Transaction(ctx context.Context, fn func(tx AccountRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresAccountRepository{db: tx, forUpdate: true})
	})
}
