// Package memory provides in-process implementations of the repository
// interfaces with the same concurrency contract as the database-backed ones.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/pagination"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/lib/pq"
)

// AccountRepository is a map-backed repositories.AccountRepository.
type AccountRepository struct {
	mu       *sync.Mutex
	accounts map[string]models.Account
	inTx     bool

	// OnUpdate, when set, runs before every UpdateAccount and aborts it on error.
	OnUpdate func(*models.Account) error
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{mu: &sync.Mutex{}, accounts: make(map[string]models.Account)}
}

func (r *AccountRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func cloneAccount(a models.Account) models.Account {
	a.FollowingIDs = append(pq.StringArray{}, a.FollowingIDs...)
	return a
}

// CreateAccount stores a copy of account
func (r *AccountRepository) CreateAccount(_ context.Context, account *models.Account) error {
	defer r.lock()()
	if account.FollowingIDs == nil {
		account.FollowingIDs = pq.StringArray{}
	}
	r.accounts[account.ID] = cloneAccount(*account)
	return nil
}

// GetAccount retrieves an account by ID
func (r *AccountRepository) GetAccount(_ context.Context, id string) (*models.Account, error) {
	defer r.lock()()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	a = cloneAccount(a)
	return &a, nil
}

// UpdateAccount replaces a stored account
func (r *AccountRepository) UpdateAccount(_ context.Context, account *models.Account) error {
	defer r.lock()()
	if r.OnUpdate != nil {
		if err := r.OnUpdate(account); err != nil {
			return err
		}
	}
	if _, ok := r.accounts[account.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.accounts[account.ID] = cloneAccount(*account)
	return nil
}

// SearchAccounts matches filter against names and emails, ordered by ID
func (r *AccountRepository) SearchAccounts(_ context.Context, filter, cursor string, limit int) (*models.Page[models.Account], error) {
	defer r.lock()()
	needle := strings.ToLower(filter)
	var after string
	if c, ok := pagination.DecodeIDKey(cursor); ok {
		after = c.ID
	}

	var matches []models.Account
	for _, a := range r.accounts {
		if a.ID <= after {
			continue
		}
		if strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.Email), needle) {
			matches = append(matches, cloneAccount(a))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > limit+1 {
		matches = matches[:limit+1]
	}
	return repositories.NewPage(matches, limit, func(a models.Account) pagination.Cursor {
		return pagination.Cursor{ID: a.ID}
	})
}

// IncrementPostCount adds delta to an account's post count, flooring at zero
func (r *AccountRepository) IncrementPostCount(_ context.Context, id string, delta int) error {
	defer r.lock()()
	a, ok := r.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.PostCount = max(a.PostCount+delta, 0)
	r.accounts[id] = a
	return nil
}

// Transaction holds the repository lock for the duration of fn and restores
// the previous state when fn fails.
func (r *AccountRepository) Transaction(ctx context.Context, fn func(tx repositories.AccountRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]models.Account, len(r.accounts))
	for k, v := range r.accounts {
		snapshot[k] = cloneAccount(v)
	}
	tx := &AccountRepository{mu: r.mu, accounts: r.accounts, inTx: true, OnUpdate: r.OnUpdate}
	if err := fn(tx); err != nil {
		for k := range r.accounts {
			delete(r.accounts, k)
		}
		for k, v := range snapshot {
			r.accounts[k] = v
		}
		return err
	}
	return nil
}

// PostRepository is a map-backed repositories.PostRepository.
type PostRepository struct {
	mu    sync.Mutex
	posts map[string]models.Post

	// OnUpdate, when set, runs before every UpdatePost and aborts it on error.
	OnUpdate func(*models.Post) error
}

// NewPostRepository creates a new PostRepository
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]models.Post)}
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]string{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

// CreatePost stores a copy of post
func (r *PostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = clonePost(*post)
	return nil
}

// GetPost retrieves a post by ID
func (r *PostRepository) GetPost(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

// UpdatePost replaces a stored post if its version still matches
func (r *PostRepository) UpdatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OnUpdate != nil {
		if err := r.OnUpdate(post); err != nil {
			return err
		}
	}
	stored, ok := r.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Version != post.Version {
		return repositories.ErrConflict
	}
	post.Version++
	r.posts[post.ID] = clonePost(*post)
	return nil
}

// GetPostsByUserID retrieves one page of a user's posts
func (r *PostRepository) GetPostsByUserID(ctx context.Context, userID, cursor string, limit int) (*models.Page[models.Post], error) {
	return r.GetPostsByUserIDs(ctx, []string{userID}, cursor, limit)
}

// GetPostsByUserIDs retrieves one page of posts owned by any of userIDs
func (r *PostRepository) GetPostsByUserIDs(_ context.Context, userIDs []string, cursor string, limit int) (*models.Page[models.Post], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owners := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		owners[id] = true
	}
	c, hasCursor := pagination.DecodeTimeKey(cursor)

	var posts []models.Post
	for _, p := range r.posts {
		if !owners[p.UserID] {
			continue
		}
		if hasCursor && !olderThan(p, c) {
			continue
		}
		posts = append(posts, clonePost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		return olderThan(posts[j], pagination.Cursor{Date: posts[i].Date, ID: posts[i].ID})
	})
	if len(posts) > limit+1 {
		posts = posts[:limit+1]
	}
	return repositories.NewPage(posts, limit, func(p models.Post) pagination.Cursor {
		return pagination.Cursor{Date: p.Date, ID: p.ID}
	})
}

// olderThan reports whether p sorts after c in (date desc, id desc) order.
func olderThan(p models.Post, c pagination.Cursor) bool {
	if !p.Date.Equal(c.Date) {
		return p.Date.Before(c.Date)
	}
	return p.ID < c.ID
}

type storedCode struct {
	code     string
	expires  time.Time
	attempts int
}

// CodeRepository is a map-backed repositories.CodeRepository.
type CodeRepository struct {
	mu    sync.Mutex
	codes map[string]*storedCode
	now   func() time.Time
}

// NewCodeRepository creates a new CodeRepository
func NewCodeRepository() *CodeRepository {
	return &CodeRepository{codes: make(map[string]*storedCode), now: time.Now}
}

// SaveCode stores code for ttl, replacing any earlier one
func (r *CodeRepository) SaveCode(_ context.Context, purpose, email, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[purpose+":"+email] = &storedCode{code: code, expires: r.now().Add(ttl)}
	return nil
}

// ConsumeCode reports whether code matches and deletes it on a match
func (r *CodeRepository) ConsumeCode(_ context.Context, purpose, email, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := purpose + ":" + email
	stored, ok := r.codes[key]
	if !ok || !r.now().Before(stored.expires) {
		delete(r.codes, key)
		return false, nil
	}
	if stored.code == code {
		delete(r.codes, key)
		return true, nil
	}
	stored.attempts++
	if stored.attempts >= repositories.MaxCodeAttempts {
		delete(r.codes, key)
	}
	return false, nil
}

// Code returns the live code for purpose and email.
func (r *CodeRepository) Code(purpose, email string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[purpose+":"+email]
	if !ok {
		return "", false
	}
	return stored.code, true
}
