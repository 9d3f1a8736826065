package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepositoryReturnsCopies(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateAccount(ctx, &models.Account{ID: "ana", FollowingIDs: []string{"bob"}}))

	a, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	a.FollowingIDs[0] = "mallory"

	again, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "bob", again.FollowingIDs[0])

	_, err = repo.GetAccount(ctx, "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAccountRepositoryTransactionRollback(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateAccount(ctx, &models.Account{ID: "ana", Name: "Ana"}))
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx repositories.AccountRepository) error {
		a, err := tx.GetAccount(ctx, "ana")
		require.NoError(t, err)
		a.Name = "Changed"
		require.NoError(t, tx.UpdateAccount(ctx, a))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", a.Name)
}

func TestIncrementPostCountFloorsAtZero(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateAccount(ctx, &models.Account{ID: "ana"}))

	require.NoError(t, repo.IncrementPostCount(ctx, "ana", -1))
	a, err := repo.GetAccount(ctx, "ana")
	require.NoError(t, err)
	assert.Zero(t, a.PostCount)
	assert.ErrorIs(t, repo.IncrementPostCount(ctx, "ghost", 1), repositories.ErrNotFound)
}

func TestPostRepositoryVersionCheck(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreatePost(ctx, &models.Post{ID: "p1"}))

	first, err := repo.GetPost(ctx, "p1")
	require.NoError(t, err)
	stale, err := repo.GetPost(ctx, "p1")
	require.NoError(t, err)

	first.Likes = append(first.Likes, "ana")
	require.NoError(t, repo.UpdatePost(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	stale.Likes = append(stale.Likes, "bob")
	assert.ErrorIs(t, repo.UpdatePost(ctx, stale), repositories.ErrConflict)
	assert.ErrorIs(t, repo.UpdatePost(ctx, &models.Post{ID: "missing"}), repositories.ErrNotFound)
}

func TestPostRepositoryOrdersByDateThenID(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		date := base.Add(time.Duration(i/2) * time.Minute)
		require.NoError(t, repo.CreatePost(ctx, &models.Post{ID: id, UserID: "ana", Date: date}))
	}
	require.NoError(t, repo.CreatePost(ctx, &models.Post{ID: "z", UserID: "other", Date: base}))

	var got []string
	cursor := ""
	for {
		page, err := repo.GetPostsByUserID(ctx, "ana", cursor, 1)
		require.NoError(t, err)
		for _, p := range page.Data {
			got = append(got, p.ID)
		}
		if page.LastKey == "" {
			break
		}
		cursor = page.LastKey
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, got, fmt.Sprint(got))
}

func TestCodeRepositoryConsumesOnce(t *testing.T) {
	repo := NewCodeRepository()
	ctx := context.Background()
	require.NoError(t, repo.SaveCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", "123456", time.Minute))

	ok, err := repo.ConsumeCode(ctx, models.PurposeResetPassword, "ana@mail.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumeCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeRepositoryDropsCodeAfterWrongGuesses(t *testing.T) {
	repo := NewCodeRepository()
	ctx := context.Background()
	require.NoError(t, repo.SaveCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", "123456", time.Minute))

	for i := 0; i < repositories.MaxCodeAttempts; i++ {
		ok, err := repo.ConsumeCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", fmt.Sprintf("00000%d", i))
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := repo.ConsumeCode(ctx, models.PurposeVerifyEmail, "ana@mail.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeRepositoryExpires(t *testing.T) {
	repo := NewCodeRepository()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, repo.SaveCode(ctx, models.PurposeResetPassword, "ana@mail.com", "654321", time.Minute))

	now = now.Add(time.Minute)
	ok, err := repo.ConsumeCode(ctx, models.PurposeResetPassword, "ana@mail.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)
}
