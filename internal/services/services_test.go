package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blob/blobtest"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories/memory"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	accounts *memory.AccountRepository
	posts    *memory.PostRepository
	blobs    *blobtest.Store
	codes    *memory.CodeRepository
	mail     *fakeMailer
	log      *logrus.Logger
	hook     *test.Hook
}

type fakeMailer struct {
	sent []models.VerificationMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg models.VerificationMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &fixture{
		accounts: memory.NewAccountRepository(),
		posts:    memory.NewPostRepository(),
		blobs:    blobtest.New(),
		codes:    memory.NewCodeRepository(),
		mail:     &fakeMailer{},
		log:      log,
		hook:     hook,
	}
}

func (f *fixture) seed(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.accounts.CreateAccount(context.Background(), &models.Account{
			ID:    id,
			Name:  "User " + id,
			Email: id + "@mail.com",
		}))
	}
}

func (f *fixture) account(t *testing.T, id string) *models.Account {
	t.Helper()
	a, err := f.accounts.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) post(t *testing.T, id string) *models.Post {
	t.Helper()
	p, err := f.posts.GetPost(context.Background(), id)
	require.NoError(t, err)
	return p
}

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}
