package services

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// FollowService maintains the directed follow relation and its counters.
type FollowService struct {
	accounts repositories.AccountRepository
	log      logrus.FieldLogger
}

func NewFollowService(accounts repositories.AccountRepository, log logrus.FieldLogger) *FollowService {
	return &FollowService{accounts: accounts, log: log}
}

// ToggleFollow makes callerID follow targetID, or unfollow it when already
// following. The caller's following set and the target's follower count are
// written in one transaction.
func (s *FollowService) ToggleFollow(ctx context.Context, callerID, targetID string) (models.FollowState, error) {
	if targetID == "" {
		return "", apperrors.InvalidTarget("User to be followed not found")
	}
	if targetID == callerID {
		return "", apperrors.InvalidTarget("Users can not follow themselves")
	}

	var state models.FollowState
	err := s.accounts.Transaction(ctx, func(tx repositories.AccountRepository) error {
		caller, target, err := loadPair(ctx, tx, callerID, targetID)
		if err != nil {
			return err
		}

		if caller.IsFollowing(targetID) {
			caller.Unfollow(targetID)
			target.FollowerCount = max(target.FollowerCount-1, 0)
			state = models.Unfollowed
		} else {
			caller.Follow(targetID)
			target.FollowerCount++
			state = models.Followed
		}

		if err := tx.UpdateAccount(ctx, caller); err != nil {
			return err
		}
		return tx.UpdateAccount(ctx, target)
	})
	if err != nil {
		return "", asAppError(err, "Error on toggle follow user, please try again.")
	}

	s.log.WithFields(logrus.Fields{
		"caller": callerID,
		"target": targetID,
		"state":  state,
	}).Info("follow toggled")
	return state, nil
}

// loadPair reads both accounts in ID order so concurrent toggles between the
// same two accounts acquire row locks in the same sequence.
func loadPair(ctx context.Context, tx repositories.AccountRepository, callerID, targetID string) (caller, target *models.Account, err error) {
	load := func(id string) (*models.Account, error) {
		if id == callerID {
			return loadAccount(ctx, tx, id, "User not found")
		}
		return loadAccount(ctx, tx, id, "User to be followed not found")
	}

	first, second := callerID, targetID
	if second < first {
		first, second = second, first
	}
	a, err := load(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := load(second)
	if err != nil {
		return nil, nil, err
	}
	if a.ID == callerID {
		return a, b, nil
	}
	return b, a, nil
}
