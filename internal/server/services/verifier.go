package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/cryptox"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

// VerifyCredentials returns the active account matching username and
// password. It fails with common.ErrorNotFound for an unknown or inactive
// username and common.ErrInvalidCredentials for a wrong password.
func (s *AccountService) VerifyCredentials(ctx context.Context, username, password string) (*models.Account, error) {
	acc, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (*models.Account, error) {
		return s.accounts().FindActiveByUsername(ctx, username)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.comparePassword(ctx, cryptox.DummyHash(), password)
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "authenticate", "", err)
	}

	if err := s.comparePassword(ctx, acc.PasswordHash, password); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, s.internal(ctx, "authenticate", acc.ID, err)
		}
		return nil, common.ErrInvalidCredentials
	}

	return acc, nil
}

// comparePassword runs the bcrypt comparison under the store timeout.
func (s *AccountService) comparePassword(ctx context.Context, hash, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return cryptox.ComparePassword(ctx, hash, []byte(password))
}

// Authenticate verifies credentials and opens a new session. The new refresh
// token replaces any previous one, and the previous session's access token
// is revoked.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*TokenPair, error) {
	acc, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(acc.ID, acc.Permissions)
	if err != nil {
		return nil, s.internal(ctx, "authenticate", acc.ID, err)
	}

	if err := s.record(ctx, pair); err != nil {
		return nil, s.internal(ctx, "authenticate", acc.ID, err)
	}

	prev, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (*string, error) {
		return s.accounts().ReplaceRefreshToken(ctx, acc.ID, pair.RefreshToken)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "authenticate", acc.ID, err)
	}

	if prev != nil {
		s.revokeSession(ctx, acc.ID, *prev)
	}

	s.logger.Info(ctx, "authenticated", "account_id", acc.ID)
	return tokenPairOf(pair), nil
}
