package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/google/uuid"
)

// rotatingPrefix marks a refresh token slot that is mid-rotation. It can
// never equal a presented token, so any concurrent rotation or replay fails
// its compare-and-swap.
const rotatingPrefix = "rotating:"

// Refresh exchanges a live refresh token for a new pair.
//
// The presented token is consumed by a compare-and-swap on the account's
// stored refresh token, so of any number of concurrent calls with the same
// token at most one succeeds. The pairing of the consumed token is dropped
// and its access token revoked before the new pair is minted with the
// account's current permissions.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken, auth.KindRefresh)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrExpiredRefreshToken
		}
		return nil, common.ErrInvalidRefreshToken
	}

	placeholder := rotatingPrefix + uuid.NewString()

	swapped, err := s.casRefreshToken(ctx, claims.Subject, refreshToken, placeholder)
	if err != nil {
		return nil, s.internal(ctx, "refresh", claims.Subject, err)
	}
	if !swapped {
		return nil, common.ErrInvalidRefreshToken
	}

	// The old token is spent; finish even if the caller goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.requestTimeout)
	defer cancel()

	return s.completeRotation(ctx, claims, placeholder)
}

func (s *AccountService) completeRotation(ctx context.Context, old *auth.Claims, placeholder string) (*TokenPair, error) {
	accountID := old.Subject

	prev, err := s.dropPair(ctx, old.ID)
	if err != nil {
		return nil, s.internal(ctx, "refresh", accountID, err)
	}
	if prev != nil {
		if err := s.blacklist(ctx, prev.AccessID, prev.AccessExpiresAt); err != nil {
			return nil, s.internal(ctx, "refresh", accountID, err)
		}
	}

	acc, err := s.findActiveByID(ctx, accountID)
	if err != nil {
		return nil, s.internal(ctx, "refresh", accountID, err)
	}

	pair, err := s.tokens.IssuePair(acc.ID, acc.Permissions)
	if err != nil {
		return nil, s.internal(ctx, "refresh", accountID, err)
	}

	if err := s.record(ctx, pair); err != nil {
		return nil, s.internal(ctx, "refresh", accountID, err)
	}

	swapped, err := s.casRefreshToken(ctx, accountID, placeholder, pair.RefreshToken)
	if err != nil {
		return nil, s.internal(ctx, "refresh", accountID, err)
	}
	if !swapped {
		// a logout cleared the slot while rotating; the new pair is never handed out
		if _, err := s.dropPair(ctx, pair.RefreshClaims.ID); err != nil {
			s.logger.Warn(ctx, "drop abandoned pairing failed", "account_id", accountID, "error", err)
		}
		if err := s.blacklist(ctx, pair.AccessClaims.ID, pair.AccessClaims.ExpiresAt.Time); err != nil {
			s.logger.Warn(ctx, "revoke abandoned access token failed", "account_id", accountID, "error", err)
		}
		return nil, common.ErrInvalidRefreshToken
	}

	s.logger.Debug(ctx, "refresh token rotated", "account_id", accountID)
	return tokenPairOf(pair), nil
}
