package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
)

// Logout ends the session of the access token's subject. The presented
// token is revoked first, then the stored refresh token is cleared and the
// session it belonged to loses its pairing and access token.
// An expired but authentic token is accepted; repeating the call is harmless.
func (s *AccountService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.DecodeIgnoringExpiry(accessToken, auth.KindAccess)
	if err != nil {
		return common.ErrInvalidAccessToken
	}

	// the presented token is revoked even when its account is gone
	if err := s.blacklist(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return s.internal(ctx, "logout", claims.Subject, err)
	}

	acc, err := s.findActiveByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "logout", claims.Subject, err)
	}

	prev, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (*string, error) {
		return s.accounts().ClearRefreshToken(ctx, acc.ID)
	})
	if err != nil {
		return s.internal(ctx, "logout", acc.ID, err)
	}

	if prev != nil {
		s.revokeSession(ctx, acc.ID, *prev)
	}

	s.logger.Info(ctx, "logged out", "account_id", acc.ID)
	return nil
}
