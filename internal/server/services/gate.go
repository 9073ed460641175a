package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
)

// CheckPermission authorizes one request of a dependent service: the access
// token must be valid, not revoked and carry permission. It returns the
// token's subject. The only remote call is a single revocation lookup.
func (s *AccountService) CheckPermission(ctx context.Context, accessToken, permission string) (string, error) {
	claims, err := s.tokens.Decode(accessToken, auth.KindAccess)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return "", common.ErrExpiredAccessToken
		}
		return "", common.ErrInvalidAccessToken
	}

	revoked, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (bool, error) {
		return s.ledger.IsBlacklisted(ctx, claims.ID)
	})
	if err != nil {
		return "", s.internal(ctx, "check_permission", claims.Subject, err)
	}
	if revoked {
		return "", common.ErrRevoked
	}

	if !claims.HasPermission(permission) {
		return "", common.ErrForbidden
	}

	return claims.Subject, nil
}
