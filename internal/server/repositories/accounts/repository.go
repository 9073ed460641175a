// Package accounts is the credential store: active accounts, their
// group-derived permissions and the refresh token of their current session.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

type Repository interface {
	// FindActiveByUsername and FindActiveByID return common.ErrorNotFound
	// when no active account matches.
	FindActiveByUsername(ctx context.Context, username string) (*models.Account, error)
	FindActiveByID(ctx context.Context, id string) (*models.Account, error)

	// CompareAndSwapRefreshToken stores next only if the current value equals
	// expected, and reports whether it did.
	CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)

	// ReplaceRefreshToken stores next unconditionally and returns the value
	// it replaced (nil when there was none).
	ReplaceRefreshToken(ctx context.Context, id, next string) (*string, error)

	// ClearRefreshToken removes the stored refresh token and returns the value
	// it removed (nil when there was none).
	ClearRefreshToken(ctx context.Context, id string) (*string, error)
}
