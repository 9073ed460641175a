// Package services contains the account authority's business logic:
// credential verification, refresh-token rotation, the permission gate and
// logout. AccountService is the only type the transport layer talks to.
package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/revocation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AccountService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	ledger         revocation.Ledger
	tokens         *auth.Codec
	logger         logging.Logger
	storeTimeout   time.Duration
	requestTimeout time.Duration
}

func NewAccountService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	ledger revocation.Ledger,
	tokens *auth.Codec,
	cfg *config.Config,
	logger logging.Logger,
) *AccountService {
	return &AccountService{
		db:             db,
		repomanager:    m,
		ledger:         ledger,
		tokens:         tokens,
		logger:         logger,
		storeTimeout:   cfg.StoreTimeout,
		requestTimeout: cfg.RequestTimeout,
	}
}

func (s *AccountService) accounts() accounts.Repository {
	return s.repomanager.Accounts(s.db)
}

// bounded runs fn with the per-call store timeout.
func bounded[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func (s *AccountService) blacklist(ctx context.Context, accessID string, expiresAt time.Time) error {
	_, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.ledger.Blacklist(ctx, accessID, expiresAt)
	})
	return err
}

func (s *AccountService) record(ctx context.Context, pair *auth.IssuedPair) error {
	_, err := bounded(ctx, s.storeTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.ledger.Record(ctx, pairingOf(pair))
	})
	return err
}

func (s *AccountService) dropPair(ctx context.Context, refreshID string) (*revocation.Pairing, error) {
	return bounded(ctx, s.storeTimeout, func(ctx context.Context) (*revocation.Pairing, error) {
		return s.ledger.DropPair(ctx, refreshID)
	})
}

func (s *AccountService) findActiveByID(ctx context.Context, id string) (*models.Account, error) {
	return bounded(ctx, s.storeTimeout, func(ctx context.Context) (*models.Account, error) {
		return s.accounts().FindActiveByID(ctx, id)
	})
}

func (s *AccountService) casRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	return bounded(ctx, s.storeTimeout, func(ctx context.Context) (bool, error) {
		return s.accounts().CompareAndSwapRefreshToken(ctx, id, expected, next)
	})
}

// revokeSession drops the ledger pairing of a stored refresh token and
// revokes the access token minted with it. Failures are logged only: the
// refresh token itself is invalidated by the caller through the store.
func (s *AccountService) revokeSession(ctx context.Context, accountID, refreshToken string) {
	claims, err := s.tokens.DecodeIgnoringExpiry(refreshToken, auth.KindRefresh)
	if err != nil {
		// a rotation placeholder or a token signed with a retired secret
		return
	}

	p, err := s.dropPair(ctx, claims.ID)
	if err != nil {
		s.logger.Warn(ctx, "drop session pairing failed", "account_id", accountID, "error", err)
		return
	}
	if p == nil {
		return
	}

	if err := s.blacklist(ctx, p.AccessID, p.AccessExpiresAt); err != nil {
		s.logger.Warn(ctx, "revoke session access token failed", "account_id", accountID, "error", err)
	}
}

// internal logs err against op and returns the opaque internal error.
func (s *AccountService) internal(ctx context.Context, op, accountID string, err error) error {
	s.logger.Error(ctx, "account operation failed", "op", op, "account_id", accountID, "error", err)
	return common.ErrorInternal
}

func pairingOf(pair *auth.IssuedPair) revocation.Pairing {
	return revocation.Pairing{
		RefreshID:       pair.RefreshClaims.ID,
		AccessID:        pair.AccessClaims.ID,
		AccessExpiresAt: pair.AccessClaims.ExpiresAt.Time,
		ExpiresAt:       pair.RefreshClaims.ExpiresAt.Time,
	}
}

func tokenPairOf(pair *auth.IssuedPair) *TokenPair {
	return &TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}
