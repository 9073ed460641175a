// Package revocation is the shared revocation ledger: which access token
// each live refresh token was issued with, and which access tokens have been
// revoked before their natural expiry.
//
// Entries are keyed by token id (the jti claim) and expire on their own, so
// the ledger never outgrows the set of tokens that could still be presented.
// Every backend is an external store visible to all server replicas.
package revocation

import (
	"context"
	"time"
)

// Pairing links a refresh token to the access token minted with it.
type Pairing struct {
	RefreshID       string    `cbor:"refresh_id"`
	AccessID        string    `cbor:"access_id"`
	AccessExpiresAt time.Time `cbor:"access_expires_at"`
	// ExpiresAt is the refresh token's expiry; the pairing is useless after it.
	ExpiresAt time.Time `cbor:"expires_at"`
}

type Ledger interface {
	// Record stores p until p.ExpiresAt. Recording the same refresh id again
	// overwrites the previous pairing.
	Record(ctx context.Context, p Pairing) error

	// Blacklist revokes accessID until expiresAt. Tokens already past
	// expiresAt are not stored.
	Blacklist(ctx context.Context, accessID string, expiresAt time.Time) error

	IsBlacklisted(ctx context.Context, accessID string) (bool, error)

	// DropPair atomically removes and returns the pairing of refreshID.
	// It returns nil, nil when no live pairing exists.
	DropPair(ctx context.Context, refreshID string) (*Pairing, error)
}

// Sweeper is implemented by backends whose expired entries must be removed
// explicitly.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type Option func(*options)

type options struct {
	now func() time.Time
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
