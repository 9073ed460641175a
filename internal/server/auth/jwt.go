package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec mints and verifies tokens with a single shared secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now, both for minting and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) *Codec {
	c := &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a new token of the given kind for subject.
func (c *Codec) Issue(subject string, permissions []string, kind Kind) (string, *Claims, error) {
	return c.issueAt(c.now(), subject, permissions, kind)
}

func (c *Codec) issueAt(now time.Time, subject string, permissions []string, kind Kind) (string, *Claims, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
		Permissions: permissions,
		Kind:        kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

// Decode verifies signature, algorithm, expiry and kind.
// It returns common.ErrTokenExpired only for tokens whose signature is valid.
func (c *Codec) Decode(token string, kind Kind) (*Claims, error) {
	return c.decode(token, kind,
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
}

// DecodeIgnoringExpiry verifies signature, algorithm and kind but accepts
// tokens past their expiry.
func (c *Codec) DecodeIgnoringExpiry(token string, kind Kind) (*Claims, error) {
	return c.decode(token, kind, jwt.WithoutClaimsValidation())
}

func (c *Codec) decode(token string, kind Kind, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !parsed.Valid || claims.Kind != kind || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
