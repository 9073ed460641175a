// Package auth signs and verifies the account authority's bearer tokens.
//
// Tokens are HS256 JWTs carrying the subject (account id), its permission
// names, a unique token id and the token kind. Verification is stateless:
// revocation is tracked separately by the revocation ledger.
package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the payload of every token issued by Codec.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions,omitempty"`
	Kind        Kind     `json:"kind"`
}

// HasPermission reports whether the token grants the named permission.
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}
