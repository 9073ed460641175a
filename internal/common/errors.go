// Package common defines shared constants and sentinel errors used across
// client and server layers of gophaccount. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Codec-level errors: the signature (or shape) is bad, or the signature
	// is good and the token is past its expiry.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Account authority error kinds. Each one maps to exactly one response code.
	ErrInvalidCredentials  = errors.New("incorrect login or password")
	ErrExpiredAccessToken  = errors.New("access token expired")
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRevoked             = errors.New("access token revoked")
	ErrForbidden           = errors.New("access denied")
)
