// Package client is the Go client of the account authority.
//
// AccountClient wraps the gRPC AccountService and turns the response codes
// carried in every reply into sentinel errors (ErrUnauthorized, ErrForbidden,
// ErrRevoked, ErrNotFound, ErrInternal, ErrUnavailable). Where the server
// names a precise reason, the matching internal/common error is wrapped as
// well, so both
//
//	errors.Is(err, client.ErrUnauthorized)
//	errors.Is(err, common.ErrExpiredAccessToken)
//
// hold for an expired access token.
//
// Session keeps one login's token pair and refreshes the access token once
// when a call reports it expired.
package client
