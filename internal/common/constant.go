// Package common contains shared constants and sentinel errors used across
// gophaccount components.
package common

// AccessTokenHeaderName is the gRPC metadata key used by dependent services
// to carry the caller's access token.
const AccessTokenHeaderName = "access_token"
