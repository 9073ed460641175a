// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is an active account as the authority sees it: identity,
// password hash, the permission names granted through its groups and the
// refresh token of its current session, if any.
type Account struct {
	ID           string
	UserName     string
	PasswordHash string
	Permissions  []string
	RefreshToken *string
	CreatedAt    time.Time
}
