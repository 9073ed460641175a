// Package cryptox holds the password hashing used by the account store.
// Hashes are bcrypt strings as kept in account.password_hash.
package cryptox

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password. A cost below
// bcrypt.MinCost selects bcrypt.DefaultCost.
func HashPassword(password []byte, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ComparePassword reports whether password matches hash. The comparison
// runs in its own goroutine so a done ctx returns ctx.Err() right away.
func ComparePassword(ctx context.Context, hash string, password []byte) error {
	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(hash), password)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DummyHash is compared against for unknown usernames, so a miss costs
// as much as a wrong password.
var DummyHash = sync.OnceValue(func() string {
	h, err := HashPassword([]byte("account-authority-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic("cryptox: dummy hash: " + err.Error())
	}
	return h
})
