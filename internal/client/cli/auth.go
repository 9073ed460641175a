package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/client/client"
	"github.com/dmitrijs2005/gophaccount/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a username and password and opens a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.session.Login(ctx, userName, string(password)); err != nil {
		a.report("Login unsuccessful", err)
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.session.Refresh(ctx); err != nil {
		a.report("Refresh unsuccessful", err)
		return err
	}

	fmt.Fprintln(a.out, "Tokens refreshed")
	return nil
}

// Check reports whether the session holds permission.
func (a *App) Check(ctx context.Context, permission string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	subject, err := a.session.Check(ctx, permission)
	if err != nil {
		a.report("Check "+permission, err)
		return err
	}

	fmt.Fprintf(a.out, "Allowed: %s (subject %s)\n", permission, subject)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.session.Logout(ctx); err != nil {
		a.report("Logout", err)
		return err
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints a short, user-facing explanation of err.
func (a *App) report(what string, err error) {
	var reason string
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		reason = "not logged in"
	case errors.Is(err, common.ErrInvalidCredentials):
		reason = "incorrect login or password"
	case errors.Is(err, client.ErrRevoked):
		reason = "session revoked, please log in again"
	case errors.Is(err, client.ErrForbidden):
		reason = "access denied"
	case errors.Is(err, client.ErrUnauthorized):
		reason = "session expired, please log in again"
	case errors.Is(err, client.ErrUnavailable):
		reason = "server unavailable"
	default:
		reason = err.Error()
	}
	fmt.Fprintf(a.out, "%s: %s\n", what, reason)
}
