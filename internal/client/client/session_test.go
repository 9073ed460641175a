package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	refreshCalls int
	checkCalls   int
	logoutCalls  int

	authErr    error
	refreshErr error
	logoutErr  error

	// access tokens CheckPermission rejects as expired
	expired map[string]bool
}

func (f *fakeAPI) Authenticate(ctx context.Context, username, password string) (*Tokens, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &Tokens{AccessToken: "A1", RefreshToken: "R1"}, nil
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	n := f.refreshCalls + 1
	return &Tokens{AccessToken: fmt.Sprintf("A%d", n), RefreshToken: fmt.Sprintf("R%d", n)}, nil
}

func (f *fakeAPI) CheckPermission(ctx context.Context, accessToken, permission string) (string, error) {
	f.checkCalls++
	if f.expired[accessToken] {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, common.ErrExpiredAccessToken)
	}
	return "subject-" + accessToken, nil
}

func (f *fakeAPI) Logout(ctx context.Context, accessToken string) error {
	f.logoutCalls++
	return f.logoutErr
}

func TestSession_LoginCheckLogout(t *testing.T) {
	api := &fakeAPI{}
	s := NewSession(api)
	ctx := context.Background()

	require.False(t, s.LoggedIn())
	_, err := s.Check(ctx, "read_account")
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, s.Login(ctx, "alice", "pw"))
	require.True(t, s.LoggedIn())
	require.Equal(t, "alice", s.Username())

	subject, err := s.Check(ctx, "read_account")
	require.NoError(t, err)
	require.Equal(t, "subject-A1", subject)

	require.NoError(t, s.Logout(ctx))
	require.False(t, s.LoggedIn())
	require.Empty(t, s.Username())
	require.ErrorIs(t, s.Logout(ctx), ErrNotLoggedIn)
}

func TestSession_CheckRefreshesExpiredAccessToken(t *testing.T) {
	api := &fakeAPI{expired: map[string]bool{"A1": true}}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "pw"))

	subject, err := s.Check(ctx, "read_account")
	require.NoError(t, err)
	require.Equal(t, "subject-A2", subject)
	require.Equal(t, 1, api.refreshCalls)
	require.Equal(t, 2, api.checkCalls)
}

func TestSession_FailedRefreshEndsSession(t *testing.T) {
	api := &fakeAPI{refreshErr: fmt.Errorf("%w: %w", ErrUnauthorized, common.ErrInvalidRefreshToken)}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "pw"))
	require.ErrorIs(t, s.Refresh(ctx), ErrUnauthorized)
	require.False(t, s.LoggedIn())
}

func TestSession_OutageKeepsSession(t *testing.T) {
	api := &fakeAPI{refreshErr: ErrUnavailable}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "pw"))
	require.ErrorIs(t, s.Refresh(ctx), ErrUnavailable)
	require.True(t, s.LoggedIn())
}

func TestSession_LogoutForgetsTokensOnServerError(t *testing.T) {
	api := &fakeAPI{logoutErr: ErrInternal}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "pw"))
	require.ErrorIs(t, s.Logout(ctx), ErrInternal)
	require.False(t, s.LoggedIn())
	require.Equal(t, 1, api.logoutCalls)
}

func TestSession_LoginFailureKeepsLoggedOut(t *testing.T) {
	api := &fakeAPI{authErr: ErrUnauthorized}
	s := NewSession(api)

	require.ErrorIs(t, s.Login(context.Background(), "alice", "bad"), ErrUnauthorized)
	require.False(t, s.LoggedIn())
}
