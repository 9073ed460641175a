package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophaccount/internal/common"
)

// API is the subset of AccountClient a Session drives.
type API interface {
	Authenticate(ctx context.Context, username, password string) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	CheckPermission(ctx context.Context, accessToken, permission string) (string, error)
	Logout(ctx context.Context, accessToken string) error
}

// Session holds the tokens of one login. It is safe for concurrent use.
type Session struct {
	api API

	mu       sync.Mutex
	username string
	tokens   *Tokens
}

func NewSession(api API) *Session {
	return &Session{api: api}
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens != nil
}

func (s *Session) snapshot() *Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	tokens, err := s.api.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.username = username
	s.tokens = tokens
	s.mu.Unlock()

	return nil
}

// Refresh rotates the refresh token. Any failure other than an outage ends
// the session locally; the old refresh token is single-use anyway.
func (s *Session) Refresh(ctx context.Context) error {
	current := s.snapshot()
	if current == nil {
		return ErrNotLoggedIn
	}

	tokens, err := s.api.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			s.forget(current)
		}
		return err
	}

	s.mu.Lock()
	if s.tokens == current {
		s.tokens = tokens
	}
	s.mu.Unlock()

	return nil
}

// Check asks whether the session holds permission, refreshing once if the
// access token has expired. It returns the subject id.
func (s *Session) Check(ctx context.Context, permission string) (string, error) {
	current := s.snapshot()
	if current == nil {
		return "", ErrNotLoggedIn
	}

	subject, err := s.api.CheckPermission(ctx, current.AccessToken, permission)
	if !errors.Is(err, common.ErrExpiredAccessToken) {
		return subject, err
	}

	if err := s.Refresh(ctx); err != nil {
		return "", err
	}

	refreshed := s.snapshot()
	if refreshed == nil {
		return "", ErrNotLoggedIn
	}
	return s.api.CheckPermission(ctx, refreshed.AccessToken, permission)
}

// Logout ends the session on the server and forgets the tokens. Tokens are
// dropped locally even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	current := s.snapshot()
	if current == nil {
		return ErrNotLoggedIn
	}

	err := s.api.Logout(ctx, current.AccessToken)
	s.forget(current)
	return err
}

func (s *Session) forget(tokens *Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == tokens {
		s.tokens = nil
		s.username = ""
	}
}
