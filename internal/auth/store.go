// Package auth holds who the user is. The identity is always derived from the
// session token; the store never talks to storage directly.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"tasker/internal/api"
	"tasker/internal/model"
	"tasker/internal/session"
)

const (
	msgRegisterFailed = "Registration failed"
	msgLoginFailed    = "Login failed"
)

// State 认证状态
// State is the observable state of the auth store
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateError         State = "error"
)

// Client is the part of api.Client the auth store calls.
type Client interface {
	Register(ctx context.Context, user model.Credentials) error
	Login(ctx context.Context, credentials model.Credentials) (string, error)
}

type Store struct {
	client  Client
	session *session.Context
	logger  *slog.Logger

	mu   sync.Mutex
	user *model.User
	err  string
}

func NewStore(client Client, sess *session.Context, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, session: sess, logger: logger}
}

// Register creates an account. It never signs the user in.
func (s *Store) Register(ctx context.Context, creds model.Credentials) bool {
	if err := s.client.Register(ctx, creds); err != nil {
		s.setError(api.MessageOr(err, msgRegisterFailed))
		return false
	}
	s.setError("")
	return true
}

// Login exchanges credentials for a session token. On failure the prior
// identity is left as it was.
func (s *Store) Login(ctx context.Context, creds model.Credentials) bool {
	token, err := s.client.Login(ctx, creds)
	if err != nil {
		s.setError(api.MessageOr(err, msgLoginFailed))
		return false
	}
	user, err := DecodeUser(token)
	if err != nil {
		s.logger.Warn("login returned an undecodable token", "err", err)
		s.setError(msgLoginFailed)
		return false
	}
	if err := s.session.Save(token); err != nil {
		s.logger.Error("persist session token", "err", err)
		s.setError(msgLoginFailed)
		return false
	}

	s.mu.Lock()
	s.user = &user
	s.err = ""
	s.mu.Unlock()
	s.logger.Info("signed in", "user", user.ID)
	return true
}

// Logout drops the token and identity. No remote call is made.
func (s *Store) Logout() {
	if err := s.session.Clear(); err != nil {
		s.logger.Error("clear session token", "err", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Initialize rebuilds the identity from a persisted token. A token that does
// not decode is removed and the store stays anonymous.
func (s *Store) Initialize() {
	token := s.session.Token()
	if token == "" {
		return
	}
	user, err := DecodeUser(token)
	if err != nil {
		s.logger.Warn("discard stored session token", "err", err)
		if err := s.session.Discard(); err != nil {
			s.logger.Error("remove stored session token", "err", err)
		}
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

// User returns the in-memory identity.
func (s *Store) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Error returns the last failure message, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Authenticated reports an identity backed by a stored token.
func (s *Store) Authenticated() bool {
	_, ok := s.User()
	return ok && s.session.Present()
}

func (s *Store) State() State {
	if s.Error() != "" {
		return StateError
	}
	if s.Authenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}
