package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
	"github.com/existflow/snipvault/internal/tokenstore"
)

// ErrEmptyToken is returned by SetToken for an empty token
var ErrEmptyToken = errors.New("empty token")

// Session owns the current user, token and authenticated flag. The token
// holder is the durable source of truth; the in-memory copy is loaded once
// at construction and afterwards only changes through SetToken and Logout.
type Session struct {
	mu     sync.RWMutex
	holder tokenstore.Holder
	state  model.Session

	listeners listeners[model.Session]
}

// NewSession creates the session store and initializes it from holder
func NewSession(holder tokenstore.Holder) *Session {
	s := &Session{holder: holder}
	s.initialize()
	return s
}

func (s *Session) initialize() {
	token, ok := s.holder.Read()
	if !ok {
		token = ""
	}
	s.state = model.Session{
		Token:           token,
		IsAuthenticated: token != "",
	}
	logger.Debug("Session initialized", logger.F("authenticated", s.state.IsAuthenticated))
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.Session {
	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		out.User = &u
	}
	return out
}

// Token returns the cached bearer token
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns the current user, or nil
func (s *Session) User() *model.UserInfo {
	return s.Snapshot().User
}

// IsAuthenticated reports whether a token is held
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// SetUser replaces the current user without validation
func (s *Session) SetUser(user model.UserInfo) {
	s.mu.Lock()
	s.state.User = &user
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.listeners.notify(snap)
}

// SetToken persists token and marks the session authenticated. It is the
// only way to become authenticated. The in-memory state is untouched when
// token is empty or cannot be persisted.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	if err := s.holder.Write(token); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.state.Token = token
	s.state.IsAuthenticated = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	logger.Info("Session authenticated")
	s.listeners.notify(snap)
	return nil
}

// Logout erases the persisted token and clears the session. It is safe to
// call when already logged out. Memory is cleared even if the holder fails,
// in which case the holder's error is returned.
func (s *Session) Logout() error {
	s.mu.Lock()
	err := s.holder.Clear()
	s.state = model.Session{}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	logger.Info("Session cleared")
	s.listeners.notify(snap)

	if err != nil {
		return fmt.Errorf("failed to erase token: %w", err)
	}
	return nil
}

// Subscribe registers fn to run after every mutation with the new state.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(model.Session)) (unsubscribe func()) {
	return s.listeners.add(fn)
}
