// Package store owns the client's in-memory mirror of server state. Views
// never touch the collections directly: they read copies through accessors
// and mutate through actions, which keeps every mutation on the same
// optimistic-update/rollback contract.
package store

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/models"
	"github.com/poorman/TaskFlow/internal/session"
)

// AuthState is the session state machine.
type AuthState int

const (
	Anonymous AuthState = iota
	Authenticating
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// AuthStore tracks the current user and session state.
type AuthStore struct {
	mu      sync.RWMutex
	client  *api.Client
	session *session.Store
	state   AuthState
	user    *models.User
	subs    []func(AuthState)
}

// NewAuthStore starts anonymous; call FetchUser to resume a saved session.
func NewAuthStore(client *api.Client, sess *session.Store) *AuthStore {
	return &AuthStore{client: client, session: sess, state: Anonymous}
}

// Subscribe registers a callback invoked after every state transition.
// Callbacks run outside the store lock.
func (s *AuthStore) Subscribe(fn func(AuthState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// State returns the current session state.
func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is logged in.
func (s *AuthStore) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// User returns a copy of the current user, or nil when anonymous.
func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthStore) transition(state AuthState, user *models.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	subs := append(([]func(AuthState))(nil), s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// Login authenticates and loads the user profile. On failure the store
// reverts to anonymous and the error is returned for display.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.transition(Authenticating, nil)

	if _, err := s.client.Auth.Login(ctx, email, password); err != nil {
		s.transition(Anonymous, nil)
		return fmt.Errorf("login: %w", err)
	}
	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		s.transition(Anonymous, nil)
		return fmt.Errorf("load profile: %w", err)
	}
	s.transition(Authenticated, user)
	return nil
}

// Register creates the account then logs in with the same credentials.
// If registration succeeds but the follow-up login fails, the account exists
// and the error still surfaces; the caller may simply log in later.
func (s *AuthStore) Register(ctx context.Context, req api.RegisterRequest) error {
	s.transition(Authenticating, nil)

	if _, err := s.client.Auth.Register(ctx, req); err != nil {
		s.transition(Anonymous, nil)
		return fmt.Errorf("register: %w", err)
	}
	if _, err := s.client.Auth.Login(ctx, req.Email, req.Password); err != nil {
		s.transition(Anonymous, nil)
		return fmt.Errorf("login after register: %w", err)
	}
	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		s.transition(Anonymous, nil)
		return fmt.Errorf("load profile: %w", err)
	}
	s.transition(Authenticated, user)
	return nil
}

// FetchUser resumes a persisted session. It never returns an error: with no
// token it stays anonymous, and a stale token is cleared and treated the
// same. Callers watch State to decide whether to route to login.
func (s *AuthStore) FetchUser(ctx context.Context) {
	if s.session.Token() == "" {
		s.transition(Anonymous, nil)
		return
	}
	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		log.WithError(err).Debug("saved session is stale")
		if cerr := s.session.Clear(); cerr != nil {
			log.WithError(cerr).Warn("failed to clear stale token")
		}
		s.transition(Anonymous, nil)
		return
	}
	s.transition(Authenticated, user)
}

// Logout clears the persisted token and resets to anonymous. No network.
func (s *AuthStore) Logout() {
	if err := s.session.Clear(); err != nil {
		log.WithError(err).Warn("failed to clear session token")
	}
	s.transition(Anonymous, nil)
}

// UpdateUser patches the profile; errors pass through for the caller.
func (s *AuthStore) UpdateUser(ctx context.Context, upd models.UserUpdate) error {
	user, err := s.client.Auth.UpdateMe(ctx, upd)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// ChangePassword is a direct pass-through mutation.
func (s *AuthStore) ChangePassword(ctx context.Context, current, updated string) error {
	return s.client.Auth.ChangePassword(ctx, current, updated)
}
