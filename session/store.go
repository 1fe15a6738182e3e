// Package session owns the user's identity and bearer token. The token is
// the only client state that survives restarts; it lives in a small JSON
// file under the user config dir. The store is the single writer of the
// token, while the HTTP gateway reads it on every request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"postpilot/api"
	"postpilot/types"
)

// ErrNotAuthenticated is returned by Restore when no stored token exists.
var ErrNotAuthenticated = errors.New("not authenticated")

// Backend is the slice of the API surface the store needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Signup(ctx context.Context, name, email, password string, preferences []string) error
	CurrentUser(ctx context.Context) (*types.User, error)
}

// tokenFile is the on-disk shape. "token" matches the storage key the web
// client used, so a backend inspecting either sees the same vocabulary.
type tokenFile struct {
	Token string `json:"token"`
}

// Store holds the current session.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	path    string
	token   string
	user    *types.User
	log     zerolog.Logger
}

// NewStore creates a session store persisting its token at path.
func NewStore(backend Backend, path string, log zerolog.Logger) *Store {
	return &Store{backend: backend, path: path, log: log}
}

// Token implements api.TokenSource. Empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Current returns the logged-in user, or nil.
func (s *Store) Current() *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Login authenticates against the backend and persists the token.
func (s *Store) Login(ctx context.Context, email, password string) (*types.User, error) {
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = resp.User
	s.mu.Unlock()

	if err := s.saveToken(resp.AccessToken); err != nil {
		// The session is still usable for this run.
		s.log.Warn().Err(err).Msg("failed to persist token")
	}

	if resp.User == nil {
		user, err := s.backend.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
		return user, nil
	}
	return resp.User, nil
}

// Register creates an account and chains straight into Login, so a fresh
// signup lands in an authenticated session without a second form.
func (s *Store) Register(ctx context.Context, name, email, password string, preferences []string) (*types.User, error) {
	if err := s.backend.Signup(ctx, name, email, password, preferences); err != nil {
		return nil, err
	}
	return s.Login(ctx, email, password)
}

// Restore loads a persisted token and validates it against /auth/me.
// A rejected or missing token leaves the store logged out.
func (s *Store) Restore(ctx context.Context) (*types.User, error) {
	token, err := s.loadToken()
	if err != nil || token == "" {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.Invalidate()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Logout clears the session synchronously, including the persisted token.
func (s *Store) Logout() {
	s.Invalidate()
}

// Invalidate drops the in-memory session and the stored token. It is also
// the gateway's 401 hook, so any backend call can force a logout.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Msg("failed to remove token file")
	}
}

func (s *Store) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	data, err := json.Marshal(tokenFile{Token: token})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *Store) loadToken() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("failed to parse token file: %w", err)
	}
	return tf.Token, nil
}
