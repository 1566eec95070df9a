// Package session keeps the admin session: the authenticated identity and
// its bearer token, persisted in durable storage so it survives restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/logger"
)

// Keys under which the session is persisted.
const (
	TokenKey = "adminToken"
	UserKey  = "adminUser"
)

// State of the session.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Verifier checks a persisted token with the backend.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// APIVerifier calls GET /api/auth/verify with the token.
type APIVerifier struct {
	Client *apiclient.Client
}

// Verify returns nil when the backend accepts token.
func (v APIVerifier) Verify(ctx context.Context, token string) error {
	_, err := v.Client.Request(ctx, "/api/auth/verify", apiclient.RequestOptions{BearerToken: token})
	return err
}

// Info is a read-only view of the session.
type Info struct {
	State     string          `json:"state"`
	User      models.Identity `json:"user,omitempty"`
	Degraded  bool            `json:"degraded,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Store holds the current session.
type Store struct {
	prefs    repositories.PreferenceRepository
	verifier Verifier

	mu       sync.RWMutex
	state    State
	identity models.Identity
	token    string
	degraded bool
}

// New creates a Store in the unknown state. Call Restore at startup.
func New(prefs repositories.PreferenceRepository, verifier Verifier) *Store {
	return &Store{
		prefs:    prefs,
		verifier: verifier,
	}
}

// Restore reads the persisted session and verifies it with the backend.
// A rejected token clears the storage. When the backend cannot be reached
// the persisted identity is trusted as is (degraded mode). When ctx ends
// before the verification completes the state is left unchanged.
func (s *Store) Restore(ctx context.Context) error {
	token, identity, err := s.load()
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Error reading persisted session")
		s.clear(ctx)
		s.set(StateAnonymous, nil, "", false)
		return err
	}
	if token == "" || identity == nil {
		s.set(StateAnonymous, nil, "", false)
		return nil
	}

	err = s.verifier.Verify(ctx, token)
	switch {
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err == nil:
		s.set(StateAuthenticated, identity, token, false)
	case apiclient.StatusOf(err) != 0:
		logger.Info(ctx).Int("status", apiclient.StatusOf(err)).Msg("Persisted session rejected, clearing it")
		s.clear(ctx)
		s.set(StateAnonymous, nil, "", false)
	default:
		logger.Warn(ctx).Err(err).Msg("Backend unavailable, trusting persisted session")
		s.set(StateAuthenticated, identity, token, true)
	}
	return nil
}

// Login persists identity and token and activates the session.
func (s *Store) Login(identity models.Identity, token string) error {
	if token == "" {
		return errors.New("login requires a token")
	}
	if err := s.prefs.Set(TokenKey, token); err != nil {
		return err
	}
	user, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := s.prefs.Set(UserKey, string(user)); err != nil {
		return err
	}
	s.set(StateAuthenticated, identity, token, false)
	return nil
}

// Logout clears the persisted session and deactivates it. The session is
// deactivated even when the storage cannot be cleared.
func (s *Store) Logout() error {
	s.set(StateAnonymous, nil, "", false)
	return s.prefs.Delete(TokenKey, UserKey)
}

// Invalidate logs out when err shows the backend rejected the token.
// It reports whether the session was dropped.
func (s *Store) Invalidate(ctx context.Context, err error) bool {
	if apiclient.StatusOf(err) != http.StatusUnauthorized || !s.Authenticated() {
		return false
	}
	logger.Warn(ctx).Msg("Backend rejected the session token, logging out")
	if lerr := s.Logout(); lerr != nil {
		logger.Error(ctx).Err(lerr).Msg("Error clearing persisted session")
	}
	return true
}

// Token returns the bearer token, empty unless authenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return ""
	}
	return s.token
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether admin views are accessible.
func (s *Store) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Identity returns the authenticated user record.
func (s *Store) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Degraded reports whether the session was restored without verification.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// ExpiresAt returns the "exp" claim when the token is a JWT. The token is
// not verified; the backend remains the authority.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0).UTC(), true
}

// Info returns a snapshot for display.
func (s *Store) Info() Info {
	s.mu.RLock()
	info := Info{
		State:    s.state.String(),
		User:     s.identity,
		Degraded: s.degraded,
	}
	s.mu.RUnlock()
	if exp, ok := s.ExpiresAt(); ok {
		info.ExpiresAt = &exp
	}
	return info
}

func (s *Store) load() (string, models.Identity, error) {
	token, ok, err := s.prefs.Get(TokenKey)
	if err != nil || !ok {
		return "", nil, err
	}
	user, ok, err := s.prefs.Get(UserKey)
	if err != nil || !ok {
		return "", nil, err
	}
	if !json.Valid([]byte(user)) {
		return "", nil, fmt.Errorf("persisted identity is not valid JSON")
	}
	identity := models.Identity(user)
	if identity.IsZero() {
		return "", nil, nil
	}
	return token, identity, nil
}

func (s *Store) clear(ctx context.Context) {
	if err := s.prefs.Delete(TokenKey, UserKey); err != nil {
		logger.Error(ctx).Err(err).Msg("Error clearing persisted session")
	}
}

func (s *Store) set(state State, identity models.Identity, token string, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.identity = identity
	s.token = token
	s.degraded = degraded
}
