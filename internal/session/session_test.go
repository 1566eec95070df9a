package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/session"
)

type verifierFunc func(ctx context.Context, token string) error

func (f verifierFunc) Verify(ctx context.Context, token string) error { return f(ctx, token) }

func accept(context.Context, string) error { return nil }

func persisted(t *testing.T, token, user string) *repositories.MockPreferenceRepository {
	t.Helper()
	prefs := repositories.NewMockPreferenceRepository()
	require.NoError(t, prefs.Set(session.TokenKey, token))
	require.NoError(t, prefs.Set(session.UserKey, user))
	return prefs
}

func TestRestoreActivatesVerifiedSession(t *testing.T) {
	prefs := persisted(t, "t1", `{"id":1,"email":"a@b.com"}`)
	var verified string
	s := session.New(prefs, verifierFunc(func(_ context.Context, token string) error {
		verified = token
		return nil
	}))
	assert.Equal(t, session.StateUnknown, s.State())

	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, "t1", verified)
	assert.Equal(t, session.StateAuthenticated, s.State())
	assert.Equal(t, "t1", s.Token())
	assert.Equal(t, "a@b.com", s.Identity().Email())
	assert.False(t, s.Degraded())
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	prefs := persisted(t, "expired", `{"id":1}`)
	s := session.New(prefs, verifierFunc(func(context.Context, string) error {
		return &apiclient.RequestError{Status: http.StatusUnauthorized, Body: "invalid token"}
	}))

	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, session.StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	_, ok, _ := prefs.Get(session.TokenKey)
	assert.False(t, ok)
	_, ok, _ = prefs.Get(session.UserKey)
	assert.False(t, ok)
}

func TestRestoreTrustsPersistedSessionWhenBackendUnreachable(t *testing.T) {
	prefs := persisted(t, "t1", `{"id":1}`)
	s := session.New(prefs, verifierFunc(func(context.Context, string) error {
		return &apiclient.NetworkError{Err: errors.New("connection refused")}
	}))

	require.NoError(t, s.Restore(context.Background()))

	assert.True(t, s.Authenticated())
	assert.True(t, s.Degraded())
	assert.Equal(t, "t1", s.Token())
	v, ok, _ := prefs.Get(session.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "t1", v)
}

func TestRestoreCanceledDuringVerificationKeepsState(t *testing.T) {
	prefs := persisted(t, "t1", `{"id":1}`)
	ctx, cancel := context.WithCancel(context.Background())
	s := session.New(prefs, verifierFunc(func(context.Context, string) error {
		cancel()
		return &apiclient.NetworkError{Err: context.Canceled}
	}))

	err := s.Restore(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, session.StateUnknown, s.State())
	assert.False(t, s.Degraded())
	token, ok, _ := prefs.Get(session.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
}

func TestRestoreWithoutPersistedStateIsAnonymous(t *testing.T) {
	prefs := repositories.NewMockPreferenceRepository()
	require.NoError(t, prefs.Set(session.TokenKey, "t1"))
	called := false
	s := session.New(prefs, verifierFunc(func(context.Context, string) error {
		called = true
		return nil
	}))

	require.NoError(t, s.Restore(context.Background()))

	assert.False(t, called)
	assert.Equal(t, session.StateAnonymous, s.State())
}

func TestRestoreClearsCorruptIdentity(t *testing.T) {
	prefs := persisted(t, "t1", `{not json`)
	s := session.New(prefs, verifierFunc(accept))

	err := s.Restore(context.Background())

	assert.Error(t, err)
	assert.Equal(t, session.StateAnonymous, s.State())
	_, ok, _ := prefs.Get(session.TokenKey)
	assert.False(t, ok)
}

func TestLoginPersistsAndActivates(t *testing.T) {
	prefs := repositories.NewMockPreferenceRepository()
	s := session.New(prefs, verifierFunc(accept))
	require.NoError(t, s.Restore(context.Background()))

	require.NoError(t, s.Login(models.Identity(`{"id":1}`), "t1"))

	assert.True(t, s.Authenticated())
	token, _, _ := prefs.Get(session.TokenKey)
	assert.Equal(t, "t1", token)
	user, _, _ := prefs.Get(session.UserKey)
	assert.JSONEq(t, `{"id":1}`, user)

	assert.Error(t, s.Login(models.Identity(`{"id":1}`), ""))
}

func TestLogoutClearsEverything(t *testing.T) {
	prefs := repositories.NewMockPreferenceRepository()
	s := session.New(prefs, verifierFunc(accept))
	require.NoError(t, s.Login(models.Identity(`{"id":1}`), "t1"))

	require.NoError(t, s.Logout())

	assert.Equal(t, session.StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	assert.True(t, s.Identity().IsZero())
	_, ok, _ := prefs.Get(session.TokenKey)
	assert.False(t, ok)
}

func TestInvalidateOnlyOnUnauthorized(t *testing.T) {
	s := session.New(repositories.NewMockPreferenceRepository(), verifierFunc(accept))
	require.NoError(t, s.Login(models.Identity(`{"id":1}`), "t1"))
	ctx := context.Background()

	assert.False(t, s.Invalidate(ctx, &apiclient.RequestError{Status: http.StatusInternalServerError}))
	assert.False(t, s.Invalidate(ctx, errors.New("other")))
	assert.True(t, s.Authenticated())

	assert.True(t, s.Invalidate(ctx, &apiclient.RequestError{Status: http.StatusUnauthorized}))
	assert.False(t, s.Authenticated())
}

func TestExpiresAtReadsJWTClaim(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	s := session.New(repositories.NewMockPreferenceRepository(), verifierFunc(accept))
	require.NoError(t, s.Login(models.Identity(`{"id":1}`), token))

	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, exp, got)
	info := s.Info()
	assert.Equal(t, "authenticated", info.State)
	require.NotNil(t, info.ExpiresAt)

	require.NoError(t, s.Login(models.Identity(`{"id":1}`), "opaque"))
	_, ok = s.ExpiresAt()
	assert.False(t, ok)
}

func TestAPIVerifierSendsPersistedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/verify", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := session.APIVerifier{Client: apiclient.New(srv.URL)}
	assert.NoError(t, v.Verify(context.Background(), "good"))
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(v.Verify(context.Background(), "bad")))
}
