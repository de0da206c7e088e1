package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReader(t *testing.T, secret string) (*SessionReader, cache.Cache) {
	t.Helper()
	store := cache.NewMemoryCache()
	t.Cleanup(func() { store.Close() })

	cfg := config.ServerConfig{CookieSecret: secret}
	return NewSessionReader(cfg, store, testLogger()), store
}

func encodedSession(t *testing.T, secret string, expires time.Time) (*auth.Session, string) {
	t.Helper()
	session, err := auth.NewSession(auth.User{
		ID:                 "auth0_abc",
		Username:           "alice",
		AccessToken:        "the-access-token",
		AccessTokenExpires: expires.UnixMilli(),
	}, expires)
	require.NoError(t, err)

	value, err := session.Encode(secret)
	require.NoError(t, err)
	return session, value
}

func TestRequireSession_NoCookie(t *testing.T) {
	reader, _ := newReader(t, "")

	nextCalled := false
	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.False(t, nextCalled, "backend must not be called")
}

func TestRequireSession_MalformedCookie(t *testing.T) {
	reader, _ := newReader(t, "")

	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_ExpiredToken(t *testing.T) {
	reader, _ := newReader(t, "")
	_, value := encodedSession(t, "", time.Now().Add(-time.Minute))

	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: value})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_RevokedSession(t *testing.T) {
	reader, store := newReader(t, "")
	session, value := encodedSession(t, "", time.Now().Add(time.Hour))

	require.NoError(t, store.Set(context.Background(), auth.RevocationKey(session.SID), []byte("1"), time.Hour))

	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: value})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_ValidSessionReachesHandler(t *testing.T) {
	reader, _ := newReader(t, "cookie-secret")
	_, value := encodedSession(t, "cookie-secret", time.Now().Add(time.Hour))

	var got *auth.Session
	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		got = session
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: value})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "auth0_abc", got.User.ID)
	assert.Equal(t, "the-access-token", got.User.AccessToken)
}

func TestRequireSession_WrongSignature(t *testing.T) {
	reader, _ := newReader(t, "cookie-secret")
	_, value := encodedSession(t, "other-secret", time.Now().Add(time.Hour))

	handler := reader.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: value})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
