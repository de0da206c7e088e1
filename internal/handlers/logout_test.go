package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

func TestLogout_RevokesSessionAndClearsCookie(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()

	session, err := auth.NewSession(auth.User{
		ID:          "auth0_abc",
		AccessToken: "the-access-token",
	}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	value, err := session.Encode("")
	require.NoError(t, err)

	h := NewLogoutHandler(testConfig(), store, &mockProvider{}, testLogger())

	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: value})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	location := redirectLocation(t, rec)
	assert.Equal(t, "tenant.eu.auth0.com", location.Host)
	assert.Equal(t, "/v2/logout", location.Path)
	assert.Equal(t, "https://pcms.live", location.Query().Get("returnTo"))

	cleared := findCookie(t, rec, security.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	revoked, err := store.Exists(context.Background(), auth.RevocationKey(session.SID))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogout_WithoutSessionOrProvider(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()

	h := NewLogoutHandler(testConfig(), store, nil, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	location := redirectLocation(t, rec)
	assert.Equal(t, "/", location.Path)

	cleared := findCookie(t, rec, security.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}
