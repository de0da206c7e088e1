package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

func TestLogin_RedirectsToProvider(t *testing.T) {
	provider := &mockProvider{}
	h := NewLoginHandler(testConfig(), provider, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	location := redirectLocation(t, rec)
	assert.Equal(t, "tenant.eu.auth0.com", location.Host)

	stateCookie := findCookie(t, rec, security.StateCookieName)
	verifierCookie := findCookie(t, rec, security.VerifierCookieName)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)

	// The redirect must carry the same state the cookie holds, and the
	// challenge must be the S256 hash of the verifier cookie.
	assert.Equal(t, stateCookie.Value, location.Query().Get("state"))
	assert.Equal(t, auth.ChallengeFor(verifierCookie.Value), location.Query().Get("code_challenge"))

	ttl := int(security.TransactionTTL / time.Second)
	assert.Equal(t, ttl, stateCookie.MaxAge)
	assert.Equal(t, ttl, verifierCookie.MaxAge)
	assert.True(t, stateCookie.HttpOnly)
	assert.True(t, verifierCookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, stateCookie.SameSite)
}

func TestLogin_ConfigError(t *testing.T) {
	h := NewLoginHandler(testConfig(), nil, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	location := redirectLocation(t, rec)
	assert.Equal(t, "/auth/error", location.Path)
	assert.Equal(t, ErrCodeConfig, location.Query().Get("error"))
	assert.Nil(t, findCookie(t, rec, security.StateCookieName))
}
