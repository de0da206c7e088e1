package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/pcms-live/auth-gateway/internal/config"
)

const (
	SessionCookieName  = "pcms_session"
	VerifierCookieName = "pcms_code_verifier"
	StateCookieName    = "pcms_oauth_state"
)

// TransactionTTL bounds a login attempt: the verifier and state cookies
// written at initiation must be consumed by the callback within this window.
const TransactionTTL = 10 * time.Minute

func SetSessionCookie(w http.ResponseWriter, cfg config.ServerConfig, value string, maxAge time.Duration) {
	http.SetCookie(w, newCookie(cfg, SessionCookieName, value, int(maxAge.Seconds())))
}

func ClearSessionCookie(w http.ResponseWriter, cfg config.ServerConfig) {
	http.SetCookie(w, newCookie(cfg, SessionCookieName, "", -1))
}

// SetTransactionCookies stores the PKCE verifier and anti-CSRF state for
// the duration of one login attempt.
func SetTransactionCookies(w http.ResponseWriter, cfg config.ServerConfig, verifier, state string) {
	ttl := int(TransactionTTL.Seconds())
	http.SetCookie(w, newCookie(cfg, VerifierCookieName, verifier, ttl))
	http.SetCookie(w, newCookie(cfg, StateCookieName, state, ttl))
}

// ClearTransactionCookies removes both login-transaction cookies; they are
// single-use.
func ClearTransactionCookies(w http.ResponseWriter, cfg config.ServerConfig) {
	http.SetCookie(w, newCookie(cfg, VerifierCookieName, "", -1))
	http.SetCookie(w, newCookie(cfg, StateCookieName, "", -1))
}

// CookieValue reads a cookie off the request, reporting whether it was
// present and non-empty.
func CookieValue(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func newCookie(cfg config.ServerConfig, name, value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: sameSite,
	}
}
