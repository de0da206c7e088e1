package proxy

import (
	"net/http"

	"github.com/pcms-live/auth-gateway/internal/auth"
)

// InjectIdentity replaces whatever credentials the client sent with the
// session's provider token and display identity.
func InjectIdentity(req *http.Request, session *auth.Session) {
	req.Header.Set("Authorization", "Bearer "+session.User.AccessToken)
	req.Header.Set("X-Auth-User-ID", session.User.ID)
	req.Header.Set("X-Auth-User", session.User.Username)
	req.Header.Set("X-Auth-Email", session.User.Email)

	// The session cookie is for this gateway only.
	req.Header.Del("Cookie")
}
