package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionReader authenticates proxy requests from the session cookie. It
// does not verify the provider token itself; a token the backend rejects
// surfaces to the caller as the backend's own 401.
type SessionReader struct {
	cfg    config.ServerConfig
	cache  cache.Cache
	logger *slog.Logger
}

func NewSessionReader(cfg config.ServerConfig, cache cache.Cache, logger *slog.Logger) *SessionReader {
	return &SessionReader{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

// RequireSession rejects requests whose session cookie is absent,
// unparsable, expired, or revoked, without touching the backend.
func (sr *SessionReader) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, ok := security.CookieValue(r, security.SessionCookieName)
		if !ok {
			sr.logger.Debug("no session cookie", "path", r.URL.Path)
			JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		session, err := auth.DecodeSession(value, sr.cfg.CookieSecret)
		if err != nil {
			sr.logger.Debug("invalid session cookie", "error", err)
			JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if session.Expired(time.Now()) {
			sr.logger.Debug("session expired", "sid", session.SID)
			JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		revoked, err := sr.cache.Exists(r.Context(), auth.RevocationKey(session.SID))
		if err != nil {
			sr.logger.Warn("revocation check failed", "error", err)
		}
		if revoked {
			sr.logger.Debug("session revoked", "sid", session.SID)
			JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext retrieves the session placed by RequireSession.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*auth.Session)
	return session, ok
}

// WithSession is a test seam for handlers downstream of RequireSession.
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// JSONError writes a machine-readable error body, the shape proxy callers
// expect.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
