package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

// LogoutHandler clears the session cookie, parks the session id on the
// revocation list until the cookie would have expired anyway, and sends
// the browser to the provider's logout endpoint.
type LogoutHandler struct {
	cfg      config.Config
	cache    cache.Cache
	provider auth.Provider // nil when provider configuration is incomplete
	logger   *slog.Logger
}

func NewLogoutHandler(cfg config.Config, cache cache.Cache, provider auth.Provider, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{
		cfg:      cfg,
		cache:    cache,
		provider: provider,
		logger:   logger,
	}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if value, ok := security.CookieValue(r, security.SessionCookieName); ok {
		if session, err := auth.DecodeSession(value, h.cfg.Server.CookieSecret); err == nil {
			if ttl := time.Until(time.UnixMilli(session.Expires)); ttl > 0 {
				if err := h.cache.Set(r.Context(), auth.RevocationKey(session.SID), []byte("1"), ttl); err != nil {
					h.logger.Warn("failed to record session revocation", "error", err)
				}
			}
		}
	}

	security.ClearSessionCookie(w, h.cfg.Server)
	h.logger.Info("user logged out")

	if h.provider != nil {
		http.Redirect(w, r, h.provider.LogoutURL(h.cfg.Server.BaseURL), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
