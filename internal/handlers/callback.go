package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

// CallbackHandler finishes the login: it validates state against the
// transaction cookie, exchanges the code for tokens, resolves a display
// profile, and issues the session cookie. Every failure short of a profile
// lookup is terminal and redirects to the error page; no partial session
// is ever written.
type CallbackHandler struct {
	cfg      config.Config
	provider auth.Provider
	logger   *slog.Logger
}

func NewCallbackHandler(cfg config.Config, provider auth.Provider, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		h.logger.Warn("provider returned error",
			"error", errCode,
			"description", query.Get("error_description"),
		)
		RedirectError(w, r, h.cfg.Server, errCode)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("callback without authorization code")
		RedirectError(w, r, h.cfg.Server, ErrCodeMissingCode)
		return
	}

	// CSRF defense: the state cookie cannot be forged by whoever triggered
	// this callback, so it must match the state parameter byte-for-byte.
	storedState, ok := security.CookieValue(r, security.StateCookieName)
	if !ok || subtle.ConstantTimeCompare([]byte(storedState), []byte(query.Get("state"))) != 1 {
		h.logger.Warn("oauth state mismatch", "cookie_present", ok)
		RedirectError(w, r, h.cfg.Server, ErrCodeStateMismatch)
		return
	}

	if h.provider == nil {
		h.logger.Error("callback without provider configuration")
		RedirectError(w, r, h.cfg.Server, ErrCodeConfig)
		return
	}

	codeVerifier, _ := security.CookieValue(r, security.VerifierCookieName)

	token, err := h.provider.Exchange(r.Context(), code, codeVerifier)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			h.logger.Error("token exchange rejected",
				"status", retrieveErr.Response.StatusCode,
				"body", string(retrieveErr.Body),
			)
		} else {
			h.logger.Error("token exchange failed", "error", err)
		}
		security.ClearTransactionCookies(w, h.cfg.Server)
		RedirectError(w, r, h.cfg.Server, ErrCodeExchange)
		return
	}

	user := auth.UserFromClaims(h.resolveProfile(r.Context(), token))

	now := time.Now()
	lifetime := tokenLifetime(token, h.cfg.Server.SessionTTL)
	user.AccessToken = token.AccessToken
	user.RefreshToken = token.RefreshToken
	user.AccessTokenExpires = now.Add(lifetime).UnixMilli()

	session, err := auth.NewSession(user, now.Add(lifetime))
	if err != nil {
		h.logger.Error("failed to build session", "error", err)
		security.ClearTransactionCookies(w, h.cfg.Server)
		RedirectError(w, r, h.cfg.Server, ErrCodeExchange)
		return
	}

	value, err := session.Encode(h.cfg.Server.CookieSecret)
	if err != nil {
		h.logger.Error("failed to encode session", "error", err)
		security.ClearTransactionCookies(w, h.cfg.Server)
		RedirectError(w, r, h.cfg.Server, ErrCodeExchange)
		return
	}

	security.SetSessionCookie(w, h.cfg.Server, value, lifetime)
	security.ClearTransactionCookies(w, h.cfg.Server)

	h.logger.Info("login completed", "user", user.ID, "sid", session.SID)
	http.Redirect(w, r, h.cfg.Server.SuccessPath, http.StatusFound)
}

// resolveProfile tries userinfo first, then unverified id_token claims.
// Profile failures never abort the login: a nil result degrades to
// placeholder display fields.
func (h *CallbackHandler) resolveProfile(ctx context.Context, token *oauth2.Token) map[string]any {
	claims, err := h.provider.FetchUserInfo(ctx, token.AccessToken)
	if err == nil {
		return claims
	}
	h.logger.Warn("userinfo fetch failed, falling back to id_token claims", "error", err)

	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		claims, err := auth.DecodeIDToken(raw)
		if err == nil {
			return claims
		}
		h.logger.Warn("failed to decode id_token", "error", err)
	}

	return nil
}

// tokenLifetime prefers the provider's expires_in so the cookie TTL tracks
// the token exactly.
func tokenLifetime(token *oauth2.Token, fallback time.Duration) time.Duration {
	if token.ExpiresIn > 0 {
		return time.Duration(token.ExpiresIn) * time.Second
	}
	if !token.Expiry.IsZero() {
		if d := time.Until(token.Expiry); d > 0 {
			return d
		}
	}
	return fallback
}
