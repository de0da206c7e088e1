package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/pkg/security"
)

// LoginHandler initiates the authorization-code flow: it generates the
// PKCE pair and state, parks them in transaction cookies, and redirects to
// the provider's authorize endpoint.
type LoginHandler struct {
	cfg      config.Config
	provider auth.Provider // nil when provider configuration is incomplete
	logger   *slog.Logger
}

func NewLoginHandler(cfg config.Config, provider auth.Provider, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
	}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		h.logger.Error("login attempted without provider configuration")
		RedirectError(w, r, h.cfg.Server, ErrCodeConfig)
		return
	}

	authReq, err := auth.NewAuthorizationRequest()
	if err != nil {
		h.logger.Error("failed to create authorization request", "error", err)
		RedirectError(w, r, h.cfg.Server, ErrCodeConfig)
		return
	}

	security.SetTransactionCookies(w, h.cfg.Server, authReq.CodeVerifier, authReq.State)

	h.logger.Debug("login initiated")
	http.Redirect(w, r, h.provider.AuthCodeURL(authReq.State, authReq.CodeChallenge), http.StatusFound)
}
