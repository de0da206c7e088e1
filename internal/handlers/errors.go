package handlers

import (
	"net/http"
	"net/url"

	"github.com/pcms-live/auth-gateway/internal/config"
)

// Machine-readable login failure codes carried to the error page. Provider
// errors from the callback query string are forwarded verbatim instead.
const (
	ErrCodeConfig        = "config_error"
	ErrCodeMissingCode   = "missing_code"
	ErrCodeStateMismatch = "state_mismatch"
	ErrCodeExchange      = "token_exchange_failed"
)

// RedirectError sends the browser to the error page with the failure code
// in the query string. Login failures never surface as bare HTTP errors.
func RedirectError(w http.ResponseWriter, r *http.Request, cfg config.ServerConfig, code string) {
	http.Redirect(w, r, cfg.ErrorPath+"?error="+url.QueryEscape(code), http.StatusFound)
}
