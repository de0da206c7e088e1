// Package proxy forwards authenticated /api traffic to the PCMS backend,
// swapping the session cookie for a bearer token.
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/internal/middleware"
)

type ReverseProxy struct {
	proxy  *httputil.ReverseProxy
	cfg    config.BackendConfig
	logger *slog.Logger
}

func NewReverseProxy(cfg config.BackendConfig, logger *slog.Logger) (*ReverseProxy, error) {
	backendURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(backendURL)

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = backendURL.Host
		req.URL.Scheme = backendURL.Scheme
		req.URL.Host = backendURL.Host
	}

	proxy.Transport = &http.Transport{
		ResponseHeaderTimeout: cfg.Timeout,
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("proxy error",
			"error", err,
			"backend", backendURL.String(),
			"path", r.URL.Path,
		)
		middleware.JSONError(w, http.StatusBadGateway, "Bad Gateway")
	}

	return &ReverseProxy{
		proxy:  proxy,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// ServeHTTP expects a session on the request context (set by
// RequireSession). Upstream status codes, including the backend's own 401
// on a token it rejects, pass through unchanged.
func (rp *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		rp.logger.Error("no session in context")
		middleware.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	InjectIdentity(r, session)

	if rp.cfg.PreserveHost {
		if host := r.Header.Get("X-Forwarded-Host"); host != "" {
			r.Host = host
		}
	}

	rp.logger.Debug("proxying request",
		"path", r.URL.Path,
		"backend", rp.cfg.URL,
		"user", session.User.ID,
	)

	rp.proxy.ServeHTTP(w, r)
}
