package server

import (
	"net/http"

	"github.com/pcms-live/auth-gateway/internal/handlers"
	"github.com/pcms-live/auth-gateway/internal/middleware"
	"github.com/pcms-live/auth-gateway/internal/proxy"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	mux := http.NewServeMux()

	sessionReader := middleware.NewSessionReader(s.cfg.Server, s.cache, s.logger)

	loginHandler := handlers.NewLoginHandler(s.cfg, s.provider, s.logger)
	callbackHandler := handlers.NewCallbackHandler(s.cfg, s.provider, s.logger)
	logoutHandler := handlers.NewLogoutHandler(s.cfg, s.cache, s.provider, s.logger)
	healthHandler := handlers.NewHealthHandler(s.cfg, s.cache, s.logger)

	errorPageHandler, err := handlers.NewErrorPageHandler(s.logger)
	if err != nil {
		return nil, err
	}

	reverseProxy, err := proxy.NewReverseProxy(s.cfg.Backend, s.logger)
	if err != nil {
		return nil, err
	}

	mux.Handle("/login", loginHandler)
	mux.Handle("/callback", callbackHandler)
	mux.Handle("/logout", logoutHandler)
	mux.Handle("/auth/error", errorPageHandler)
	mux.Handle("/health", healthHandler)

	mux.Handle("/api/", sessionReader.RequireSession(reverseProxy))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	handler := middleware.Recovery(s.logger)(
		middleware.Logging(s.logger)(
			addSecurityHeaders(mux),
		),
	)

	return handler, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
