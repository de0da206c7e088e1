package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/internal/config"
)

type HealthHandler struct {
	cfg       config.Config
	cache     cache.Cache
	logger    *slog.Logger
	startTime time.Time
}

func NewHealthHandler(cfg config.Config, cache cache.Cache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

type HealthResponse struct {
	Status   string        `json:"status"`
	Uptime   string        `json:"uptime"`
	Cache    CacheHealth   `json:"cache"`
	Backend  BackendHealth `json:"backend"`
	Provider string        `json:"provider"`
}

type CacheHealth struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type BackendHealth struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).String(),
	}

	response.Cache.Type = h.cfg.Cache.Type
	if err := h.cache.Set(ctx, "health:check", []byte("ok"), time.Minute); err != nil {
		response.Cache.Status = "error: " + err.Error()
		response.Status = "degraded"
	} else {
		response.Cache.Status = "connected"
		h.cache.Delete(ctx, "health:check")
	}

	response.Backend.URL = h.cfg.Backend.URL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.Backend.URL, nil)
	if err == nil {
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
			response.Backend.Status = "reachable"
		} else {
			response.Backend.Status = "unreachable"
			response.Status = "degraded"
		}
	} else {
		response.Backend.Status = "unreachable"
		response.Status = "degraded"
	}

	if h.cfg.Provider.Complete() {
		response.Provider = "configured"
	} else {
		response.Provider = "incomplete"
		response.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}
