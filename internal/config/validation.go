package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks everything the process cannot run without. Provider
// completeness is deliberately excluded: a missing provider domain or
// client id surfaces as a config_error redirect at login time, not as a
// startup failure.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.validateBackend(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}

	if err := c.validateCache(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.validateProvider(); err != nil {
		return fmt.Errorf("provider config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL: %s", c.Server.BaseURL)
	}

	sameSite := strings.ToLower(c.Server.CookieSameSite)
	if sameSite != "lax" && sameSite != "strict" && sameSite != "none" {
		return fmt.Errorf("invalid cookie_same_site: %s (must be lax, strict, or none)", c.Server.CookieSameSite)
	}

	if !strings.HasPrefix(c.Server.ErrorPath, "/") {
		return fmt.Errorf("error_path must be absolute: %s", c.Server.ErrorPath)
	}

	if c.Server.SessionTTL < time.Minute {
		return fmt.Errorf("session_ttl must be at least 1 minute")
	}

	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url must be an absolute URL: %s", c.Backend.URL)
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("invalid type: %s (must be memory or redis)", c.Cache.Type)
	}

	if c.Cache.Type == "redis" {
		if c.Cache.Redis == nil {
			return fmt.Errorf("redis config is required when type is redis")
		}
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}
	}

	return nil
}

// validateProvider only rejects values that are present but malformed.
func (c *Config) validateProvider() error {
	if c.Provider.Issuer != "" {
		if _, err := url.Parse(c.Provider.Issuer); err != nil {
			return fmt.Errorf("invalid issuer URL: %w", err)
		}
	}

	if c.Provider.Domain != "" && strings.ContainsAny(c.Provider.Domain, "/? ") {
		return fmt.Errorf("domain must be a bare host: %s", c.Provider.Domain)
	}

	hasOpenID := false
	for _, scope := range c.Provider.Scopes {
		if scope == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("'openid' scope is required")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
