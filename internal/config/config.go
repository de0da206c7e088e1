package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Backend  BackendConfig  `yaml:"backend"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	BaseURL        string        `yaml:"base_url"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CookieSameSite string        `yaml:"cookie_same_site"`
	CookieSecret   string        `yaml:"cookie_secret"`
	SuccessPath    string        `yaml:"success_path"`
	ErrorPath      string        `yaml:"error_path"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

// ProviderConfig describes the identity provider. Domain is the bare
// provider host (e.g. tenant.eu.auth0.com); Issuer, when set, switches
// endpoint resolution to OIDC discovery.
type ProviderConfig struct {
	Domain       string   `yaml:"domain"`
	Issuer       string   `yaml:"issuer"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
	Audience     string   `yaml:"audience"`
}

// Complete reports whether enough provider configuration is present to
// start a login. An incomplete provider is not a startup error: the login
// handler degrades to a config_error redirect instead.
func (p ProviderConfig) Complete() bool {
	return p.Domain != "" && p.ClientID != ""
}

type BackendConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	PreserveHost bool          `yaml:"preserve_host"`
}

type CacheConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.loadFromEnv()
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CookieSameSite == "" {
		c.Server.CookieSameSite = "lax"
	}
	if c.Server.SuccessPath == "" {
		c.Server.SuccessPath = "/"
	}
	if c.Server.ErrorPath == "" {
		c.Server.ErrorPath = "/auth/error"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}

	// The provider domain is a host, but operators tend to paste URLs.
	c.Provider.Domain = strings.TrimPrefix(c.Provider.Domain, "https://")
	c.Provider.Domain = strings.TrimPrefix(c.Provider.Domain, "http://")
	c.Provider.Domain = strings.TrimSuffix(c.Provider.Domain, "/")
	if len(c.Provider.Scopes) == 0 {
		c.Provider.Scopes = []string{"openid", "profile", "email"}
	}

	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 30 * time.Second
	}

	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.Type == "redis" && c.Cache.Redis != nil {
		if c.Cache.Redis.PoolSize == 0 {
			c.Cache.Redis.PoolSize = 10
		}
		if c.Cache.Redis.MaxRetries == 0 {
			c.Cache.Redis.MaxRetries = 3
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// loadFromEnv overlays secrets and deployment-specific values so they can
// stay out of the config file.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("AUTH0_DOMAIN"); v != "" {
		c.Provider.Domain = v
	}
	if v := os.Getenv("AUTH0_CLIENT_ID"); v != "" {
		c.Provider.ClientID = v
	}
	if v := os.Getenv("AUTH0_CLIENT_SECRET"); v != "" {
		c.Provider.ClientSecret = v
	}
	if v := os.Getenv("AUTH0_AUDIENCE"); v != "" {
		c.Provider.Audience = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("SESSION_COOKIE_SECRET"); v != "" {
		c.Server.CookieSecret = v
	}
	if c.Cache.Redis != nil {
		if v := os.Getenv("REDIS_PASSWORD"); v != "" {
			c.Cache.Redis.Password = v
		}
	}
}
