package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/auth/auth0"
	"github.com/pcms-live/auth-gateway/internal/cache"
	"github.com/pcms-live/auth-gateway/internal/config"
	"github.com/pcms-live/auth-gateway/internal/server"
)

const version = "1.0.0"

const defaultConfigPath = "/etc/auth-gateway/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	configPathShort := flag.String("c", defaultConfigPath, "path to configuration file (short)")
	showVersion := flag.Bool("version", false, "show version and exit")
	showHelp := flag.Bool("help", false, "show help and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("auth-gateway v%s\n", version)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Println("auth-gateway - OAuth/PKCE login gateway for the PCMS backend")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfgPath := *configPath
	if *configPathShort != defaultConfigPath {
		cfgPath = *configPathShort
	}

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info("starting auth-gateway", "version", version)

	cacheInstance, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	logger.Info("cache initialized", "type", cfg.Cache.Type)

	// An incomplete provider is a degraded start, not a fatal one: login
	// attempts redirect to the error page with config_error.
	var provider auth.Provider
	if cfg.Provider.Complete() {
		p, err := auth0.New(context.Background(), cfg.Provider, cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to create provider: %w", err)
		}
		provider = p
		logger.Info("provider initialized",
			"domain", cfg.Provider.Domain,
			"audience", p.Audience(),
		)
	} else {
		logger.Warn("provider configuration incomplete, logins will fail with config_error")
	}

	srv, err := server.New(*cfg, cacheInstance, provider, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
