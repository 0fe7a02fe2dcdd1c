package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/blastoff/internal/auth"
	"github.com/desertthunder/blastoff/internal/broadcast"
	"github.com/desertthunder/blastoff/internal/platforms"
	"github.com/desertthunder/blastoff/internal/server"
	"github.com/desertthunder/blastoff/internal/session"
	"github.com/desertthunder/blastoff/internal/shared"
	"github.com/urfave/cli/v3"
)

// outboundRPS throttles calls to the platform APIs; generous enough for a
// single-user tool, low enough to never trip platform rate limits.
const (
	outboundRPS   = 5.0
	outboundBurst = 5
)

// Serve builds the adapter set from configured credentials and runs the HTTP
// server until interrupted. Platforms without credentials are simply absent,
// the API reports them as not configured.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if port := cmd.Int("port"); port > 0 {
		cfg.Server.Port = int(port)
	}

	httpClient := platforms.NewHTTPClient(
		time.Duration(cfg.Server.TimeoutSeconds)*time.Second, outboundRPS, outboundBurst)

	adapters := []platforms.Platform{}
	if cfg.Credentials.Discord.Configured() {
		discord, err := platforms.NewDiscordPlatform(cfg.Credentials.Discord, httpClient, r.logger)
		if err != nil {
			return fmt.Errorf("discord adapter: %w", err)
		}
		adapters = append(adapters, discord)
	}
	if cfg.Credentials.Instagram.Configured() {
		instagram, err := platforms.NewInstagramPlatform(cfg.Credentials.Instagram, httpClient, r.logger)
		if err != nil {
			return fmt.Errorf("instagram adapter: %w", err)
		}
		adapters = append(adapters, instagram)
	}
	if cfg.Credentials.Twitter.Configured() {
		twitter, err := platforms.NewTwitterPlatform(cfg.Credentials.Twitter, httpClient, r.logger)
		if err != nil {
			return fmt.Errorf("twitter adapter: %w", err)
		}
		adapters = append(adapters, twitter)
	}

	if len(adapters) == 0 {
		r.logger.Warn("no platform credentials configured, every connect attempt will fail")
	}

	store, err := r.openStore(cfg)
	if err != nil {
		return err
	}

	flow := auth.NewFlow(store, r.logger, adapters...)
	coordinator := broadcast.NewCoordinator(flow, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Use(server.SessionMiddleware())
	if cfg.Server.FrontendURL != "" {
		router.Use(server.CORSMiddleware(cfg.Server.FrontendURL))
	}
	router.Handler(server.NewAPI(flow, coordinator, cfg.Server.FrontendURL, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, router, r.logger).Run(ctx)
}

// loadConfig prefers the command's --config flag over the runner's config.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return r.config, nil
	}

	cfg, err := shared.LoadConfig(path)
	if err != nil {
		if path == "config.toml" {
			return r.config, nil
		}
		return nil, err
	}
	return cfg, nil
}

// openStore picks SQLite when a database path is configured, otherwise the
// in-memory store. Memory loses credentials on restart, which is fine for
// one-off local usage.
func (r *Runner) openStore(cfg *shared.Config) (session.Store, error) {
	if cfg.Session.DatabasePath == "" {
		return session.NewMemoryStore(), nil
	}

	store, err := session.NewSQLiteStore(cfg.Session.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	r.logger.Info("using sqlite session store", "path", cfg.Session.DatabasePath)
	return store, nil
}
