// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package app wires configuration, logging, sessions, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entremotivator/Calive/internal/api"
	apimiddleware "github.com/entremotivator/Calive/internal/api/middleware"
	"github.com/entremotivator/Calive/internal/pkg/logger"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = ""
)

// PrintVersion prints version information to stdout.
func PrintVersion() {
	fmt.Printf("calive %s (commit %s", Version, Commit)
	if BuildTime != "" {
		fmt.Printf(", built %s", BuildTime)
	}
	fmt.Println(")")
}

// Run loads configuration, starts the API server, and blocks until a
// shutdown signal arrives.
func Run(cfgFile string) error {
	// Load configuration
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting calive",
		"version", Version,
		"commit", Commit,
	)

	// Build the server
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.IdleTimeout = cfg.Server.IdleTimeout
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	serverCfg.Logger = log
	serverCfg.RouterConfig.CORSConfig = apimiddleware.CORSFromOrigins(cfg.API.CORSOrigins)
	serverCfg.RouterConfig.RateLimitPerMinute = cfg.API.RateLimitPerMinute
	serverCfg.RouterConfig.RequestTimeout = cfg.API.RequestTimeout
	serverCfg.RouterConfig.Logger = log

	server := api.NewServer(serverCfg)
	server.Setup()

	// Periodic purge of idle sessions
	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go purgeLoop(purgeCtx, server, cfg.Sessions, log)

	errChan := server.StartAsync()

	log.Info("calive started successfully",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
		log.Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
		return err
	}

	log.Info("calive stopped gracefully")
	return nil
}

// purgeLoop periodically removes sessions idle longer than the
// configured maximum.
func purgeLoop(ctx context.Context, server *api.Server, cfg SessionsConfig, log *logger.Logger) {
	interval := cfg.PurgeInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-server.ShutdownChan():
			return
		case <-ticker.C:
			if removed := server.Sessions().Purge(cfg.MaxIdle); removed > 0 {
				log.Info("Purged idle sessions", "count", removed)
			}
		}
	}
}
