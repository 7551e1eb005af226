// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig holds API behavior configuration
type APIConfig struct {
	// CORSOrigins is a comma-separated list of allowed origins.
	// Empty or "*" allows any origin.
	CORSOrigins string `mapstructure:"cors_origins"`

	// RateLimitPerMinute is the per-session request budget.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// RequestTimeout bounds individual request handling.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionsConfig holds session lifecycle configuration
type SessionsConfig struct {
	// MaxIdle is how long a session may go unused before it is purged.
	MaxIdle time.Duration `mapstructure:"max_idle"`

	// PurgeInterval is how often the purge sweep runs.
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file and environment
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	// Config file settings
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/calive")
		v.AddConfigPath("$HOME/.calive")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("CALIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("server.host", "CALIVE_SERVER_HOST", "HOST")
	_ = v.BindEnv("server.port", "CALIVE_SERVER_PORT", "PORT")
	_ = v.BindEnv("api.cors_origins", "CALIVE_API_CORS_ORIGINS", "CORS_ORIGINS")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, proceed with env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// API
	v.SetDefault("api.cors_origins", "*")
	v.SetDefault("api.rate_limit_per_minute", 300)
	v.SetDefault("api.request_timeout", "30s")

	// Sessions
	v.SetDefault("sessions.max_idle", "24h")
	v.SetDefault("sessions.purge_interval", "1h")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate validates the configuration.
// Collects all errors so the operator can fix them in one pass.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"api.request_timeout", c.API.RequestTimeout},
		{"sessions.max_idle", c.Sessions.MaxIdle},
		{"sessions.purge_interval", c.Sessions.PurgeInterval},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}

	if c.API.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit_per_minute must be non-negative"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (must be json or console)", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	// Join all errors with newlines for readable operator output
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Print prints the effective configuration.
func (c *Config) Print() {
	fmt.Printf("Server: %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("CORS Origins: %s\n", c.API.CORSOrigins)
	fmt.Printf("Rate Limit: %d/min\n", c.API.RateLimitPerMinute)
	fmt.Printf("Session Max Idle: %s\n", c.Sessions.MaxIdle)
	fmt.Printf("Log Level: %s\n", c.Logging.Level)
	fmt.Printf("Log Format: %s\n", c.Logging.Format)
}
