// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package app

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a Config that passes all validation.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:        "*",
			RateLimitPerMinute: 300,
			RequestTimeout:     30 * time.Second,
		},
		Sessions: SessionsConfig{
			MaxIdle:       24 * time.Hour,
			PurgeInterval: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.Server.Port = port
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "server.port") {
			t.Errorf("port %d: expected port error, got: %v", port, err)
		}
	}
}

func TestConfig_Validate_NonPositiveDurations(t *testing.T) {
	cfg := validConfig()
	cfg.API.RequestTimeout = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api.request_timeout") {
		t.Errorf("expected request timeout error, got: %v", err)
	}

	cfg = validConfig()
	cfg.Sessions.MaxIdle = -time.Hour
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "sessions.max_idle") {
		t.Errorf("expected max idle error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Errorf("expected log level error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid logging.format") {
		t.Errorf("expected log format error, got: %v", err)
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "bad"
	cfg.Logging.Format = "bad"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"server.port", "logging.level", "logging.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.RateLimitPerMinute != 300 {
		t.Errorf("api.rate_limit_per_minute = %d, want 300", cfg.API.RateLimitPerMinute)
	}
	if cfg.Sessions.MaxIdle != 24*time.Hour {
		t.Errorf("sessions.max_idle = %s, want 24h", cfg.Sessions.MaxIdle)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}
