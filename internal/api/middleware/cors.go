// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig contains CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins is a list of origins a cross-domain request can be
	// executed from. "*" allows all origins.
	AllowedOrigins []string

	// AllowedMethods is a list of methods the client is allowed to use
	// with cross-domain requests.
	AllowedMethods []string

	// AllowedHeaders is a list of non-simple headers clients may send.
	AllowedHeaders []string

	// ExposedHeaders indicates which response headers are safe to expose.
	ExposedHeaders []string

	// AllowCredentials indicates whether the request can include user
	// credentials like cookies.
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) the results of a preflight
	// request can be cached.
	MaxAge int
}

// DefaultCORSConfig returns the configuration calendar clients need:
// the session header must be both sendable and readable.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			HeaderSessionID,
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
			HeaderSessionID,
		},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// CORSFromOrigins builds a configuration from a comma-separated origin
// list, e.g. "https://app.example.com,https://admin.example.com".
func CORSFromOrigins(origins string) CORSConfig {
	config := DefaultCORSConfig()
	if origins == "" || origins == "*" {
		config.AllowedOrigins = []string{"*"}
		return config
	}

	list := strings.Split(origins, ",")
	trimmed := make([]string, 0, len(list))
	for _, o := range list {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	if len(trimmed) > 0 {
		config.AllowedOrigins = trimmed
	}
	return config
}

// CORS returns a CORS middleware handler with the given configuration.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	})
}
