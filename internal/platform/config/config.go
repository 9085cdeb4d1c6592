// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session store, API client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the storefront client platform.
type Config struct {

	// Server settings (gateway)
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Store backend API. The default is the fixed production host; staging
	// and local development override it.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://api.voltora.energy/api/v1"`

	// Relational Database (PostgreSQL) — durable session store backend.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis) — primary session store and the invalidation
	// broadcast channel.
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret keys the at-rest sealing of persisted session records.
	// Must be at least 32 bytes of entropy.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// SessionBackend selects where sealed session records live: "redis"
	// (default) or "postgres".
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"redis"`

	// ImageProxyAllowedHosts is the comma-separated allow-list of upstream
	// hosts the image relay may fetch from.
	ImageProxyAllowedHosts string `env:"IMAGE_PROXY_ALLOWED_HOSTS" envDefault:"cdn.voltora.energy"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the service is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedExtraOrigins returns additional CORS origins beyond the first-party
// domain, parsed from the comma-separated EXTRA_ORIGINS variable.
func (c *Config) AllowedExtraOrigins() []string {
	raw := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(raw))
	for _, origin := range raw {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// AllowedProxyHosts returns the parsed image relay allow-list with empty
// entries removed.
func (c *Config) AllowedProxyHosts() []string {
	raw := strings.Split(c.ImageProxyAllowedHosts, ",")
	hosts := make([]string, 0, len(raw))
	for _, host := range raw {
		host = strings.TrimSpace(host)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
