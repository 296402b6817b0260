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
  - DI-Friendly: Passed to the pipeline stages (DB pool, search client, lock) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the service is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the filmsync service.
type Config struct {

	// Relational catalog (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Search index (comma-separated host URLs)
	IndexHosts string `env:"INDEX_HOSTS,required"`
	IndexName  string `env:"INDEX_NAME" envDefault:"movies"`

	// State store cache files, one per checkpointed stage
	CacheMainPath     string `env:"CACHE_MAIN_PATH"     envDefault:"./cache/main.json"`
	CacheProducerPath string `env:"CACHE_PRODUCER_PATH" envDefault:"./cache/producer.json"`
	CacheEnricherPath string `env:"CACHE_ENRICHER_PATH" envDefault:"./cache/enricher.json"`
	CacheMergerPath   string `env:"CACHE_MERGER_PATH"   envDefault:"./cache/merger.json"`

	// Logging
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"./log/etl.log"`
	Debug       bool   `env:"DEBUG"         envDefault:"false"`

	// Pipeline pacing
	LimitSize          int `env:"LIMIT_SIZE"           envDefault:"100"`
	SleepPeriodSeconds int `env:"SLEEP_PERIOD_SECONDS" envDefault:"60"`

	// Liveness/readiness HTTP surface
	HealthPort string `env:"HEALTH_PORT" envDefault:"8090"`

	// Optional cross-host interlock lease. Empty disables it.
	RunLockRedisURL string `env:"RUN_LOCK_REDIS_URL"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IndexHostList splits the comma-separated [Config.IndexHosts] into a slice.
func (c *Config) IndexHostList() []string {
	parts := strings.Split(c.IndexHosts, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			hosts = append(hosts, p)
		}
	}
	return hosts
}

// HasRunLock reports whether the distributed interlock lease is configured.
func (c *Config) HasRunLock() bool {
	return c.RunLockRedisURL != ""
}
