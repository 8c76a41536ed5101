package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string // empty disables the metrics endpoint

	MaxOrderings       int // permutation cap for the sequence enumerator
	MaxConcurrentSolve int // parallel per-ordering solve limit
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:        getEnv("SCHEDULER_ENV", "production"),
		HTTPBind:           getEnv("SCHEDULER_HTTP_BIND", "0.0.0.0"),
		HTTPPort:           getEnvInt("SCHEDULER_HTTP_PORT", 8000),
		MetricsBind:        getEnv("SCHEDULER_METRICS_BIND", ""),
		MaxOrderings:       getEnvInt("SCHEDULER_MAX_ORDERINGS", 5040),
		MaxConcurrentSolve: getEnvInt("SCHEDULER_MAX_CONCURRENT_SOLVES", 4),
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid SCHEDULER_HTTP_PORT: %d", cfg.HTTPPort)
	}
	if cfg.MaxOrderings < 1 {
		return nil, fmt.Errorf("SCHEDULER_MAX_ORDERINGS must be at least 1")
	}
	if cfg.MaxConcurrentSolve < 1 {
		return nil, fmt.Errorf("SCHEDULER_MAX_CONCURRENT_SOLVES must be at least 1")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
