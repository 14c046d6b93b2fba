// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"
)

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the roster store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisAddr enables the player read cache when set.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// QueueSize bounds the in-memory rating queue.
	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize caps remembered rating IDs; 0 keeps them all.
	DedupeSize int `koanf:"dedupe_size"`

	MaxTeamSize    int `koanf:"max_team_size"`
	MinPoolSize    int `koanf:"min_pool_size"`
	TeamMinPlayers int `koanf:"team_min_players"`
	TeamMaxPlayers int `koanf:"team_max_players"`

	SimSizeBonus float64 `koanf:"sim_size_bonus"`
	SimJitter    float64 `koanf:"sim_jitter"`
	// RandomSeed fixes the simulation source; 0 seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// StatsIntervalSeconds is how often gauges are refreshed.
	StatsIntervalSeconds int `koanf:"stats_interval_seconds"`

	// MetricsEnabled switches the balance and simulation recorders.
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
	// MetricsLabels are constant labels on every metric. YAML only.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StoreDriver:          StoreMemory,
		CacheTTLSeconds:      300,
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           50_000,
		MaxTeamSize:          5,
		MinPoolSize:          4,
		TeamMinPlayers:       3,
		TeamMaxPlayers:       5,
		SimSizeBonus:         2,
		SimJitter:            5,
		MaxLeaderboardLimit:  100,
		StatsIntervalSeconds: 15,
		MetricsEnabled:       true,
		MetricsNamespace:     "squad",
	}
}

// CacheTTL is the player cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// StatsInterval is the gauge refresh period.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSeconds) * time.Second
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StorePostgres:
		return fmt.Errorf("%w: store_driver %q must be memory or postgres", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StorePostgres && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn is required for the postgres store", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxTeamSize <= 0:
		return fmt.Errorf("%w: max_team_size must be positive", ErrInvalidConfig)
	case c.MinPoolSize < 2 || c.MinPoolSize > 2*c.MaxTeamSize:
		return fmt.Errorf("%w: min_pool_size must be between 2 and %d", ErrInvalidConfig, 2*c.MaxTeamSize)
	case c.TeamMinPlayers <= 0 || c.TeamMinPlayers > c.TeamMaxPlayers:
		return fmt.Errorf("%w: team_min_players must be positive and at most team_max_players", ErrInvalidConfig)
	case c.SimSizeBonus < 0 || c.SimJitter < 0:
		return fmt.Errorf("%w: simulation bonus and jitter must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.StatsIntervalSeconds <= 0:
		return fmt.Errorf("%w: stats_interval_seconds must be positive", ErrInvalidConfig)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
