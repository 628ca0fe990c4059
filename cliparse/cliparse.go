// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = 3318
	DefaultHubURL        = "https://hub.snapshot.org/graphql"
	DefaultSnapshotSpace = "small-grants.eth"
	DefaultTallyCacheTTL = 30 * time.Second
	DefaultHubTimeout    = 10 * time.Second
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	SnapshotHubURL string
	SnapshotSpace  string
	HubTimeout     time.Duration

	// RedisURL is optional; an empty value disables the tally cache.
	RedisURL      string
	TallyCacheTTL time.Duration
}

// LoadDotEnv copies variables from the given .env files into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills unset values from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("small-grants", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Snapshot hub
	fs.StringVar(&cfg.SnapshotHubURL, "hub", "", "Snapshot GraphQL endpoint")
	fs.StringVar(&cfg.SnapshotSpace, "space", "", "Snapshot space id")
	fs.DurationVar(&cfg.HubTimeout, "hub-timeout", 0, "Snapshot request timeout")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the tally cache (optional)")
	fs.DurationVar(&cfg.TallyCacheTTL, "tally-ttl", 0, "Tally cache TTL")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	cfg.SnapshotHubURL = orEnv(cfg.SnapshotHubURL, "SNAPSHOT_HUB_URL", DefaultHubURL)
	cfg.SnapshotSpace = orEnv(cfg.SnapshotSpace, "SNAPSHOT_SPACE", DefaultSnapshotSpace)
	cfg.RedisURL = orEnv(cfg.RedisURL, "REDIS_URL", "")

	var err error
	if cfg.HubTimeout, err = durationOrEnv(cfg.HubTimeout, "SNAPSHOT_TIMEOUT", DefaultHubTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TallyCacheTTL, err = durationOrEnv(cfg.TallyCacheTTL, "TALLY_CACHE_TTL", DefaultTallyCacheTTL); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func orEnv(val, key, def string) string {
	if val != "" {
		return val
	}
	if env := os.Getenv(key); env != "" {
		return env
	}
	return def
}

func durationOrEnv(val time.Duration, key string, def time.Duration) (time.Duration, error) {
	if val > 0 {
		return val, nil
	}
	env := os.Getenv(key)
	if env == "" {
		return def, nil
	}
	d, err := time.ParseDuration(env)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable %q", key, env)
	}
	return d, nil
}
