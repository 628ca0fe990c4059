// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadDotEnv reads a .env file (if present) into the environment without
overriding variables that are already set.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for house admin key HMAC (required)
  - SnapshotHubURL: Snapshot GraphQL endpoint
  - SnapshotSpace: Snapshot space id (default: small-grants.eth)
  - HubTimeout: per-request hub timeout (default: 10s)
  - RedisURL: tally cache, disabled when empty
  - TallyCacheTTL: tally cache entry lifetime (default: 30s)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-admin-salt   Admin key salt
	-hub          Snapshot hub URL
	-space        Snapshot space
	-hub-timeout  Snapshot request timeout
	-redis        Redis URL
	-tally-ttl    Tally cache TTL

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	ADMIN_KEY_SALT   → -admin-salt
	SNAPSHOT_HUB_URL → -hub
	SNAPSHOT_SPACE   → -space
	SNAPSHOT_TIMEOUT → -hub-timeout
	REDIS_URL        → -redis
	TALLY_CACHE_TTL  → -tally-ttl

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - durations must parse with time.ParseDuration
*/
package cliparse
