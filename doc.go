// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Small Grants API server.

Small Grants runs periodic funding rounds for a house. Proposers submit grants
while a round accepts proposals, voters pick grants on Snapshot, and the server
reconciles the Snapshot tally against stored grants to rank them and highlight
winners.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first when present:

	DATABASE_URL=grants.db ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SNAPSHOT_HUB_URL (--hub): Snapshot GraphQL endpoint
  - SNAPSHOT_SPACE (--space): Snapshot space id (default: small-grants.eth)
  - SNAPSHOT_TIMEOUT (--hub-timeout): Hub request timeout (default: 10s)
  - REDIS_URL (--redis): Enables the tally cache
  - TALLY_CACHE_TTL (--tally-ttl): Tally cache TTL (default: 30s)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - round: Round status resolution, countdown text and funding formatting
  - tally: Vote reconciliation, ranking and highlight selection
  - snapshot: Snapshot hub client with an optional Redis tally cache
  - handlers: HTTP request handlers (houses, rounds, grants, voters)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request ids, logging, JSON helpers
  - models: Request/response types
  - auth: Admin keys and address normalization
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
