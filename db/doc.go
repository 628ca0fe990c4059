// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses lib/pq; "sqlite" uses the pure-Go modernc.org/sqlite driver
and limits the pool to one connection. Foreign keys are enabled on sqlite.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both engines.

# Tables

  - houses: grant categories, addressed by slug
  - rounds: funding cycles with their four timeline instants
  - grants: proposals submitted to a round (soft-deleted via deleted)

# Relationships

	houses 1──* rounds
	rounds 1──* grants

All foreign keys use ON DELETE CASCADE.

# Conventions

  - Ids are assigned by the application as MAX(id)+1 inside the inserting
    transaction.
  - Timestamps are written in UTC by the application; there are no
    NOW() defaults.
  - allocation_token_amount holds the raw token amount as a decimal string.
*/
package db
