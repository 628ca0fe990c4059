// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL runs unchanged on postgres and sqlite: ids are assigned by the
// application, timestamps are written explicitly and token amounts are
// kept as decimal strings.
const schema = `
-- Houses
CREATE TABLE IF NOT EXISTS houses (
    id BIGINT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    hidden BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- Rounds
CREATE TABLE IF NOT EXISTS rounds (
    id BIGINT PRIMARY KEY,
    house_id BIGINT NOT NULL REFERENCES houses(id) ON DELETE CASCADE,
    creator TEXT NOT NULL,
    title TEXT NOT NULL,
    round_number INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    snapshot_space_id TEXT NOT NULL,
    snapshot_proposal_id TEXT,
    proposal_start TIMESTAMP NOT NULL,
    proposal_end TIMESTAMP NOT NULL,
    voting_start TIMESTAMP NOT NULL,
    voting_end TIMESTAMP NOT NULL,
    allocation_token_amount TEXT NOT NULL DEFAULT '0',
    allocation_token_address TEXT NOT NULL,
    max_winner_count INTEGER NOT NULL DEFAULT 0,
    scholarship BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_house_id ON rounds(house_id);
CREATE INDEX IF NOT EXISTS idx_rounds_proposal_start ON rounds(proposal_start);

-- Grants
CREATE TABLE IF NOT EXISTS grants (
    id BIGINT PRIMARY KEY,
    round_id BIGINT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
    proposer TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    full_text TEXT NOT NULL,
    twitter TEXT,
    payout_address TEXT,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_grants_round_id ON grants(round_id);
CREATE INDEX IF NOT EXISTS idx_grants_proposer ON grants(proposer);
`
