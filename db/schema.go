// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL is portable across postgres (lib/pq) and sqlite (modernc.org/sqlite):
// no server-side timestamp defaults, timestamps are always set by the caller.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    creator_name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'open', 'closed')),
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status);

-- Options (ordered within their poll, each carrying its running tally)
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    position INTEGER NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id);

-- Voter claims: one token per claimed name per poll
CREATE TABLE IF NOT EXISTS voter (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    voter_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (poll_id, voter_token),
    UNIQUE (poll_id, name)
);

CREATE INDEX IF NOT EXISTS idx_voter_poll_id ON voter(poll_id);

-- Votes: the ledger. The UNIQUE constraint is the single-vote invariant.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_token TEXT NOT NULL,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_vote_poll_id ON vote(poll_id);
CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id);
`
