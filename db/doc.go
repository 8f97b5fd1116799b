// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL runs unchanged on both postgres and sqlite.

# Tables

The schema includes:

  - poll: Poll metadata and lifecycle state
  - option: Voting options per poll, ordered by position, with a votes counter
  - voter: Maps claimed voter names to voter tokens
  - vote: The vote ledger - one row per voter per poll

# Relationships

	poll 1──* option
	poll 1──* voter
	poll 1──* vote

All foreign keys use ON DELETE CASCADE.

# Invariants

Two invariants live in the schema itself:

  - UNIQUE (poll_id, voter_token) on vote enforces one vote per voter per poll
    even under concurrent submissions
  - option.votes is a derived counter; it must always equal the count of vote
    rows for that option (votes.TallyStore.Recount rebuilds it from the ledger)

# Indexes

Performance indexes on:

  - poll.status
  - option.poll_id
  - voter.poll_id
  - vote.poll_id
  - vote.option_id
*/
package db
