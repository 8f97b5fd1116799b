// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/live-poll/db"
	"github.com/danielhkuo/live-poll/models"
)

// Ledger is the per-(poll, voter) record of who voted for what. It is the
// source of truth: tallies are derived from it and can always be recomputed.
type Ledger struct {
	db *sql.DB
}

func NewLedger(database *sql.DB) *Ledger {
	return &Ledger{db: database}
}

// RecordVote writes one vote row inside tx. It validates that the option
// belongs to the vote's poll (ErrUnknownOption) and relies on the schema's
// UNIQUE (poll_id, voter_token) constraint for the one-vote rule
// (ErrDuplicateVote). Insert and uniqueness check are a single atomic
// statement, so two concurrent submissions by the same voter can never both
// be accepted.
func (l *Ledger) RecordVote(tx *sql.Tx, vote models.Vote) error {
	var belongs bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM option WHERE id = $1 AND poll_id = $2)
	`, vote.OptionID, vote.PollID).Scan(&belongs)
	if err != nil {
		return fmt.Errorf("failed to check option membership: %w", err)
	}
	if !belongs {
		return ErrUnknownOption
	}

	_, err = tx.Exec(`
		INSERT INTO vote (id, poll_id, voter_token, option_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.PollID, vote.VoterToken, vote.OptionID, vote.CastAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

// VoteFor returns the vote a voter cast in a poll, or ErrNoVote.
func (l *Ledger) VoteFor(pollID, voterToken string) (models.Vote, error) {
	var vote models.Vote
	err := l.db.QueryRow(`
		SELECT id, poll_id, voter_token, option_id, cast_at
		FROM vote
		WHERE poll_id = $1 AND voter_token = $2
	`, pollID, voterToken).Scan(
		&vote.ID, &vote.PollID, &vote.VoterToken, &vote.OptionID, &vote.CastAt,
	)
	if err == sql.ErrNoRows {
		return models.Vote{}, ErrNoVote
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}

	return vote, nil
}

// CountVotes returns the number of ledger rows for a poll.
func (l *Ledger) CountVotes(pollID string) (int, error) {
	var count int
	err := l.db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}
