// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/live-poll/models"
)

// TallyStore maintains the per-option vote counters derived from the ledger.
type TallyStore struct {
	db *sql.DB
}

func NewTallyStore(database *sql.DB) *TallyStore {
	return &TallyStore{db: database}
}

// Increment adds exactly one to an option's counter inside tx. The increment
// is a single UPDATE relative to the stored value, so concurrent votes on
// different polls can never lose updates.
func (t *TallyStore) Increment(tx *sql.Tx, pollID, optionID string) error {
	res, err := tx.Exec(`
		UPDATE option SET votes = votes + 1 WHERE id = $1 AND poll_id = $2
	`, optionID, pollID)
	if err != nil {
		return fmt.Errorf("failed to increment tally: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read increment result: %w", err)
	}
	if n == 0 {
		return ErrUnknownOption
	}

	return nil
}

// Snapshot returns the poll's current per-option counts in option order.
func (t *TallyStore) Snapshot(pollID string) (models.PollSnapshot, error) {
	snap := models.PollSnapshot{PollID: pollID}

	err := t.db.QueryRow(`
		SELECT title, status FROM poll WHERE id = $1
	`, pollID).Scan(&snap.Title, &snap.Status)
	if err == sql.ErrNoRows {
		return models.PollSnapshot{}, ErrPollNotFound
	}
	if err != nil {
		return models.PollSnapshot{}, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := t.db.Query(`
		SELECT id, label, votes
		FROM option
		WHERE poll_id = $1
		ORDER BY position, id
	`, pollID)
	if err != nil {
		return models.PollSnapshot{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	snap.Options = []models.OptionCount{}
	for rows.Next() {
		var oc models.OptionCount
		if err := rows.Scan(&oc.OptionID, &oc.Label, &oc.Count); err != nil {
			return models.PollSnapshot{}, fmt.Errorf("failed to scan option: %w", err)
		}
		snap.TotalVotes += oc.Count
		snap.Options = append(snap.Options, oc)
	}
	if err := rows.Err(); err != nil {
		return models.PollSnapshot{}, fmt.Errorf("failed to read options: %w", err)
	}

	return snap, nil
}

// Recount rebuilds one poll's counters from the ledger. Used for
// reconciliation: the ledger is the source of truth, counters are derived.
func (t *TallyStore) Recount(pollID string) error {
	_, err := t.db.Exec(`
		UPDATE option
		SET votes = (SELECT COUNT(*) FROM vote WHERE vote.option_id = option.id)
		WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return fmt.Errorf("failed to recount poll %s: %w", pollID, err)
	}
	return nil
}

// RecountAll rebuilds every counter from the ledger. Run at startup so a
// crash between writes can never leave tallies drifted from the ledger.
func (t *TallyStore) RecountAll() error {
	_, err := t.db.Exec(`
		UPDATE option
		SET votes = (SELECT COUNT(*) FROM vote WHERE vote.option_id = option.id)
	`)
	if err != nil {
		return fmt.Errorf("failed to recount tallies: %w", err)
	}
	return nil
}
