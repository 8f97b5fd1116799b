// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/live-poll/models"
)

// Notifier receives the snapshot produced by each accepted vote. The
// implementation must not block: it is called while the poll's lock is held
// so that snapshots reach the dispatcher in vote acceptance order.
type Notifier interface {
	PollUpdated(snapshot models.PollSnapshot)
}

// Service validates and applies votes. All tally mutations for one poll go
// through here, serialized by a per-poll mutex; votes on different polls
// proceed in parallel.
type Service struct {
	db       *sql.DB
	ledger   *Ledger
	tallies  *TallyStore
	notifier Notifier

	mu        sync.Mutex
	pollLocks map[string]*sync.Mutex
}

func NewService(database *sql.DB, notifier Notifier) *Service {
	return &Service{
		db:        database,
		ledger:    NewLedger(database),
		tallies:   NewTallyStore(database),
		notifier:  notifier,
		pollLocks: make(map[string]*sync.Mutex),
	}
}

// Ledger exposes the vote ledger for read paths (my-vote lookups).
func (s *Service) Ledger() *Ledger { return s.ledger }

// Tallies exposes the tally store for read paths and startup reconciliation.
func (s *Service) Tallies() *TallyStore { return s.tallies }

// lockPoll acquires the serialization point for one poll and returns its
// unlock func. Lock entries are never removed; a stale entry is one mutex
// per poll ever voted on in this process, which is cheap enough.
func (s *Service) lockPoll(pollID string) func() {
	s.mu.Lock()
	lock, ok := s.pollLocks[pollID]
	if !ok {
		lock = &sync.Mutex{}
		s.pollLocks[pollID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// SubmitVote applies one vote: poll/status validation, ledger write, tally
// increment, snapshot, and exactly one tally-changed notification. The ledger
// write and increment share a single transaction, so no reader can ever
// observe an increment without its vote row, and a duplicate vote can never
// increment anything.
func (s *Service) SubmitVote(ctx context.Context, pollID, voterToken, optionID string) (models.PollSnapshot, error) {
	if pollID == "" || voterToken == "" || optionID == "" {
		return models.PollSnapshot{}, ErrUnknownOption
	}

	unlock := s.lockPoll(pollID)
	defer unlock()

	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM poll WHERE id = $1
	`, pollID).Scan(&status)
	if err == sql.ErrNoRows {
		return models.PollSnapshot{}, ErrPollNotFound
	}
	if err != nil {
		return models.PollSnapshot{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if status != models.StatusOpen {
		return models.PollSnapshot{}, ErrPollClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PollSnapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vote := models.Vote{
		ID:         uuid.NewString(),
		PollID:     pollID,
		VoterToken: voterToken,
		OptionID:   optionID,
		CastAt:     time.Now(),
	}

	if err := s.ledger.RecordVote(tx, vote); err != nil {
		return models.PollSnapshot{}, err
	}
	if err := s.tallies.Increment(tx, pollID, optionID); err != nil {
		return models.PollSnapshot{}, err
	}

	if err := tx.Commit(); err != nil {
		// Nothing was committed; the submission is safely retryable.
		return models.PollSnapshot{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	snap, err := s.snapshotWithRetry(pollID)
	if err != nil {
		// The vote is durably accepted; only the read back failed. A
		// resubmission correctly yields ErrDuplicateVote.
		slog.Error("vote accepted but snapshot unavailable", "poll_id", pollID, "error", err)
		return models.PollSnapshot{}, err
	}

	slog.Info("vote accepted",
		"poll_id", pollID,
		"option_id", optionID,
		"total_votes", snap.TotalVotes,
	)

	// Still under the poll lock: snapshots enter the dispatcher in
	// acceptance order.
	if s.notifier != nil {
		s.notifier.PollUpdated(snap)
	}

	return snap, nil
}

// Snapshot returns the poll's current state without taking the poll lock.
// Reads during a concurrent vote see either the pre- or post-vote state.
func (s *Service) Snapshot(pollID string) (models.PollSnapshot, error) {
	return s.tallies.Snapshot(pollID)
}

// Notify pushes a snapshot to room subscribers outside the vote path
// (e.g. announcing a poll close).
func (s *Service) Notify(snap models.PollSnapshot) {
	if s.notifier != nil {
		s.notifier.PollUpdated(snap)
	}
}

const snapshotRetries = 3

func (s *Service) snapshotWithRetry(pollID string) (models.PollSnapshot, error) {
	var lastErr error
	for attempt := 0; attempt < snapshotRetries; attempt++ {
		snap, err := s.tallies.Snapshot(pollID)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return models.PollSnapshot{}, lastErr
}
