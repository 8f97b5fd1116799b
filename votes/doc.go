// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes implements the vote engine: the ledger, the tally counters,
and the service that ties them together.

# Components

  - Ledger: one row per (poll, voter). The schema's UNIQUE constraint makes
    the one-vote rule atomic under concurrency.
  - TallyStore: per-option counters derived from the ledger, plus Recount /
    RecountAll reconciliation that rebuilds them from it.
  - Service: the only writer. Validates the poll, records the vote and
    increments the counter in one transaction, then emits one snapshot per
    accepted vote to the Notifier.

# Concurrency Model

All mutations for one poll are serialized by a per-poll mutex held across the
whole submit path (validation, transaction, snapshot, notification). Votes on
different polls run fully in parallel. Because the notification happens under
the lock and the Notifier must not block, snapshots reach the broadcast layer
in vote acceptance order.

# Error Taxonomy

Expected outcomes are sentinel errors checked with errors.Is:

	votes.ErrPollNotFound
	votes.ErrPollClosed
	votes.ErrUnknownOption
	votes.ErrDuplicateVote
	votes.ErrNoVote

Any other error from SubmitVote is a persistence failure. If it happens
before commit nothing was written and the submission is safely retryable.

# Usage

	svc := votes.NewService(db, dispatcher)
	snap, err := svc.SubmitVote(ctx, pollID, voterToken, optionID)
	switch {
	case errors.Is(err, votes.ErrDuplicateVote):
		// 409
	case errors.Is(err, votes.ErrUnknownOption):
		// 400
	}
*/
package votes
