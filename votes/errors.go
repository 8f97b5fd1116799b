// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import "errors"

// Expected, user-facing outcomes of a vote submission. Handlers map these to
// HTTP statuses; anything else is a persistence failure.
var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is not open for voting")
	ErrUnknownOption = errors.New("option does not belong to this poll")
	ErrDuplicateVote = errors.New("voter has already voted in this poll")
	ErrNoVote        = errors.New("no vote recorded for this voter")
)
