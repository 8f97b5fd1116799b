// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Live Poll API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, publish, close)
  - VotingHandler: Voter claims and vote submission
  - ResultsHandler: Poll info, tallies, and listings
  - LiveHandler: Websocket endpoint for live tally streaming

Handlers are created via constructor functions that accept *sql.DB, Config,
and the services they depend on:

	pollHandler := handlers.NewPollHandler(db, cfg, svc)

# Poll Lifecycle

Polls progress through three states: draft → open → closed

	POST /polls              → CreatePoll (returns admin_key)
	POST /polls/{id}/options → AddOption (draft only)
	POST /polls/{id}/publish → PublishPoll (requires 2+ options)
	POST /polls/{id}/close   → ClosePoll (freezes the tally)

Admin operations require the X-Admin-Key header.

# Voting Flow

Voters claim a name on an open poll and then cast exactly one vote:

	POST /polls/{id}/voters → ClaimVoter (returns voter_token)
	POST /polls/{id}/votes  → SubmitVote (at most one per voter)
	GET  /polls/{id}/votes/me → MyVote

Voter operations require the X-Voter-Token header. Vote submission is
delegated to votes.Service, which records the ballot and updates the tally
in a single transaction.

# Live Streaming

GET /polls/live upgrades to a websocket. Viewers send join_poll and
leave_poll frames; every accepted vote on a joined poll pushes a
poll_updated frame carrying a full tally snapshot. Connections that stop
draining their buffer are dropped from their rooms.
*/
package handlers
