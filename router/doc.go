// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Live Poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, svc, registry)

# Endpoints

Health:

	GET /health

Poll management (admin, requires X-Admin-Key):

	POST /polls              - Create poll
	POST /polls/{id}/options - Add option (draft only)
	POST /polls/{id}/publish - Open for voting
	POST /polls/{id}/close   - Freeze the tally

Voting (requires X-Voter-Token except for claims):

	POST /polls/{id}/voters   - Claim voter identity
	POST /polls/{id}/votes    - Cast a vote (one per voter)
	GET  /polls/{id}/votes/me - Retrieve own vote

Results (public):

	GET /polls              - List published polls
	GET /polls/{id}         - Poll info and options
	GET /polls/{id}/results - Current tally snapshot

Live streaming:

	GET /polls/live - Websocket; join_poll/leave_poll frames,
	                  poll_updated pushes on every accepted vote

# Handler Initialization

The router creates handler instances with dependency injection:

	pollHandler := handlers.NewPollHandler(db, cfg, svc)
	votingHandler := handlers.NewVotingHandler(db, cfg, svc)
	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)
	liveHandler := handlers.NewLiveHandler(db, cfg, registry)

Handlers receive the database connection, configuration, and the vote
service or room registry they depend on.
*/
package router
