// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/handlers"
	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/rooms"
	"github.com/danielhkuo/live-poll/votes"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, svc *votes.Service, registry *rooms.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg, svc)
	votingHandler := handlers.NewVotingHandler(db, cfg, svc)
	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)
	liveHandler := handlers.NewLiveHandler(db, cfg, registry)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management (admin operations)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/{id}/options", middleware.WithLogging(pollHandler.AddOption))
	mux.HandleFunc("POST /polls/{id}/publish", middleware.WithLogging(pollHandler.PublishPoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Voting operations
	mux.HandleFunc("POST /polls/{id}/voters", middleware.WithLogging(votingHandler.ClaimVoter))
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/votes/me", middleware.WithLogging(votingHandler.MyVote))

	// Results retrieval (public)
	mux.HandleFunc("GET /polls", middleware.WithLogging(resultsHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(resultsHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Live tally streaming. The literal segment wins over the {id}
	// wildcard above, so "live" is never a valid poll ID.
	mux.HandleFunc("GET /polls/live", liveHandler.Serve)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("live-poll API v1"))
	})

	return mux
}
