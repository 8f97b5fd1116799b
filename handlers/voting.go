// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/live-poll/auth"
	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/db"
	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/votes"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	votes *votes.Service
}

func NewVotingHandler(database *sql.DB, cfg cliparse.Config, svc *votes.Service) *VotingHandler {
	return &VotingHandler{db: database, cfg: cfg, votes: svc}
}

// ClaimVoter handles POST /polls/:id/voters
// Hands out the voter token that stands in for a session identity.
func (h *VotingHandler) ClaimVoter(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	// Parse request
	var req models.ClaimVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) < 2 || len(req.Name) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 2-50 characters")
		return
	}

	// Find poll
	var status string
	err := h.db.QueryRow(`
		SELECT status FROM poll WHERE id = $1
	`, pollID).Scan(&status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Voter identities are only handed out while the poll accepts votes
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is not open for voting")
		return
	}

	// Generate voter token
	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		slog.Error("failed to generate voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to claim voter name")
		return
	}

	// Insert voter claim (UNIQUE constraint will prevent duplicate names)
	_, err = h.db.Exec(`
		INSERT INTO voter (poll_id, name, voter_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, req.Name, voterToken, time.Now())

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Name already taken")
			return
		}
		slog.Error("failed to insert voter claim", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to claim voter name")
		return
	}

	slog.Info("voter claimed", "poll_id", pollID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.ClaimVoterResponse{
		VoterToken: voterToken,
	})
}

// SubmitVote handles POST /polls/:id/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	// Get voter token from header
	voterToken := r.Header.Get("X-Voter-Token")
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}

	// Parse request
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	// Verify voter token is valid for this poll
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM voter
			WHERE poll_id = $1 AND voter_token = $2
		)
	`, pollID, voterToken).Scan(&exists)

	if err != nil {
		slog.Error("failed to verify voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid voter token for this poll")
		return
	}

	// The engine does the rest: validation, ledger write, tally increment,
	// and the room broadcast.
	snap, err := h.votes.SubmitVote(r.Context(), pollID, voterToken, req.OptionID)
	if err != nil {
		switch {
		case errors.Is(err, votes.ErrPollNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		case errors.Is(err, votes.ErrPollClosed):
			middleware.ErrorResponse(w, http.StatusConflict, "Poll is not open for voting")
		case errors.Is(err, votes.ErrUnknownOption):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option_id for this poll")
		case errors.Is(err, votes.ErrDuplicateVote):
			middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this poll")
		default:
			slog.Error("failed to submit vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		}
		return
	}

	// IP hash kept only in logs for abuse correlation
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)
	slog.Info("vote recorded", "poll_id", pollID, "option_id", req.OptionID, "ip_hash", ipHash)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Accepted: true,
		Snapshot: snap,
	})
}

// MyVote handles GET /polls/:id/votes/me
// Returns which option this voter picked, so a reconnecting client can
// restore its selection.
func (h *VotingHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	voterToken := r.Header.Get("X-Voter-Token")
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}

	vote, err := h.votes.Ledger().VoteFor(pollID, voterToken)
	if errors.Is(err, votes.ErrNoVote) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vote recorded")
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{
		OptionID: vote.OptionID,
		CastAt:   vote.CastAt,
	})
}
