// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/votes"
)

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	votes *votes.Service
}

func NewResultsHandler(database *sql.DB, cfg cliparse.Config, svc *votes.Service) *ResultsHandler {
	return &ResultsHandler{db: database, cfg: cfg, votes: svc}
}

// GetPoll handles GET /polls/:id
// Returns poll details and options with their current counts. Results are
// live from the moment the poll opens; the websocket stream keeps them fresh.
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var poll models.Poll
	err := h.db.QueryRow(`
		SELECT id, title, description, creator_name, status, closed_at, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CreatorName,
		&poll.Status, &poll.ClosedAt, &poll.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Get options in poll order
	rows, err := h.db.Query(`
		SELECT id, poll_id, label, position, votes
		FROM option
		WHERE poll_id = $1
		ORDER BY position, id
	`, poll.ID)

	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.Position, &opt.Votes); err != nil {
			slog.Error("failed to scan option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		options = append(options, opt)
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    poll,
		Options: options,
	})
}

// GetResults handles GET /polls/:id/results
// Returns the same snapshot shape that room subscribers receive, so a page
// can render once from REST and then apply pushes on top.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	snap, err := h.votes.Snapshot(pollID)
	if errors.Is(err, votes.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to snapshot poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// ListPolls handles GET /polls
// Returns published polls, newest first.
func (h *ResultsHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT p.id, p.title, p.description, p.creator_name, p.status, p.created_at,
		       COALESCE(SUM(o.votes), 0)
		FROM poll p
		LEFT JOIN option o ON p.id = o.poll_id
		WHERE p.status IN ($1, $2)
		GROUP BY p.id, p.title, p.description, p.creator_name, p.status, p.created_at
		ORDER BY p.created_at DESC
	`, models.StatusOpen, models.StatusClosed)

	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.PollListItem{}
	for rows.Next() {
		var item models.PollListItem
		var poll models.Poll
		if err := rows.Scan(
			&poll.ID, &poll.Title, &poll.Description, &poll.CreatorName,
			&poll.Status, &poll.CreatedAt, &item.TotalVotes,
		); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		item.ID = poll.ID
		item.Title = poll.Title
		item.Description = poll.Description
		item.CreatorName = poll.CreatorName
		item.Status = poll.Status
		item.CreatedAgo = humanize.Time(poll.CreatedAt)
		polls = append(polls, item)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{Polls: polls})
}
