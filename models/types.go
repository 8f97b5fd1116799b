// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Live message type constants (websocket frames)
const (
	MessageJoinPoll    = "join_poll"
	MessageLeavePoll   = "leave_poll"
	MessagePollUpdated = "poll_updated"
	MessageError       = "error"
)

// Request types

type CreatePollRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
}

type AddOptionRequest struct {
	Label string `json:"label"`
}

type ClaimVoterRequest struct {
	Name string `json:"name"`
}

type SubmitVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	AdminKey string `json:"admin_key"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type PublishPollResponse struct {
	PollID string `json:"poll_id"`
	Status string `json:"status"`
}

type ClosePollResponse struct {
	ClosedAt time.Time    `json:"closed_at"`
	Snapshot PollSnapshot `json:"snapshot"`
}

type ClaimVoterResponse struct {
	VoterToken string `json:"voter_token"`
}

type SubmitVoteResponse struct {
	Accepted bool         `json:"accepted"`
	Snapshot PollSnapshot `json:"snapshot"`
}

type MyVoteResponse struct {
	OptionID string    `json:"option_id"`
	CastAt   time.Time `json:"cast_at"`
}

type PollListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	Status      string `json:"status"`
	TotalVotes  int    `json:"total_votes"`
	CreatedAgo  string `json:"created_ago"`
}

type PollListResponse struct {
	Polls []PollListItem `json:"polls"`
}

// Domain types

type Poll struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatorName string     `json:"creator_name"`
	Status      string     `json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
	Votes    int    `json:"votes"`
}

type Vote struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	VoterToken string    `json:"-"` // Never expose in JSON
	OptionID   string    `json:"option_id"`
	CastAt     time.Time `json:"cast_at"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

// Live update types

// OptionCount is one option's tally inside a snapshot.
type OptionCount struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

// PollSnapshot is the full per-option state of one poll, in option order.
// This is the payload pushed to every room subscriber after each accepted vote.
type PollSnapshot struct {
	PollID     string        `json:"poll_id"`
	Title      string        `json:"title"`
	Status     string        `json:"status"`
	Options    []OptionCount `json:"options"`
	TotalVotes int           `json:"total_votes"`
}

// ClientMessage is an inbound websocket frame from a viewer.
type ClientMessage struct {
	Type   string `json:"type"`
	PollID string `json:"poll_id"`
}

// ServerMessage is an outbound websocket frame to a viewer.
type ServerMessage struct {
	Type    string        `json:"type"`
	Poll    *PollSnapshot `json:"poll,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
