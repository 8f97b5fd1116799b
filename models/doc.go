// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: title, description, creator_name
  - AddOptionRequest: label
  - ClaimVoterRequest: name
  - SubmitVoteRequest: option_id

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll_id, admin_key
  - AddOptionResponse: option_id
  - PublishPollResponse: poll_id, status
  - ClosePollResponse: closed_at, snapshot
  - ClaimVoterResponse: voter_token
  - SubmitVoteResponse: accepted, snapshot
  - MyVoteResponse: option_id, cast_at
  - PollListResponse: polls
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Poll: poll metadata and lifecycle state
  - Option: voting option with label, position, and running tally
  - Vote: one voter's single choice in a poll

# Live Update Types

Types shared by the vote engine and the websocket layer:

  - PollSnapshot: full per-option counts for one poll, in option order
  - OptionCount: one option's tally inside a snapshot
  - ClientMessage: inbound websocket frame (join_poll, leave_poll)
  - ServerMessage: outbound websocket frame (poll_updated, error)

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Websocket message types:

	MessageJoinPoll    = "join_poll"
	MessageLeavePoll   = "leave_poll"
	MessagePollUpdated = "poll_updated"
	MessageError       = "error"
*/
package models
