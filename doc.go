// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Live Poll API server.

Live Poll is a real-time polling service: voters cast a single vote per
poll and every viewer watching the poll over a websocket receives an
updated tally within moments of each accepted vote.

# Starting the Server

The server reads environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -t sqlite -d "file:live-poll.db"

# Configuration

Settings:

  - DATABASE_URL (-d): Database connection string
  - DATABASE_TYPE (-t): "postgres" or "sqlite" (default: sqlite)
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - ALLOWED_ORIGINS (-origins): Comma-separated websocket origin patterns
  - PORT (-p): Server port (default: 3318)

A .env file in the working directory is loaded at startup if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results, live websocket)
  - votes: Vote ledger, tally store, and the transactional vote service
  - rooms: Room registry and broadcast dispatcher for live viewers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and wire message types
  - auth: Token generation and validation
  - db: Schema creation and driver error classification
  - cliparse: Configuration parsing

On startup the server reconciles every option counter against the vote
ledger, so counters recover from any drift before traffic is served.

See package documentation for each component.
*/
package main
