// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared helpers for package tests: an isolated
// per-test database, fixture builders, and HTTP assertion utilities.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/live-poll/auth"
	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/db"
)

// SetupTestDB creates a fresh sqlite database in a per-test temp directory
// with the full schema. The file is removed with the temp dir on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "live-poll-test.db")
	dsn := "file:" + path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Single connection keeps sqlite writes serialized under concurrent tests
	database.SetMaxOpenConns(1)

	if err := db.CreateSchema(database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { database.Close() })
	return database
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   "sqlite",
		AdminKeySalt:   "test-admin-salt",
		AllowedOrigins: []string{"*"},
	}
}

// CreateTestPoll creates a poll in the database and returns its ID and admin key
// status should be "draft", "open", or "closed"
func CreateTestPoll(t *testing.T, database *sql.DB, cfg cliparse.Config, status string) (pollID, adminKey string) {
	t.Helper()

	pollID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(pollID, cfg.AdminKeySalt)

	var closedAt *time.Time
	if status == "closed" {
		now := time.Now()
		closedAt = &now
	}

	_, err := database.Exec(`
		INSERT INTO poll (id, title, description, creator_name, status, closed_at, created_at)
		VALUES ($1, 'Test Poll', 'A test poll', 'TestUser', $2, $3, $4)
	`, pollID, status, closedAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID, adminKey
}

// AddTestOption adds an option to a poll and returns the option ID
func AddTestOption(t *testing.T, database *sql.DB, pollID, label string, position int) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	_, err := database.Exec(`
		INSERT INTO option (id, poll_id, label, position, votes)
		VALUES ($1, $2, $3, $4, 0)
	`, optionID, pollID, label, position)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestVoter claims a name on a poll and returns the voter token
func CreateTestVoter(t *testing.T, database *sql.DB, pollID, name string) string {
	t.Helper()

	voterToken, _ := auth.GenerateVoterToken()
	_, err := database.Exec(`
		INSERT INTO voter (poll_id, voter_token, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, voterToken, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterToken
}

// CastTestVote writes a vote row directly and bumps the option counter,
// bypassing the vote service. Useful for seeding tally state.
func CastTestVote(t *testing.T, database *sql.DB, pollID, voterToken, optionID string) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := database.Exec(`
		INSERT INTO vote (id, poll_id, voter_token, option_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, voterToken, optionID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	_, err = database.Exec(`
		UPDATE option SET votes = votes + 1 WHERE id = $1 AND poll_id = $2
	`, optionID, pollID)
	if err != nil {
		t.Fatalf("Failed to bump option counter: %v", err)
	}

	return voteID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
