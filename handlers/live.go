// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/rooms"
)

// sendBuffer is per-connection. A viewer that falls this far behind is
// dropped rather than allowed to stall its room.
const sendBuffer = 32

const writeTimeout = 5 * time.Second

type LiveHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	registry *rooms.Registry
}

func NewLiveHandler(database *sql.DB, cfg cliparse.Config, registry *rooms.Registry) *LiveHandler {
	return &LiveHandler{db: database, cfg: cfg, registry: registry}
}

// Serve handles GET /polls/live
// Upgrades to a websocket and processes join_poll / leave_poll frames until
// the viewer disconnects. Disconnect at any point purges the connection from
// every room it joined.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.AllowedOrigins,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := newLiveClient(conn)
	slog.Info("live connection opened", "subscriber", client.ID(), "remote", r.RemoteAddr)

	go client.writeLoop()
	defer func() {
		h.registry.Drop(client)
		client.Close()
		slog.Info("live connection closed", "subscriber", client.ID())
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Normal closure and network errors land here; the deferred
			// Drop removes us from every room either way.
			return
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.sendError("malformed message")
			continue
		}

		switch msg.Type {
		case models.MessageJoinPoll:
			h.joinPoll(client, msg.PollID)
		case models.MessageLeavePoll:
			if msg.PollID != "" {
				h.registry.Unsubscribe(msg.PollID, client)
			}
		default:
			client.sendError("unknown message type: " + msg.Type)
		}
	}
}

func (h *LiveHandler) joinPoll(client *liveClient, pollID string) {
	if pollID == "" {
		client.sendError("poll_id is required")
		return
	}

	// Only published polls have rooms
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1 AND status != $2)
	`, pollID, models.StatusDraft).Scan(&exists)
	if err != nil {
		slog.Error("failed to query poll for join", "error", err, "poll_id", pollID)
		client.sendError("failed to join poll")
		return
	}
	if !exists {
		client.sendError("poll not found")
		return
	}

	h.registry.Subscribe(pollID, client)
}

// liveClient adapts one websocket connection to rooms.Subscriber. Writes go
// through a buffered channel drained by a single writeLoop goroutine, so
// broadcast order is preserved per connection and the dispatcher never
// touches the socket directly.
type liveClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newLiveClient(conn *websocket.Conn) *liveClient {
	return &liveClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *liveClient) ID() string { return c.id }

// Send queues a message without blocking. False means the connection is
// closed or its buffer is full; the caller is expected to reap us.
func (c *liveClient) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *liveClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
	})
}

func (c *liveClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.Close()
				return
			}
		}
	}
}

// sendError pushes an error frame to this connection only.
func (c *liveClient) sendError(reason string) {
	msg, err := json.Marshal(models.ServerMessage{
		Type:    models.MessageError,
		Message: reason,
	})
	if err != nil {
		return
	}
	c.Send(msg)
}
