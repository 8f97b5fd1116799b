// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rooms

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/danielhkuo/live-poll/models"
)

// eventBuffer bounds how many snapshots may queue between the vote path and
// the fan-out goroutine. Snapshots carry full poll state, so under overflow
// a later event supersedes anything dropped.
const eventBuffer = 256

// Dispatcher fans tally-changed snapshots out to room subscribers. A single
// Run goroutine consumes the event channel, which preserves per-poll
// delivery order; each subscriber's own ordered send buffer carries it the
// rest of the way.
type Dispatcher struct {
	registry *Registry
	events   chan models.PollSnapshot
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		events:   make(chan models.PollSnapshot, eventBuffer),
	}
}

// PollUpdated queues a snapshot for broadcast. It never blocks the caller:
// the vote path must not stall on slow delivery, so on a full backlog the
// event is dropped with a warning.
func (d *Dispatcher) PollUpdated(snapshot models.PollSnapshot) {
	select {
	case d.events <- snapshot:
	default:
		slog.Warn("dispatcher backlog full, dropping poll update",
			"poll_id", snapshot.PollID,
			"total_votes", snapshot.TotalVotes,
		)
	}
}

// Run consumes queued snapshots until the context is cancelled. Run should
// be called in its own goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("broadcast dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("broadcast dispatcher stopped")
			return
		case snap := <-d.events:
			d.broadcast(snap)
		}
	}
}

// broadcast pushes one snapshot to every subscriber of its poll's room.
// Delivery is best-effort per connection: a dead or saturated subscriber is
// logged and reaped, never allowed to fail the others.
func (d *Dispatcher) broadcast(snap models.PollSnapshot) {
	subs := d.registry.SubscribersOf(snap.PollID)
	if len(subs) == 0 {
		// Empty room: dispatch is a no-op, not an error.
		return
	}

	msg, err := json.Marshal(models.ServerMessage{
		Type: models.MessagePollUpdated,
		Poll: &snap,
	})
	if err != nil {
		slog.Error("failed to encode poll update", "poll_id", snap.PollID, "error", err)
		return
	}

	for _, sub := range subs {
		if !sub.Send(msg) {
			slog.Warn("reaping unresponsive room subscriber",
				"poll_id", snap.PollID,
				"subscriber", sub.ID(),
			)
			d.registry.Drop(sub)
			sub.Close()
		}
	}
}
