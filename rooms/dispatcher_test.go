// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rooms

import (
	"encoding/json"
	"testing"

	"github.com/danielhkuo/live-poll/models"
)

func snapshotFor(pollID string, total int) models.PollSnapshot {
	return models.PollSnapshot{
		PollID: pollID,
		Title:  "Test Poll",
		Status: models.StatusOpen,
		Options: []models.OptionCount{
			{OptionID: "opt-1", Label: "A", Count: total},
		},
		TotalVotes: total,
	}
}

func TestBroadcastReachesRoom(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	sub1 := newFakeSubscriber("conn-1")
	sub2 := newFakeSubscriber("conn-2")
	outsider := newFakeSubscriber("conn-3")
	registry.Subscribe("poll-1", sub1)
	registry.Subscribe("poll-1", sub2)
	registry.Subscribe("poll-2", outsider)

	dispatcher.broadcast(snapshotFor("poll-1", 4))

	for _, sub := range []*fakeSubscriber{sub1, sub2} {
		msgs := sub.messages()
		if len(msgs) != 1 {
			t.Fatalf("Subscriber %s: expected 1 message, got %d", sub.ID(), len(msgs))
		}

		var msg models.ServerMessage
		if err := json.Unmarshal(msgs[0], &msg); err != nil {
			t.Fatalf("Subscriber %s: invalid JSON: %v", sub.ID(), err)
		}
		if msg.Type != models.MessagePollUpdated {
			t.Errorf("Expected type %q, got %q", models.MessagePollUpdated, msg.Type)
		}
		if msg.Poll == nil || msg.Poll.TotalVotes != 4 {
			t.Errorf("Expected snapshot with total_votes 4, got %+v", msg.Poll)
		}
	}

	// The other room heard nothing
	if got := len(outsider.messages()); got != 0 {
		t.Errorf("Expected 0 messages to other room, got %d", got)
	}
}

func TestBroadcastEmptyRoom(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	// Must not panic or error; just a no-op
	dispatcher.broadcast(snapshotFor("nobody-watching", 1))
}

func TestBroadcastReapsDeadSubscriber(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	live := newFakeSubscriber("conn-live")
	dead := newFakeSubscriber("conn-dead")
	dead.alive = false

	registry.Subscribe("poll-1", live)
	registry.Subscribe("poll-1", dead)

	dispatcher.broadcast(snapshotFor("poll-1", 1))

	// Dead subscriber is removed and closed; the live one is untouched
	if !dead.isClosed() {
		t.Error("Expected dead subscriber to be closed")
	}
	if registry.RoomSize("poll-1") != 1 {
		t.Errorf("Expected room size 1 after reap, got %d", registry.RoomSize("poll-1"))
	}
	if got := len(live.messages()); got != 1 {
		t.Errorf("Expected live subscriber to get 1 message, got %d", got)
	}

	// Subsequent broadcasts skip the reaped connection entirely
	dispatcher.broadcast(snapshotFor("poll-1", 2))
	if got := len(dead.messages()); got != 0 {
		t.Errorf("Expected 0 messages to reaped subscriber, got %d", got)
	}
	if got := len(live.messages()); got != 2 {
		t.Errorf("Expected live subscriber to have 2 messages, got %d", got)
	}
}

// TestDeliveryOrder verifies that snapshots queued through PollUpdated reach
// a subscriber in the order they were queued
func TestDeliveryOrder(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	sub := newFakeSubscriber("conn-1")
	registry.Subscribe("poll-1", sub)

	numEvents := 10
	for i := 1; i <= numEvents; i++ {
		dispatcher.PollUpdated(snapshotFor("poll-1", i))
	}

	// Drain the queue the way Run does, without goroutine timing in the test
	for i := 0; i < numEvents; i++ {
		dispatcher.broadcast(<-dispatcher.events)
	}

	msgs := sub.messages()
	if len(msgs) != numEvents {
		t.Fatalf("Expected %d messages, got %d", numEvents, len(msgs))
	}
	for i, raw := range msgs {
		var msg models.ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("Message %d: invalid JSON: %v", i, err)
		}
		if msg.Poll.TotalVotes != i+1 {
			t.Fatalf("Message %d has total_votes %d, want %d", i, msg.Poll.TotalVotes, i+1)
		}
	}
}

func TestPollUpdatedNeverBlocks(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	// No consumer running; overflow past the buffer must drop, not block
	for i := 0; i < eventBuffer+10; i++ {
		dispatcher.PollUpdated(snapshotFor("poll-1", i))
	}

	if got := len(dispatcher.events); got != eventBuffer {
		t.Errorf("Expected %d queued events, got %d", eventBuffer, got)
	}
}
