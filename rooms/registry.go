// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rooms

import (
	"log/slog"
	"sync"
)

// Subscriber is the send side of one live connection. Send must not block:
// it reports false when the subscriber can no longer accept messages (buffer
// full or connection gone), at which point the dispatcher reaps it.
type Subscriber interface {
	ID() string
	Send(msg []byte) bool
	Close()
}

// Registry tracks which live connections are watching which poll. Both the
// subscribe path and the disconnect-cleanup path go through the same mutex,
// so a connection can never linger in a room after its transport reported
// the disconnect.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[Subscriber]struct{})}
}

// Subscribe adds sub to the poll's room, creating the room on first join.
// Subscribing twice is a no-op.
func (r *Registry) Subscribe(pollID string, sub Subscriber) {
	r.mu.Lock()
	room, ok := r.rooms[pollID]
	if !ok {
		room = make(map[Subscriber]struct{})
		r.rooms[pollID] = room
	}
	room[sub] = struct{}{}
	size := len(room)
	r.mu.Unlock()

	slog.Info("room subscriber joined", "poll_id", pollID, "subscriber", sub.ID(), "room_size", size)
}

// Unsubscribe removes sub from one room, deleting the room when it empties.
func (r *Registry) Unsubscribe(pollID string, sub Subscriber) {
	r.mu.Lock()
	if room, ok := r.rooms[pollID]; ok {
		delete(room, sub)
		if len(room) == 0 {
			delete(r.rooms, pollID)
		}
	}
	r.mu.Unlock()

	slog.Info("room subscriber left", "poll_id", pollID, "subscriber", sub.ID())
}

// Drop removes sub from every room. Called when a connection disconnects,
// with or without an explicit leave.
func (r *Registry) Drop(sub Subscriber) {
	r.mu.Lock()
	for pollID, room := range r.rooms {
		if _, ok := room[sub]; ok {
			delete(room, sub)
			if len(room) == 0 {
				delete(r.rooms, pollID)
			}
		}
	}
	r.mu.Unlock()
}

// SubscribersOf returns a copy of the poll's subscriber set. An unknown or
// empty room yields nil.
func (r *Registry) SubscribersOf(pollID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[pollID]
	if len(room) == 0 {
		return nil
	}
	subs := make([]Subscriber, 0, len(room))
	for sub := range room {
		subs = append(subs, sub)
	}
	return subs
}

// RoomSize returns the number of subscribers watching a poll.
func (r *Registry) RoomSize(pollID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[pollID])
}
