// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rooms implements live-update fan-out: a registry of which
connections are watching which poll, and a dispatcher that pushes each
accepted vote's snapshot to that poll's room.

# Registry

The Registry maps poll IDs to subscriber sets:

	registry.Subscribe(pollID, sub)
	registry.Unsubscribe(pollID, sub)
	registry.Drop(sub) // disconnect cleanup, removes from every room

A room exists only while it has subscribers; broadcasting to a poll nobody
is watching is a no-op.

# Subscriber

The transport layer (the websocket handler) implements Subscriber:

	type Subscriber interface {
		ID() string
		Send(msg []byte) bool // non-blocking
		Close()
	}

Send returning false marks the subscriber dead or saturated; the dispatcher
drops it from the registry and closes it. One slow viewer never stalls a room.

# Dispatcher

The Dispatcher is the Notifier for the vote service. PollUpdated queues a
snapshot without blocking; a single Run goroutine marshals each snapshot once
and fans it out. The single consumer plus per-subscriber ordered buffers
guarantee that a room sees snapshots in vote acceptance order.

	dispatcher := rooms.NewDispatcher(registry)
	go dispatcher.Run(ctx)
	svc := votes.NewService(db, dispatcher)
*/
package rooms
