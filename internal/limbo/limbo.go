// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package limbo defines the interfaces through which the auth engine
// talks to the proxy and its pre-game holding world. The proxy owns
// connections and the holding world; this package only names the
// operations the engine needs from them.
package limbo

import "time"

// Conn is one connecting player as the proxy exposes it. Callback
// delivery for a single connection is serialized by the proxy, so
// handlers never see concurrent calls for the same Conn.
type Conn interface {
	// Nickname returns the display name exactly as the client sent it.
	Nickname() string

	// RemoteAddr returns the connection's source address without port.
	RemoteAddr() string

	// UUID returns the identity UUID the proxy assigned or verified
	// for this connection. Empty when not yet resolved.
	UUID() string

	// SendMessage delivers one line of chat-style text.
	SendMessage(text string)

	// UpdateCountdown refreshes the visible auth-time countdown.
	UpdateCountdown(remaining, total time.Duration)

	// HideCountdown removes the countdown affordance.
	HideCountdown()

	// Disconnect terminates the connection with a reason shown to the
	// player.
	Disconnect(reason string)
}

// SessionHandler receives lifecycle callbacks for a connection held in
// the holding world. All three callbacks arrive on the connection's
// own dispatch context.
type SessionHandler interface {
	// OnSpawn fires once the connection materializes in the holding
	// world.
	OnSpawn(player Player)

	// OnChat delivers one already-framed line of player input.
	OnChat(message string)

	// OnDisconnect fires when the connection leaves the holding world
	// for any reason, including admission.
	OnDisconnect()
}

// Player is a connection currently held in the holding world.
type Player interface {
	// Conn returns the underlying connection.
	Conn() Conn

	// Admit releases the player from the holding world into the game.
	Admit()
}

// World is the pre-game holding area.
type World interface {
	// SpawnPlayer places the connection into the holding world and
	// routes its lifecycle through handler.
	SpawnPlayer(conn Conn, handler SessionHandler) error

	// PassLogin continues the connection's login without holding it.
	PassLogin(conn Conn)
}

// Task is a scheduled job handle. Cancel is idempotent.
type Task interface {
	Cancel()
}

// Scheduler runs repeating jobs off the connection dispatch paths.
type Scheduler interface {
	// ScheduleRepeating invokes fn every interval until the returned
	// task is cancelled.
	ScheduleRepeating(interval time.Duration, fn func()) Task
}
