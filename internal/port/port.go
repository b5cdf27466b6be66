// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package port implements the Port Layer (spec.md §4.1): a named,
// numbered RS-485 endpoint over native serial, TCP-bridged serial, a
// websocket-bridged serial peer, or an in-memory loopback used by the
// offline simulator. Every transport is wrapped by Managed, which adds
// the shared reconnect/backoff state machine and idle-bus observation
// so the Transaction Engine never has to know which transport it has.
package port

import (
	"context"
	"io"
	"time"
)

// Transport is the minimal byte-stream contract a concrete transport
// must satisfy. Managed wraps a Transport to add lifecycle and stats.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// Opener constructs a fresh Transport connection. Managed calls this
// on initial open and on every reconnect attempt.
type Opener func(ctx context.Context) (Transport, error)

// State is the lifecycle state of a Managed port.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "closed"
	}
}

// Stats is a point-in-time, lock-free-to-read snapshot of a port's
// connection counters (spec.md §4.1).
type Stats struct {
	State      State
	BytesIn    uint64
	BytesOut   uint64
	Reconnects uint64
	LastError  string
}

// Identity names a Port for logging, error payloads, and routing.
// Primary is id=0; auxiliary ports are 1..N (spec.md §4.1).
type Identity struct {
	ID   int
	Name string
}

const (
	// idleGraceDefault is the default "no byte received for >=" window
	// used to derive the bus-idle signal absent a pacer override.
	idleGraceDefault = 40 * time.Millisecond

	backoffInitial = 1 * time.Second
	backoffCeiling = 30 * time.Second
	livenessWindow = 2 * time.Second
)
