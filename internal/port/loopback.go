// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package port

import (
	"context"
	"io"
)

// Loopback is an in-memory Transport used by the standalone simulator
// (spec.md §4.1 "in-memory loopback") and by the port and core test
// suites. Writes to one side become reads on the other.
type Loopback struct {
	toPeer   chan []byte
	fromPeer chan []byte
	closed   chan struct{}
}

// NewLoopbackPair returns two ends of an in-memory duplex pipe.
func NewLoopbackPair() (a, b *Loopback) {
	ab := make(chan []byte, 256)
	ba := make(chan []byte, 256)
	closed := make(chan struct{})
	a = &Loopback{toPeer: ab, fromPeer: ba, closed: closed}
	b = &Loopback{toPeer: ba, fromPeer: ab, closed: closed}
	return a, b
}

func (l *Loopback) Read(p []byte) (int, error) {
	select {
	case data, ok := <-l.fromPeer:
		if !ok {
			return 0, io.EOF
		}
		return copy(p, data), nil
	case <-l.closed:
		return 0, io.EOF
	}
}

func (l *Loopback) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	select {
	case l.toPeer <- cp:
		return len(p), nil
	case <-l.closed:
		return 0, io.ErrClosedPipe
	}
}

func (l *Loopback) Close() error {
	return nil
}

// LoopbackOpener returns an Opener that always hands back the same
// pre-built Loopback end, for wiring the simulator into Managed.
func LoopbackOpener(end *Loopback) Opener {
	return func(_ context.Context) (Transport, error) {
		return end, nil
	}
}
