// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package port

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestManagedWriteAndRead(t *testing.T) {
	a, b := NewLoopbackPair()
	log := zerolog.Nop()
	m := NewManaged(Identity{ID: 0, Name: "primary"}, LoopbackOpener(a), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	deadline := time.After(time.Second)
	for m.State() != StateOpen {
		select {
		case <-deadline:
			t.Fatal("port never reached StateOpen")
		case <-time.After(time.Millisecond):
		}
	}

	if err := m.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 8)
	n, err := b.Read(buf)
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if n != 3 || buf[0] != 1 || buf[1] != 2 || buf[2] != 3 {
		t.Fatalf("unexpected peer read: %v", buf[:n])
	}

	if _, err := b.Write([]byte{9, 8, 7}); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	got := make([]byte, 0, 3)
	timeout := time.After(time.Second)
	for len(got) < 3 {
		select {
		case bb := <-m.Inbound():
			got = append(got, bb)
		case <-timeout:
			t.Fatalf("timed out waiting for inbound bytes, got %v so far", got)
		}
	}
	if got[0] != 9 || got[1] != 8 || got[2] != 7 {
		t.Fatalf("unexpected inbound bytes: %v", got)
	}

	stats := m.Stats()
	if stats.BytesOut != 3 {
		t.Fatalf("expected BytesOut==3, got %d", stats.BytesOut)
	}

	m.Close()
}

func TestManagedIdleSignal(t *testing.T) {
	a, _ := NewLoopbackPair()
	m := NewManaged(Identity{ID: 1, Name: "aux"}, LoopbackOpener(a), zerolog.Nop())
	if !m.Idle(time.Millisecond) {
		t.Fatal("a port that has never received a byte should be idle")
	}
}
