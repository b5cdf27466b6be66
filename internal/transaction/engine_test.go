// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/poolautomation/poolcore/internal/protocol"
	"github.com/rs/zerolog"
)

type alwaysIdle struct{}

func (alwaysIdle) Idle(time.Duration) bool { return true }

type recordingWriter struct {
	writes [][]byte
}

func (w *recordingWriter) Write(data []byte) error {
	w.writes = append(w.writes, append([]byte(nil), data...))
	return nil
}

func testPacer() *Pacer {
	return NewPacer(PacerConfig{IdleBeforeTx: time.Millisecond, InterFrame: time.Millisecond})
}

func TestEngineSucceedsOnMatchingResponse(t *testing.T) {
	w := &recordingWriter{}
	e := NewEngine(0, protocol.FramingPentair2, w, alwaysIdle{}, testPacer(), nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	expect := &protocol.Descriptor{Peer: 0x10, Action: 0x01}
	txn := NewTransaction(PriorityUser, &protocol.Frame{Dest: 0x10, Action: 0x01}, expect, 200*time.Millisecond, 2)
	e.Submit(txn)

	deadline := time.After(time.Second)
	for len(w.writes) == 0 {
		select {
		case <-deadline:
			t.Fatal("transaction never transmitted")
		case <-time.After(time.Millisecond):
		}
	}

	e.OnFrame(&protocol.Frame{Src: 0x10, Action: 0x01})

	select {
	case r := <-txn.Done():
		if r.Err != nil || r.State != StateSucceeded {
			t.Fatalf("unexpected result: %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("transaction never completed")
	}
}

func TestEngineRetryExhaustion(t *testing.T) {
	w := &recordingWriter{}
	e := NewEngine(0, protocol.FramingPentair2, w, alwaysIdle{}, testPacer(), nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	expect := &protocol.Descriptor{Peer: 0x01, Action: 0x99}
	txn := NewTransaction(PriorityUser, &protocol.Frame{Dest: 0x01, Action: 0x99}, expect, 20*time.Millisecond, 3)
	e.Submit(txn)

	select {
	case r := <-txn.Done():
		if r.Err == nil {
			t.Fatal("expected NoResponse error")
		}
		if r.State != StateFailed {
			t.Fatalf("expected StateFailed, got %v", r.State)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("transaction never resolved")
	}

	// spec.md §8 scenario 3: no more than retries+1 transmissions.
	if len(w.writes) != 4 {
		t.Fatalf("expected 4 transmissions (1 + 3 retries), got %d", len(w.writes))
	}
	if e.RetryCount() != 3 {
		t.Fatalf("expected RetryCount()==3, got %d", e.RetryCount())
	}
}

func TestEngineCancelQueued(t *testing.T) {
	w := &recordingWriter{}
	e := NewEngine(0, protocol.FramingPentair2, w, alwaysIdle{}, testPacer(), nil, zerolog.Nop())

	txn := NewTransaction(PriorityBackground, &protocol.Frame{Dest: 0x01, Action: 0x02}, nil, time.Second, 0)
	e.Submit(txn)
	e.Cancel(txn)

	select {
	case r := <-txn.Done():
		if r.State != StateCancelled {
			t.Fatalf("expected Cancelled, got %v", r.State)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled transaction never resolved")
	}
}
