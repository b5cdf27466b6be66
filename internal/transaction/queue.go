// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package transaction implements the per-port outbound queue, transmit
// pacer, response matcher, and inbound dispatcher described in
// spec.md §4.4.
package transaction

import (
	"container/heap"
	"context"
	"time"

	"github.com/poolautomation/poolcore/internal/protocol"
)

// Priority is one of the three outbound queue tiers (spec.md §4.4).
// Lower values sort first.
type Priority int

const (
	PrioritySystem Priority = iota
	PriorityUser
	PriorityBackground
)

// State is where a Transaction currently sits in the state machine
// diagrammed in spec.md §4.4.
type State int

const (
	StateQueued State = iota
	StateWaitingForIdle
	StateTransmitting
	StateAwaitingResponse
	StateSucceeded
	StateRetrying
	StateFailed
	StateCancelled
)

// Transaction is one outbound message plus its response expectations.
type Transaction struct {
	Priority   Priority
	Frame      *protocol.Frame
	Expect     *protocol.Descriptor // nil for fire-and-forget messages
	Timeout    time.Duration
	MaxRetries int
	Immediate  bool // fail fast instead of queuing behind a Delay Manager hold

	seq      uint64
	attempts int
	state    State
	result   chan Result
	matchCh  chan *protocol.Frame // internal: engine delivers a matched response here
	deadline time.Time            // caller-supplied overall deadline, zero means none
}

// Result is delivered on Transaction completion.
type Result struct {
	Response *protocol.Frame // nil unless Expect was set and it matched
	Err      error
	State    State
}

// NewTransaction builds a queueable Transaction. Call Submit on an
// Engine to enqueue it; read Done() for the outcome.
func NewTransaction(priority Priority, frame *protocol.Frame, expect *protocol.Descriptor, timeout time.Duration, maxRetries int) *Transaction {
	return &Transaction{
		Priority:   priority,
		Frame:      frame,
		Expect:     expect,
		Timeout:    timeout,
		MaxRetries: maxRetries,
		result:     make(chan Result, 1),
		matchCh:    make(chan *protocol.Frame, 1),
	}
}

// WithDeadline bounds how long Submit will wait across all retries.
func (t *Transaction) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, t.deadline)
}

// Done returns the channel the final Result arrives on.
func (t *Transaction) Done() <-chan Result { return t.result }

func (t *Transaction) complete(r Result) {
	t.state = r.State
	select {
	case t.result <- r:
	default:
	}
}

// txQueue is a priority queue ordered by (priority, enqueue-sequence),
// the ordering spec.md §4.4 specifies for the outbound queue.
type txQueue struct {
	items []*Transaction
	next  uint64
}

func newTxQueue() *txQueue { return &txQueue{} }

func (q *txQueue) push(t *Transaction) {
	t.seq = q.next
	q.next++
	heap.Push(q, t)
}

func (q *txQueue) pop() *Transaction {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*Transaction)
}

// heap.Interface
func (q *txQueue) Len() int { return len(q.items) }
func (q *txQueue) Less(i, j int) bool {
	if q.items[i].Priority != q.items[j].Priority {
		return q.items[i].Priority < q.items[j].Priority
	}
	return q.items[i].seq < q.items[j].seq
}
func (q *txQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *txQueue) Push(x any)    { q.items = append(q.items, x.(*Transaction)) }
func (q *txQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// remove drops a still-queued transaction (cancellation before it
// reaches Transmitting, per spec.md §4.4).
func (q *txQueue) remove(t *Transaction) bool {
	for i, it := range q.items {
		if it == t {
			heap.Remove(q, i)
			return true
		}
	}
	return false
}
