// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package transaction

import (
	"context"
	"sync"
	"time"

	"github.com/poolautomation/poolcore/internal/poolerr"
	"github.com/poolautomation/poolcore/internal/protocol"
	"github.com/rs/zerolog"
)

// PortWriter is the narrow write surface Engine needs from a port.Managed.
type PortWriter interface {
	Write(data []byte) error
}

// SpontaneousHandler receives an inbound frame that did not complete
// any in-flight transaction (spec.md §4.4: "unmatched frames are
// routed to the Board Dispatch as spontaneous status").
type SpontaneousHandler func(f *protocol.Frame)

// Engine is the per-port transaction engine (spec.md §4.4): an
// outbound queue, a pacer, a response matcher, and an inbound
// dispatcher. One Engine owns one port; engines across ports run
// independently (spec.md §5).
type Engine struct {
	portID  int
	framing protocol.Framing
	writer  PortWriter
	probe   idleProbe
	pacer   *Pacer
	log     zerolog.Logger

	spontaneous SpontaneousHandler

	mu       sync.Mutex
	queue    *txQueue
	inFlight *Transaction
	notify   chan struct{}

	retryCount uint64 // total retry transmissions, for the spec.md §8 bounded-retry invariant
}

// NewEngine constructs an Engine. writer performs the actual byte
// write (typically *port.Managed); probe reports bus idle state.
func NewEngine(portID int, framing protocol.Framing, writer PortWriter, probe idleProbe, pacer *Pacer, spontaneous SpontaneousHandler, log zerolog.Logger) *Engine {
	return &Engine{
		portID:      portID,
		framing:     framing,
		writer:      writer,
		probe:       probe,
		pacer:       pacer,
		spontaneous: spontaneous,
		queue:       newTxQueue(),
		notify:      make(chan struct{}, 1),
		log:         log.With().Int("portId", portID).Logger(),
	}
}

func (e *Engine) wake() {
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// Submit enqueues t and returns immediately; read t.Done() for the
// outcome. Priority and enqueue order determine when it is serviced
// (spec.md §4.4).
func (e *Engine) Submit(t *Transaction) {
	e.mu.Lock()
	t.state = StateQueued
	e.queue.push(t)
	e.mu.Unlock()
	e.wake()
}

// Cancel aborts t. A transaction still Queued is dropped outright, and
// one AwaitingResponse resolves as Cancelled at once. In any other
// state (mid-Transmitting, waiting for an idle bus, or in a retry
// backoff) Cancel has no effect and t runs to its normal outcome.
func (e *Engine) Cancel(t *Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.remove(t) {
		t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
		return
	}
	if e.inFlight == t && t.state != StateTransmitting {
		t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
		e.inFlight = nil
	}
}

// RetryCount returns how many retry (not initial) transmissions have
// occurred, for verifying spec.md §8's bounded-retry invariant.
func (e *Engine) RetryCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retryCount
}

// Run drives the outbound half of the engine until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case <-e.notify:
		case <-time.After(20 * time.Millisecond):
		}
		e.serviceOne(ctx)
	}
}

func (e *Engine) drain() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		t := e.queue.pop()
		if t == nil {
			break
		}
		t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
	}
}

func (e *Engine) serviceOne(ctx context.Context) {
	e.mu.Lock()
	if e.inFlight != nil {
		e.mu.Unlock()
		return
	}
	t := e.queue.pop()
	e.mu.Unlock()
	if t == nil {
		return
	}

	t.state = StateWaitingForIdle
	if err := e.pacer.WaitForSlot(ctx, e.probe); err != nil {
		t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
		return
	}

	e.transmitAndAwait(ctx, t)
}

func (e *Engine) transmitAndAwait(ctx context.Context, t *Transaction) {
	wire, err := protocol.EncodeFrame(e.framing, t.Frame)
	if err != nil {
		t.complete(Result{Err: poolerr.Internal(err), State: StateFailed})
		return
	}

	t.state = StateTransmitting
	werr := e.writer.Write(wire)
	e.pacer.MarkTransmitComplete(time.Now())
	t.attempts++
	if t.attempts > 1 {
		e.mu.Lock()
		e.retryCount++
		e.mu.Unlock()
	}
	if werr != nil {
		e.finishOrRetry(ctx, t, nil, poolerr.PortClosed(e.portID))
		return
	}

	if t.Expect == nil {
		t.complete(Result{State: StateSucceeded})
		return
	}

	e.mu.Lock()
	t.state = StateAwaitingResponse
	e.inFlight = t
	e.mu.Unlock()

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f := <-t.matchCh:
		t.complete(Result{Response: f, State: StateSucceeded})
		return
	case <-timer.C:
		e.mu.Lock()
		if e.inFlight == t {
			e.inFlight = nil
		}
		e.mu.Unlock()
		e.finishOrRetry(ctx, t, nil, poolerr.NoResponse(e.portID, descriptorLabel(t.Expect)))
	case <-ctx.Done():
		e.mu.Lock()
		if e.inFlight == t {
			e.inFlight = nil
		}
		e.mu.Unlock()
		t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
	}
}

func descriptorLabel(d *protocol.Descriptor) string {
	if d == nil {
		return ""
	}
	return d.Correlation
}

func (e *Engine) finishOrRetry(ctx context.Context, t *Transaction, resp *protocol.Frame, cause error) {
	if t.attempts-1 < t.MaxRetries {
		t.state = StateRetrying
		backoff := RetryBackoff(t.attempts - 1)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			t.complete(Result{Err: poolerr.Cancelled(), State: StateCancelled})
			return
		}
		e.transmitAndAwait(ctx, t)
		return
	}
	t.complete(Result{Response: resp, Err: cause, State: StateFailed})
}

// OnFrame feeds one decoded inbound frame to the engine. It first
// tries to complete the in-flight transaction; if none matches, the
// frame is handed to the spontaneous handler (spec.md §4.4).
func (e *Engine) OnFrame(f *protocol.Frame) {
	e.mu.Lock()
	t := e.inFlight
	if t != nil && t.Expect != nil && t.Expect.Matches(f) {
		e.inFlight = nil
		e.mu.Unlock()
		select {
		case t.matchCh <- f:
		default:
		}
		return
	}
	e.mu.Unlock()
	if e.spontaneous != nil {
		e.spontaneous(f)
	}
}

// DecodeLoop reads raw bytes from inbound, decodes frames for the
// engine's framing variant, and routes each to OnFrame. Run it on its
// own goroutine alongside Run.
func (e *Engine) DecodeLoop(ctx context.Context, inbound <-chan byte) {
	dec := protocol.NewDecoder(e.framing)
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-inbound:
			if !ok {
				return
			}
			f, err := dec.DecodeByte(b, time.Now())
			if err != nil {
				e.log.Debug().Err(err).Msg("frame decode error")
				continue
			}
			if f != nil {
				e.OnFrame(f)
			}
		}
	}
}
