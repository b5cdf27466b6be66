// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package port

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poolautomation/poolcore/internal/poolerr"
	"github.com/rs/zerolog"
)

// writeQueueDepth bounds how many pending writes Managed will buffer
// before returning WriteRejected (spec.md §4.1 backpressure bound).
const writeQueueDepth = 64

// Managed wraps a Transport with the reconnect/backoff state machine,
// connection statistics, and the idle-bus signal described in
// spec.md §4.1. One Managed is created per configured Port and lives
// for the process's lifetime; the underlying Transport is recreated
// on every reconnect.
type Managed struct {
	Identity Identity
	open     Opener
	log      zerolog.Logger

	mu       sync.Mutex
	state    State
	tr       Transport
	lastErr  string
	bytesIn  uint64
	bytesOut uint64
	reconns  uint64

	lastByteAt atomic.Int64 // UnixNano; 0 means "never"
	inbound    chan byte
	closed     chan struct{}
	closeOnce  sync.Once

	writeCh chan writeReq
}

type writeReq struct {
	data []byte
	res  chan error
}

// NewManaged wraps opener with reconnect/backoff. It starts nothing:
// Run drives the connect/read loop, and Close or cancelling Run's
// context stops it.
func NewManaged(id Identity, opener Opener, log zerolog.Logger) *Managed {
	m := &Managed{
		Identity: id,
		open:     opener,
		log:      corelogOrDefault(log, id),
		inbound:  make(chan byte, 4096),
		closed:   make(chan struct{}),
		writeCh:  make(chan writeReq, writeQueueDepth),
	}
	return m
}

func corelogOrDefault(log zerolog.Logger, id Identity) zerolog.Logger {
	return log.With().Int("portId", id.ID).Str("portName", id.Name).Logger()
}

// Run drives the connect/read/reconnect loop until ctx is cancelled or
// Close is called. Callers run it on its own goroutine, per spec.md §5
// ("thread-per-port").
func (m *Managed) Run(ctx context.Context) {
	backoff := backoffInitial
	for {
		select {
		case <-ctx.Done():
			m.setState(StateClosed)
			return
		case <-m.closed:
			return
		default:
		}

		m.setState(StateOpening)
		tr, err := m.open(ctx)
		if err != nil {
			m.recordError(err)
			m.setState(StateReconnecting)
			m.log.Warn().Err(err).Dur("backoff", backoff).Msg("port open failed, retrying")
			if !sleepOrDone(ctx, m.closed, backoff) {
				return
			}
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
			continue
		}

		backoff = backoffInitial
		m.mu.Lock()
		m.tr = tr
		m.mu.Unlock()
		m.setState(StateOpen)

		m.pump(ctx, tr)

		m.mu.Lock()
		m.tr = nil
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-m.closed:
			return
		default:
		}
		m.atomicAdd(&m.reconns)
		m.setState(StateReconnecting)
	}
}

func sleepOrDone(ctx context.Context, closed chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-closed:
		return false
	}
}

// pump reads from tr until it errors or the port is closed, and
// services queued writes. Managed reports StateOpen as soon as the dial
// succeeds; no streak of successful reads is required, and
// livenessWindow is not consulted. lastByteAt records when the most
// recent byte arrived.
func (m *Managed) pump(ctx context.Context, tr Transport) {
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := tr.Read(buf)
			for i := 0; i < n; i++ {
				m.lastByteAt.Store(time.Now().UnixNano())
				select {
				case m.inbound <- buf[i]:
				default:
					// Inbound channel full: drop this (newest) byte as the
					// back-pressure signal; the frame decoder above
					// will see a framing error and resynchronize.
				}
			}
			if err != nil {
				readErr <- err
				return
			}
			if n > 0 {
				m.atomicAdd2(&m.bytesIn, uint64(n))
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			tr.Close()
			return
		case <-m.closed:
			tr.Close()
			return
		case err := <-readErr:
			m.recordError(err)
			tr.Close()
			return
		case wr := <-m.writeCh:
			_, err := tr.Write(wr.data)
			if err == nil {
				m.atomicAdd2(&m.bytesOut, uint64(len(wr.data)))
			}
			wr.res <- err
			if err != nil {
				m.recordError(err)
				tr.Close()
				return
			}
		}
	}
}

// Write enqueues a write and blocks until the pump has passed it to
// the transport (or the port is closed). Returns WriteRejected if the
// queue is full, per spec.md §4.1.
func (m *Managed) Write(data []byte) error {
	if m.State() != StateOpen {
		return poolerr.PortClosed(m.Identity.ID)
	}
	res := make(chan error, 1)
	select {
	case m.writeCh <- writeReq{data: data, res: res}:
	default:
		return poolerr.WriteRejected(m.Identity.ID)
	}
	select {
	case err := <-res:
		if err != nil {
			return poolerr.PortClosed(m.Identity.ID)
		}
		return nil
	case <-m.closed:
		return poolerr.PortClosed(m.Identity.ID)
	}
}

// Inbound returns the channel of raw bytes read from the wire.
func (m *Managed) Inbound() <-chan byte { return m.inbound }

// Idle reports whether the bus has been quiet for at least grace.
// A grace of 0 uses the spec's documented default (spec.md §4.4
// idleBeforeTxMs).
func (m *Managed) Idle(grace time.Duration) bool {
	if grace <= 0 {
		grace = idleGraceDefault
	}
	last := m.lastByteAt.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) >= grace
}

func (m *Managed) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Managed) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Managed) recordError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

func (m *Managed) atomicAdd(c *uint64) {
	m.mu.Lock()
	*c++
	m.mu.Unlock()
}

func (m *Managed) atomicAdd2(c *uint64, n uint64) {
	m.mu.Lock()
	*c += n
	m.mu.Unlock()
}

// Stats returns a snapshot safe to read concurrently with Run.
func (m *Managed) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		State:      m.state,
		BytesIn:    m.bytesIn,
		BytesOut:   m.bytesOut,
		Reconnects: m.reconns,
		LastError:  m.lastErr,
	}
}

// Close stops Run and releases the underlying transport.
func (m *Managed) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.mu.Lock()
		if m.tr != nil {
			m.tr.Close()
		}
		m.state = StateClosed
		m.mu.Unlock()
	})
	return nil
}
