// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package change

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// flushQuietWindow is how long a root must sit untouched before a
	// dirty mark flushes (spec.md §4.6: "flush >=3s after last mutation").
	flushQuietWindow = 3 * time.Second
	// flushMaxLatency bounds how long a mutation can wait behind a busy
	// root before it is forced to disk regardless of further writes
	// (spec.md §4.6: "<=30s after first unflushed mutation").
	flushMaxLatency = 30 * time.Second
	// pollInterval is how often the debounce loop reconsiders the two
	// deadlines above.
	pollInterval = 500 * time.Millisecond
)

// Writer debounces writes to a single persisted document: MarkDirty is
// cheap and can be called on every commit, while the actual marshal+
// atomic-write only happens once the quiet window or the max-latency
// deadline is hit.
type Writer struct {
	path    string
	marshal func() ([]byte, error)
	log     zerolog.Logger

	dirtyCh  chan struct{}
	flushNow chan chan error
}

// NewWriter constructs a debounced writer for path. marshal is called
// at flush time to snapshot current state into bytes.
func NewWriter(path string, marshal func() ([]byte, error), log zerolog.Logger) *Writer {
	return &Writer{
		path:     path,
		marshal:  marshal,
		log:      log,
		dirtyCh:  make(chan struct{}, 1),
		flushNow: make(chan chan error),
	}
}

// MarkDirty records that the document has changed. Non-blocking.
func (w *Writer) MarkDirty() {
	select {
	case w.dirtyCh <- struct{}{}:
	default:
	}
}

// Flush forces an immediate synchronous write, bypassing debounce. Used
// on graceful shutdown (spec.md §9: "final persistence flush").
func (w *Writer) Flush() error {
	reply := make(chan error, 1)
	select {
	case w.flushNow <- reply:
		return <-reply
	default:
		// Run is not receiving (not started, or already returned after
		// its context was cancelled): write directly.
		return w.flushOnce()
	}
}

func (w *Writer) flushOnce() error {
	data, err := w.marshal()
	if err != nil {
		return err
	}
	if err := writeAtomic(w.path, data); err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("persistence flush failed")
		return err
	}
	w.log.Debug().Str("path", w.path).Msg("persistence flushed")
	return nil
}

// Run drives the debounce loop until ctx is cancelled. It is meant to
// run in its own goroutine for the lifetime of the process.
func (w *Writer) Run(ctx context.Context) {
	var firstDirty, lastDirty time.Time
	dirty := false
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if dirty {
				_ = w.flushOnce()
			}
			return
		case reply := <-w.flushNow:
			reply <- w.flushOnce()
			dirty = false
		case <-w.dirtyCh:
			now := time.Now()
			if !dirty {
				firstDirty = now
			}
			lastDirty = now
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			now := time.Now()
			if now.Sub(lastDirty) >= flushQuietWindow || now.Sub(firstDirty) >= flushMaxLatency {
				if err := w.flushOnce(); err == nil {
					dirty = false
				}
			}
		}
	}
}
