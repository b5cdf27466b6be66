// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package change

import (
	"sync"

	"github.com/poolautomation/poolcore/internal/events"
)

// Root identifies which persisted document a commit belongs to.
type Root int

const (
	RootConfig Root = iota
	RootState
)

// Engine is the single-writer commit lane described in spec.md §4.6:
// every mutation to the equipment model — whether from a decoded wire
// message or an applied intent — funnels through Commit, which
// publishes the post-image event and marks the owning document dirty
// for debounced persistence. Serializing all commits through one mutex
// is what makes "per-entity diff/commit" a meaningful sequence instead
// of a race between the decode loop and the intent path.
type Engine struct {
	mu     sync.Mutex
	bus    *events.Bus
	config *Writer
	state  *Writer
}

func NewEngine(bus *events.Bus, config, state *Writer) *Engine {
	return &Engine{bus: bus, config: config, state: state}
}

// Commit records that entity (kind, id) now looks like postImage, with
// changedFields naming what moved (spec.md §6: "{id, changedFields[],
// postImage}"). A nil or empty changedFields is treated as "nothing
// actually changed" and is a no-op: callers are expected to have
// already compared old-vs-new before calling Commit, since the model
// types carry no generic equality the Engine could use to diff for
// them.
func (e *Engine) Commit(root Root, kind string, id int, postImage any, changedFields []string) {
	if len(changedFields) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bus.Publish(events.Event{
		Kind:          kind,
		ID:            id,
		ChangedFields: changedFields,
		PostImage:     postImage,
	})

	switch root {
	case RootConfig:
		e.config.MarkDirty()
	case RootState:
		e.state.MarkDirty()
	}
}

// FlushAll forces both documents to disk synchronously, used during
// orderly shutdown (spec.md §9).
func (e *Engine) FlushAll() error {
	if err := e.config.Flush(); err != nil {
		return err
	}
	return e.state.Flush()
}
