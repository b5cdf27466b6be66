// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package events implements the topic-per-entity-kind event stream
// (spec.md §4.6, §6): a synchronous-from-the-publisher's-view fan-out
// to possibly-asynchronous sinks, with bounded per-sink queues so a
// slow subscriber never blocks the Change Engine's commit lane.
package events

import "sync"

// Event is one post-image delivery (spec.md §6: "{id, changedFields[],
// postImage}").
type Event struct {
	Kind          string
	ID            int
	ChangedFields []string
	PostImage     any
}

const sinkQueueDepth = 256

// sink is one subscriber's bounded mailbox.
type sink struct {
	ch       chan Event
	overflow uint64
}

// Bus fans out events per entity kind to every subscribed sink.
// Publish never blocks on a slow sink: once a sink's queue is full,
// further events for it are dropped-newest and its overflow counter
// increments (spec.md §4.6).
type Bus struct {
	mu     sync.Mutex
	topics map[string][]*sink
}

func NewBus() *Bus {
	return &Bus{topics: make(map[string][]*sink)}
}

// Subscribe returns a read channel of Events for kind. Close via
// Unsubscribe when the caller is done.
func (b *Bus) Subscribe(kind string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &sink{ch: make(chan Event, sinkQueueDepth)}
	b.topics[kind] = append(b.topics[kind], s)
	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.topics[kind]
		for i, cand := range list {
			if cand == s {
				b.topics[kind] = append(list[:i], list[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
	return s.ch, unsub
}

// Publish fans ev out to every sink subscribed to ev.Kind. It is
// synchronous from the publisher's point of view (spec.md §4.6): by
// the time Publish returns, every sink has either received the event
// or had it counted as an overflow.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	sinks := append([]*sink(nil), b.topics[ev.Kind]...)
	b.mu.Unlock()
	for _, s := range sinks {
		select {
		case s.ch <- ev:
		default:
			s.overflow++
		}
	}
}

// Overflow returns the total dropped-event count across every sink
// currently subscribed to kind, for the sinkOverflow metric spec.md
// §4.6 calls for.
func (b *Bus) Overflow(kind string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	for _, s := range b.topics[kind] {
		total += s.overflow
	}
	return total
}

// EntityKinds enumerates the topic names spec.md §6 lists.
var EntityKinds = []string{
	"controller", "equipment", "circuit", "feature", "virtualcircuit",
	"body", "temps", "pump", "heater", "chlorinator", "chemController",
	"filter", "valve", "circuitGroup", "lightGroup", "schedule", "cover",
}
