// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package model implements the equipment configuration graph and the
// live-state graph that mirrors it (spec.md §3, §4.6): bodies,
// circuits, features, pumps, heaters, chlorinators, chemistry
// controllers, schedules, valves, filters, groups, covers, and
// remotes, plus the singleton equipment record.
package model

import "sort"

// Entity is anything addressable by a stable 1-based integer id
// (spec.md §3 invariant: "id is stable for the life of an item").
type Entity interface {
	EntityID() int
}

// Collection holds one entity kind with stable iteration order by id
// (spec.md §4.6). It is not safe for concurrent use on its own — the
// Change Engine's single-writer commit lane is what makes that safe in
// practice (spec.md §5).
type Collection[T Entity] struct {
	items map[int]T
}

// NewCollection returns an empty Collection.
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{items: make(map[int]T)}
}

// Get returns the item with the given id, if present.
func (c *Collection[T]) Get(id int) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Find returns every item for which pred returns true, in id order.
func (c *Collection[T]) Find(pred func(T) bool) []T {
	var out []T
	for _, v := range c.All() {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// All returns every item in stable id order.
func (c *Collection[T]) All() []T {
	ids := make([]int, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}

// Upsert installs or replaces the item at its own id. It returns true
// when an existing item was replaced (an update) rather than a new one
// created, which callers use to decide whether to emit a creation or
// mutation event.
func (c *Collection[T]) Upsert(item T) bool {
	_, existed := c.items[item.EntityID()]
	c.items[item.EntityID()] = item
	return existed
}

// Remove deletes the item with the given id, returning false if it
// was not present.
func (c *Collection[T]) Remove(id int) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Len reports how many items the collection currently holds.
func (c *Collection[T]) Len() int { return len(c.items) }
