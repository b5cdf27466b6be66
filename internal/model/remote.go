// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package model

// RemoteConfig is a minimal config-only entity (no live state):
// spot/four-button remotes bound to a set of circuits. spec.md §6
// names "remotes" in the persisted pool-config shape without detailing
// its attributes; this is the supplemented shape (spec.md §12).
type RemoteConfig struct {
	ID       int
	Name     string
	Type     string
	Circuits []int
}

func (c *RemoteConfig) EntityID() int { return c.ID }
