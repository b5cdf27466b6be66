// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/change"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/protocol"
)

// standaloneCircuitStatusAction mirrors the action code Standalone
// boards use for circuit-status broadcasts (board.standaloneActions
// aliases board.legacyActions, unexported, so this test names the same
// wire number directly rather than reaching into the package).
const standaloneCircuitStatusAction = 2

func newTestCore(t *testing.T) *Core {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.PoolConfigPath = filepath.Join(dir, "pool-config.json")
	cfg.StatePath = filepath.Join(dir, "pool-state.json")

	c, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSpontaneousFrameCommitsStateAndPublishesEvent(t *testing.T) {
	c := newTestCore(t)
	c.ConfigGraph.Circuits.Upsert(&model.CircuitConfig{ID: 6, Name: "Pool Light"})

	b := board.NewStandalone(0x21, 0x10)
	sub, unsub := c.Bus.Subscribe("circuit")
	defer unsub()

	f := &protocol.Frame{Action: standaloneCircuitStatusAction, Payload: []byte{6, 1}}
	c.handleSpontaneous(0, b, f)

	cs, ok := c.StateGraph.Circuits.Get(6)
	if !ok || !cs.IsOn {
		t.Fatalf("expected circuit 6 state to be on, got %+v ok=%v", cs, ok)
	}

	select {
	case ev := <-sub:
		if ev.ID != 6 || ev.Kind != "circuit" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected a published circuit event")
	}
}

func TestFlushAllWritesBothDocuments(t *testing.T) {
	c := newTestCore(t)
	c.ConfigGraph.Equipment.Model = "Standalone Bench Rig"
	c.Change.Commit(change.RootConfig, "equipment", 0, c.ConfigGraph.Equipment, []string{"model"})

	if err := c.Change.FlushAll(); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
}
