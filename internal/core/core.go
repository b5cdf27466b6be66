// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package core wires the independently-testable packages (transport,
// transaction engine, board dispatch, model, change engine, delay
// manager, schedule executor) into one running bridge instance. It is
// the explicit composition root spec.md §9 calls for in place of
// package-level singletons: callers construct one Core per process (or
// per test) and every dependency flows through it by value or
// interface, never through a global.
package core

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/change"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/delay"
	"github.com/poolautomation/poolcore/internal/events"
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/port"
	"github.com/poolautomation/poolcore/internal/schedule"
	"github.com/poolautomation/poolcore/internal/transaction"
)

// PortRuntime bundles everything one physical/bridged port needs: its
// managed transport, its per-port transaction engine, and the board it
// talks to.
type PortRuntime struct {
	ID     int
	Port   *port.Managed
	Engine *transaction.Engine
	Board  *board.Board
}

// Core is the wiring context. Its exported fields are the dependency
// surface the rest of the program (cmd/poolcore) reaches into; nothing
// here is package-level or global.
type Core struct {
	Log zerolog.Logger
	Cfg config.Config

	Bus *events.Bus

	ConfigGraph *model.ConfigGraph
	StateGraph  *model.StateGraph
	Change      *change.Engine
	Delay       *delay.Manager

	Ports     map[int]*PortRuntime
	Scheduler *schedule.Executor

	configWriter *change.Writer
	stateWriter  *change.Writer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New assembles a Core from cfg, loading persisted config/state from
// disk (spec.md §9 startup) and pruning orphans once both graphs are
// in memory.
func New(cfg config.Config, log zerolog.Logger) (*Core, error) {
	cfgGraph, err := change.LoadConfig(cfg.PoolConfigPath, log)
	if err != nil {
		log.Warn().Err(err).Msg("pool configuration load fell back to defaults")
	}
	stateGraph, err := change.LoadState(cfg.StatePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("pool state load fell back to defaults")
	}
	if removed := model.PruneOrphans(cfgGraph, stateGraph); removed > 0 {
		log.Info().Int("removed", removed).Msg("pruned orphaned state entries")
	}

	bus := events.NewBus()
	configWriter := change.NewWriter(cfg.PoolConfigPath, func() ([]byte, error) {
		return marshalIndent(change.BuildConfigDocument(cfgGraph))
	}, log)
	stateWriter := change.NewWriter(cfg.StatePath, func() ([]byte, error) {
		return marshalIndent(change.BuildStateDocument(stateGraph, cfgGraph))
	}, log)

	c := &Core{
		Log:          log,
		Cfg:          cfg,
		Bus:          bus,
		ConfigGraph:  cfgGraph,
		StateGraph:   stateGraph,
		Change:       change.NewEngine(bus, configWriter, stateWriter),
		Delay:        delay.NewManager(),
		Ports:        make(map[int]*PortRuntime),
		configWriter: configWriter,
		stateWriter:  stateWriter,
	}
	c.wireDelayInterlocks()
	return c, nil
}

// wireDelayInterlocks declares the standing cross-equipment exclusions
// the Delay Manager enforces (spec.md §4.7): a body's solar and
// primary heaters veto one another while either is cycling.
func (c *Core) wireDelayInterlocks() {
	for _, h := range c.ConfigGraph.Heaters.All() {
		if h.Type != model.HeaterSolar {
			continue
		}
		for _, other := range c.ConfigGraph.Heaters.All() {
			if other.ID == h.ID || other.BodyMask&h.BodyMask == 0 {
				continue
			}
			solarKey := delay.Key{Kind: "heater", ID: h.ID, Purpose: delay.PurposeInterlock}
			otherKey := delay.Key{Kind: "heater", ID: other.ID, Purpose: delay.PurposeInterlock}
			c.Delay.DeclareInterlock(solarKey, otherKey)
			c.Delay.DeclareInterlock(otherKey, solarKey)
		}
	}
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
