// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/change"
	"github.com/poolautomation/poolcore/internal/port"
	"github.com/poolautomation/poolcore/internal/protocol"
	"github.com/poolautomation/poolcore/internal/transaction"
)

// AttachPort wires a transport to a Board variant and registers the
// resulting PortRuntime. Call this for every configured port before
// Start (spec.md §5: "thread-per-port ... each port owns an
// independent transaction engine").
func (c *Core) AttachPort(id int, opener port.Opener, variant board.Variant, srcAddr, destAddr byte) *PortRuntime {
	identity := port.Identity{ID: id}
	managed := port.NewManaged(identity, opener, c.Log)

	b := variantBoard(variant, srcAddr, destAddr)
	pacer := transaction.DefaultPacerConfig()
	engine := transaction.NewEngine(id, b.Variant().Framing(), managed, managed, transaction.NewPacer(pacer), func(f *protocol.Frame) {
		c.handleSpontaneous(id, b, f)
	}, c.Log)

	rt := &PortRuntime{ID: id, Port: managed, Engine: engine, Board: b}
	c.Ports[id] = rt
	return rt
}

// handleSpontaneous decodes an unmatched inbound frame into model
// patches and commits each through the Change Engine (spec.md §4.4:
// "unmatched frames are routed to the Board Dispatch as spontaneous
// status"; §4.5: "decoders produce idempotent model patches").
func (c *Core) handleSpontaneous(portID int, b *board.Board, f *protocol.Frame) {
	patches, err := b.Decode(f)
	if err != nil {
		c.Log.Debug().Err(err).Int("portId", portID).Msg("board decode error")
		return
	}
	for _, p := range patches {
		postImage, changed := p.Apply(c.ConfigGraph, c.StateGraph)
		if len(changed) == 0 {
			continue
		}
		c.Change.Commit(change.RootState, p.Kind, p.ID, postImage, changed)
	}
}

func variantBoard(v board.Variant, srcAddr, destAddr byte) *board.Board {
	switch v {
	case board.VariantIntelliCenter:
		return board.NewIntelliCenter(srcAddr, destAddr)
	case board.VariantIntelliTouch:
		return board.NewIntelliTouch(srcAddr, destAddr)
	case board.VariantEasyTouch:
		return board.NewEasyTouch(srcAddr, destAddr)
	case board.VariantSunTouch:
		return board.NewSunTouch(srcAddr, destAddr)
	case board.VariantIntelliCom:
		return board.NewIntelliCom(srcAddr, destAddr)
	case board.VariantAquaLink:
		return board.NewAquaLink(srcAddr, destAddr)
	default:
		return board.NewStandalone(srcAddr, destAddr)
	}
}
