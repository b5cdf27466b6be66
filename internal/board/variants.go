// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

import "github.com/poolautomation/poolcore/internal/protocol"

var circuitFunctionMap = protocol.NewValueMap(
	protocol.ValueEntry{Val: 0, Name: "generic", Desc: "Generic circuit"},
	protocol.ValueEntry{Val: 1, Name: "pool", Desc: "Pool circuit"},
	protocol.ValueEntry{Val: 2, Name: "spa", Desc: "Spa circuit"},
	protocol.ValueEntry{Val: 3, Name: "light", Desc: "Lighting circuit"},
	protocol.ValueEntry{Val: 4, Name: "spillway", Desc: "Spillway circuit"},
)

var heatModeMap = protocol.NewValueMap(
	protocol.ValueEntry{Val: 0, Name: "off", Desc: "Heat off"},
	protocol.ValueEntry{Val: 1, Name: "heater", Desc: "Gas/electric heater"},
	protocol.ValueEntry{Val: 2, Name: "solarPreferred", Desc: "Solar preferred"},
	protocol.ValueEntry{Val: 3, Name: "solarOnly", Desc: "Solar only"},
)

var pumpTypeMap = protocol.NewValueMap(
	protocol.ValueEntry{Val: 0, Name: "relay", Desc: "Relay-controlled pump"},
	protocol.ValueEntry{Val: 1, Name: "singleSpeed", Desc: "Single-speed pump"},
	protocol.ValueEntry{Val: 2, Name: "dualSpeed", Desc: "Dual-speed pump"},
	protocol.ValueEntry{Val: 3, Name: "vs", Desc: "Variable-speed pump"},
	protocol.ValueEntry{Val: 4, Name: "vsf", Desc: "Variable-speed/flow pump"},
	protocol.ValueEntry{Val: 5, Name: "vf", Desc: "Variable-flow pump"},
)

var bodyTypeMap = protocol.NewValueMap(
	protocol.ValueEntry{Val: 0, Name: "pool", Desc: "Pool body"},
	protocol.ValueEntry{Val: 1, Name: "spa", Desc: "Spa body"},
	protocol.ValueEntry{Val: 2, Name: "auxiliary", Desc: "Auxiliary body"},
)

func sharedValueMaps() *ValueMaps {
	return &ValueMaps{
		CircuitFunction: circuitFunctionMap,
		HeatMode:        heatModeMap,
		PumpType:        pumpTypeMap,
		BodyType:        bodyTypeMap,
	}
}

// capSet is a small builder for readable capability-matrix literals.
func capSet(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

// NewIntelliCenter builds the Board for Pentair's current-generation
// IntelliCenter, which speaks Pentair-2 and supports the full
// capability set (spec.md §2).
func NewIntelliCenter(srcAddr, destAddr byte) *Board {
	caps := capSet(CapCoolSetpoint, CapChlorinator, CapChemController, CapLightThemes, CapVariableSpeedPump, CapCircuitGroups, CapCover)
	return New(VariantIntelliCenter, caps, sharedValueMaps(), intelliCenterActions, srcAddr, destAddr, baseEncoders(), baseDecoders(intelliCenterActions))
}

// NewIntelliTouch builds the Board for IntelliTouch: Pentair-16,
// chlorinator and chemistry support, no native cool setpoint (shared
// pool/spa heat-only in the common field installations spec.md §2
// describes).
func NewIntelliTouch(srcAddr, destAddr byte) *Board {
	caps := capSet(CapChlorinator, CapChemController, CapLightThemes, CapVariableSpeedPump, CapCircuitGroups)
	return New(VariantIntelliTouch, caps, sharedValueMaps(), legacyActions, srcAddr, destAddr, baseEncoders(), baseDecoders(legacyActions))
}

// NewEasyTouch builds the Board for EasyTouch: a trimmed-down
// IntelliTouch sibling with no circuit groups or light themes on its
// smaller panel variants.
func NewEasyTouch(srcAddr, destAddr byte) *Board {
	caps := capSet(CapChlorinator, CapVariableSpeedPump)
	return New(VariantEasyTouch, caps, sharedValueMaps(), legacyActions, srcAddr, destAddr, baseEncoders(), baseDecoders(legacyActions))
}

// NewSunTouch builds the Board for SunTouch: single-body, solar-only
// heat control, no chlorinator or chemistry automation.
func NewSunTouch(srcAddr, destAddr byte) *Board {
	caps := capSet(CapLightThemes)
	return New(VariantSunTouch, caps, sharedValueMaps(), legacyActions, srcAddr, destAddr, baseEncoders(), baseDecoders(legacyActions))
}

// NewIntelliCom builds the Board for IntelliCom: a relay-only gateway
// with no pump speed control and no chemistry automation.
func NewIntelliCom(srcAddr, destAddr byte) *Board {
	caps := capSet(CapCircuitGroups)
	return New(VariantIntelliCom, caps, sharedValueMaps(), legacyActions, srcAddr, destAddr, baseEncoders(), baseDecoders(legacyActions))
}

// NewAquaLink builds the Board for Jandy AquaLink: its own numbering
// but a comparable capability set to IntelliTouch.
func NewAquaLink(srcAddr, destAddr byte) *Board {
	caps := capSet(CapChlorinator, CapLightThemes, CapVariableSpeedPump, CapCircuitGroups)
	return New(VariantAquaLink, caps, sharedValueMaps(), aquaLinkActions, srcAddr, destAddr, baseEncoders(), baseDecoders(aquaLinkActions))
}

// NewStandalone builds the Board for bench rigs and the loopback
// simulator: every intent is accepted so integration tests can
// exercise the full Dispatch surface without a real panel.
func NewStandalone(srcAddr, destAddr byte) *Board {
	caps := capSet(CapCoolSetpoint, CapChlorinator, CapChemController, CapLightThemes, CapVariableSpeedPump, CapCircuitGroups, CapCover)
	return New(VariantStandalone, caps, sharedValueMaps(), standaloneActions, srcAddr, destAddr, baseEncoders(), baseDecoders(standaloneActions))
}

// Registry resolves a Variant to its constructed Board, the
// composition root for wiring a port to the right Board Dispatch
// (spec.md §5: each port is configured with one controller variant).
type Registry struct {
	boards map[Variant]*Board
}

// NewRegistry builds every variant's Board addressed as srcAddr talking
// to destAddr — in practice each physical port gets its own Registry
// entry since address assignment is per-bus.
func NewRegistry(srcAddr, destAddr byte) *Registry {
	r := &Registry{boards: make(map[Variant]*Board, 7)}
	r.boards[VariantIntelliCenter] = NewIntelliCenter(srcAddr, destAddr)
	r.boards[VariantIntelliTouch] = NewIntelliTouch(srcAddr, destAddr)
	r.boards[VariantEasyTouch] = NewEasyTouch(srcAddr, destAddr)
	r.boards[VariantSunTouch] = NewSunTouch(srcAddr, destAddr)
	r.boards[VariantIntelliCom] = NewIntelliCom(srcAddr, destAddr)
	r.boards[VariantAquaLink] = NewAquaLink(srcAddr, destAddr)
	r.boards[VariantStandalone] = NewStandalone(srcAddr, destAddr)
	return r
}

func (r *Registry) Get(v Variant) (*Board, bool) {
	b, ok := r.boards[v]
	return b, ok
}
