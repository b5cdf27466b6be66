// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

// Action codes are the single byte (Pentair-16) or numeric action
// field (Pentair-2) that identifies a message's semantics (spec.md
// GLOSSARY: "Action code"). Each variant has its own table since the
// wire protocol diverged across Pentair's product lines over the
// years; IntelliCenter's Pentair-2 scheme reuses a different numbering
// than the legacy Pentair-16 families.
type actionTable struct {
	setCircuit       uint16
	setCircuitGroup  uint16
	setLightTheme    uint16
	setBodyHeatMode  uint16
	setHeatSetpoint  uint16
	setCoolSetpoint  uint16
	setPumpSpeed     uint16
	setChlorinator   uint16
	setChemSetpoint  uint16
	setClock         uint16
	reqConfiguration uint16
	reqStatus        uint16

	// Inbound broadcast/status actions this variant's controller
	// spontaneously emits, which the decoders in decode.go recognize.
	circuitStatus uint16
	bodyStatus    uint16
	pumpStatus    uint16
	chlorStatus   uint16
	chemStatus    uint16
}

// legacyActions is the table shared by the Pentair-16 families
// (IntelliTouch/EasyTouch/SunTouch/IntelliCom) — they differ from one
// another in capability, not in these base action codes.
var legacyActions = actionTable{
	setCircuit:       134,
	setCircuitGroup:  134,
	setLightTheme:    96,
	setBodyHeatMode:  136,
	setHeatSetpoint:  136,
	setCoolSetpoint:  136,
	setPumpSpeed:     155,
	setChlorinator:   153,
	setChemSetpoint:  147,
	setClock:         133,
	reqConfiguration: 30,
	reqStatus:        8,
	circuitStatus:    2,
	bodyStatus:       8,
	pumpStatus:       7,
	chlorStatus:      153,
	chemStatus:       147,
}

// intelliCenterActions is IntelliCenter's Pentair-2 numbering.
var intelliCenterActions = actionTable{
	setCircuit:       168,
	setCircuitGroup:  168,
	setLightTheme:    167,
	setBodyHeatMode:  169,
	setHeatSetpoint:  169,
	setCoolSetpoint:  169,
	setPumpSpeed:     216,
	setChlorinator:   147,
	setChemSetpoint:  147,
	setClock:         133,
	reqConfiguration: 30,
	reqStatus:        31,
	circuitStatus:    5,
	bodyStatus:       9,
	pumpStatus:       10,
	chlorStatus:      147,
	chemStatus:       148,
}

// aquaLinkActions approximates Jandy's numbering, distinct enough from
// the Pentair families to exercise the facade's per-variant dispatch
// rather than aliasing legacyActions outright.
var aquaLinkActions = actionTable{
	setCircuit:       0x92,
	setCircuitGroup:  0x92,
	setLightTheme:    0x93,
	setBodyHeatMode:  0x94,
	setHeatSetpoint:  0x94,
	setCoolSetpoint:  0x94,
	setPumpSpeed:     0x95,
	setChlorinator:   0x96,
	setChemSetpoint:  0x97,
	setClock:         0x99,
	reqConfiguration: 0x01,
	reqStatus:        0x02,
	circuitStatus:    0x03,
	bodyStatus:       0x04,
	pumpStatus:       0x05,
	chlorStatus:      0x96,
	chemStatus:       0x97,
}

// standaloneActions covers bench/simulator rigs with no real panel:
// same shape as legacyActions, kept distinct so a change to one
// doesn't silently retune the other.
var standaloneActions = legacyActions
