// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

import (
	"fmt"

	"github.com/poolautomation/poolcore/internal/protocol"
)

func (b *Board) frame(action uint16, payload []byte) *protocol.Frame {
	return &protocol.Frame{Dest: b.destAddr, Src: b.srcAddr, Action: action, Payload: payload}
}

func (b *Board) descriptor(action uint16, correlation string) *protocol.Descriptor {
	return &protocol.Descriptor{Peer: b.destAddr, Action: action, Correlation: correlation}
}

// encodeSetCircuit handles setCircuitState (spec.md §4.5): two-byte
// payload, the 1-based circuit id followed by the desired on/off byte.
func encodeSetCircuit(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetCircuitStateIntent)
	payload := []byte{byte(i.CircuitID), boolByte(i.On)}
	return []*protocol.Frame{b.frame(b.actions.setCircuit, payload)}, nil
}

// encodeSetCircuitGroupState builds a single group command frame,
// payload [groupId, on/off byte]. It does not fan out to the bound
// circuits, and no per-binding swim delay is applied.
func encodeSetCircuitGroupState(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetCircuitGroupStateIntent)
	payload := []byte{byte(i.GroupID), boolByte(i.On)}
	return []*protocol.Frame{b.frame(b.actions.setCircuitGroup, payload)}, nil
}

func encodeSetLightTheme(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetLightThemeIntent)
	payload := []byte{byte(i.GroupID), byte(i.Theme)}
	return []*protocol.Frame{b.frame(b.actions.setLightTheme, payload)}, nil
}

func encodeSetBodyHeatMode(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetBodyHeatModeIntent)
	payload := []byte{byte(i.BodyID), byte(i.Mode)}
	return []*protocol.Frame{b.frame(b.actions.setBodyHeatMode, payload)}, nil
}

// encodeSetHeatSetpoint and encodeSetCoolSetpoint both send tenths-of-
// a-degree as a uint16, matching the wire convention most Pentair
// temperature fields use.
func encodeSetHeatSetpoint(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetHeatSetpointIntent)
	payload := []byte{byte(i.BodyID)}
	payload = putU16(payload, uint16(i.Value*10))
	return []*protocol.Frame{b.frame(b.actions.setHeatSetpoint, payload)}, nil
}

func encodeSetCoolSetpoint(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetCoolSetpointIntent)
	payload := []byte{byte(i.BodyID)}
	payload = putU16(payload, uint16(i.Value*10))
	return []*protocol.Frame{b.frame(b.actions.setCoolSetpoint, payload)}, nil
}

func encodeSetPumpSpeed(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetPumpSpeedIntent)
	payload := []byte{byte(i.PumpID)}
	payload = putU16(payload, uint16(i.Value))
	return []*protocol.Frame{b.frame(b.actions.setPumpSpeed, payload)}, nil
}

func encodeSetChlorinator(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetChlorinatorIntent)
	payload := []byte{byte(i.ChlorinatorID), byte(i.PoolPercent), byte(i.SpaPercent)}
	return []*protocol.Frame{b.frame(b.actions.setChlorinator, payload)}, nil
}

func encodeSetChemSetpoint(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetChemSetpointIntent)
	var fieldByte byte
	switch i.Field {
	case "ph":
		fieldByte = 0
	case "orp":
		fieldByte = 1
	default:
		return nil, fmt.Errorf("board: unknown chem setpoint field %q", i.Field)
	}
	payload := []byte{byte(i.ChemControllerID), fieldByte}
	payload = putU16(payload, uint16(i.Value*100))
	return []*protocol.Frame{b.frame(b.actions.setChemSetpoint, payload)}, nil
}

func encodeSetClock(b *Board, intent Intent) ([]*protocol.Frame, error) {
	i := intent.(SetClockIntent)
	payload := make([]byte, 0, 8)
	payload = append(payload,
		byte(i.UnixSeconds>>56), byte(i.UnixSeconds>>48), byte(i.UnixSeconds>>40), byte(i.UnixSeconds>>32),
		byte(i.UnixSeconds>>24), byte(i.UnixSeconds>>16), byte(i.UnixSeconds>>8), byte(i.UnixSeconds))
	return []*protocol.Frame{b.frame(b.actions.setClock, payload)}, nil
}

func encodeRequestConfiguration(b *Board, _ Intent) ([]*protocol.Frame, error) {
	return []*protocol.Frame{b.frame(b.actions.reqConfiguration, nil)}, nil
}

func encodeRequestStatus(b *Board, _ Intent) ([]*protocol.Frame, error) {
	return []*protocol.Frame{b.frame(b.actions.reqStatus, nil)}, nil
}

// baseEncoders is the action-table-driven encoder set every variant
// registers; variants differ in which intents their capability map
// permits, not in how a permitted intent gets encoded.
func baseEncoders() map[IntentKind]IntentEncoder {
	return map[IntentKind]IntentEncoder{
		IntentSetCircuitState:      encodeSetCircuit,
		IntentSetCircuitGroupState: encodeSetCircuitGroupState,
		IntentSetLightTheme:        encodeSetLightTheme,
		IntentSetBodyHeatMode:      encodeSetBodyHeatMode,
		IntentSetHeatSetpoint:      encodeSetHeatSetpoint,
		IntentSetCoolSetpoint:      encodeSetCoolSetpoint,
		IntentSetPumpSpeed:         encodeSetPumpSpeed,
		IntentSetChlorinator:       encodeSetChlorinator,
		IntentSetChemSetpoint:      encodeSetChemSetpoint,
		IntentSetClock:             encodeSetClock,
		IntentRequestConfiguration: encodeRequestConfiguration,
		IntentRequestStatus:        encodeRequestStatus,
	}
}
