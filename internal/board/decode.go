// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

import (
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/protocol"
)

// decodeCircuitStatus turns a circuit-status broadcast into a Patch
// flipping CircuitState.IsOn. Payload: [circuitId, onByte].
func decodeCircuitStatus(_ *Board, f *protocol.Frame) ([]Patch, error) {
	if len(f.Payload) < 2 {
		return nil, nil
	}
	id := int(f.Payload[0])
	on := f.Payload[1] != 0
	return []Patch{{
		Kind: "circuit",
		ID:   id,
		Apply: func(cfg *model.ConfigGraph, st *model.StateGraph) (any, []string) {
			s, ok := st.Circuits.Get(id)
			if !ok {
				s = &model.CircuitState{ID: id}
			}
			var changed []string
			next := *s
			if next.IsOn != on {
				next.IsOn = on
				changed = append(changed, "isOn")
			}
			if next.Pending {
				next.Pending = false
				changed = append(changed, "pending")
			}
			if len(changed) == 0 {
				return s, nil
			}
			st.Circuits.Upsert(&next)
			return &next, changed
		},
	}}, nil
}

// decodeBodyStatus turns a body-status broadcast into a Patch updating
// Temp and IsOn. Payload: [bodyId, tempTenths-hi, tempTenths-lo, onByte].
func decodeBodyStatus(_ *Board, f *protocol.Frame) ([]Patch, error) {
	if len(f.Payload) < 4 {
		return nil, nil
	}
	id := int(f.Payload[0])
	temp := float64(getU16(f.Payload, 1)) / 10
	on := f.Payload[3] != 0
	return []Patch{{
		Kind: "body",
		ID:   id,
		Apply: func(cfg *model.ConfigGraph, st *model.StateGraph) (any, []string) {
			s, ok := st.Bodies.Get(id)
			if !ok {
				s = &model.BodyState{ID: id}
			}
			var changed []string
			next := *s
			if next.Temp != temp {
				next.Temp = temp
				changed = append(changed, "temp")
			}
			if next.IsOn != on {
				next.IsOn = on
				changed = append(changed, "isOn")
			}
			if next.Pending {
				next.Pending = false
				changed = append(changed, "pending")
			}
			if len(changed) == 0 {
				return s, nil
			}
			st.Bodies.Upsert(&next)
			return &next, changed
		},
	}}, nil
}

// decodePumpStatus turns a pump-status broadcast into a Patch updating
// RPM/Watts/Flow. Payload: [pumpId, rpm-hi, rpm-lo, watts-hi, watts-lo, flow].
func decodePumpStatus(_ *Board, f *protocol.Frame) ([]Patch, error) {
	if len(f.Payload) < 6 {
		return nil, nil
	}
	id := int(f.Payload[0])
	rpm := int(getU16(f.Payload, 1))
	watts := int(getU16(f.Payload, 3))
	flow := int(f.Payload[5])
	return []Patch{{
		Kind: "pump",
		ID:   id,
		Apply: func(cfg *model.ConfigGraph, st *model.StateGraph) (any, []string) {
			s, ok := st.Pumps.Get(id)
			if !ok {
				s = &model.PumpState{ID: id}
			}
			var changed []string
			next := *s
			if next.RPM != rpm {
				next.RPM = rpm
				changed = append(changed, "rpm")
			}
			if next.Watts != watts {
				next.Watts = watts
				changed = append(changed, "watts")
			}
			if next.Flow != flow {
				next.Flow = flow
				changed = append(changed, "flow")
			}
			if next.Pending {
				next.Pending = false
				changed = append(changed, "pending")
			}
			if len(changed) == 0 {
				return s, nil
			}
			st.Pumps.Upsert(&next)
			return &next, changed
		},
	}}, nil
}

// decodeChlorinatorStatus turns a chlorinator-status broadcast into a
// Patch. Payload: [id, currentOutput, saltLevel-hi, saltLevel-lo, saltRequiredByte].
func decodeChlorinatorStatus(_ *Board, f *protocol.Frame) ([]Patch, error) {
	if len(f.Payload) < 5 {
		return nil, nil
	}
	id := int(f.Payload[0])
	output := int(f.Payload[1])
	salt := int(getU16(f.Payload, 2))
	saltRequired := f.Payload[4] != 0
	return []Patch{{
		Kind: "chlorinator",
		ID:   id,
		Apply: func(cfg *model.ConfigGraph, st *model.StateGraph) (any, []string) {
			s, ok := st.Chlorinators.Get(id)
			if !ok {
				s = &model.ChlorinatorState{ID: id}
			}
			var changed []string
			next := *s
			if next.CurrentOutput != output {
				next.CurrentOutput = output
				changed = append(changed, "currentOutput")
			}
			if next.SaltLevel != salt {
				next.SaltLevel = salt
				changed = append(changed, "saltLevel")
			}
			if next.SaltRequired != saltRequired {
				next.SaltRequired = saltRequired
				changed = append(changed, "saltRequired")
			}
			if len(changed) == 0 {
				return s, nil
			}
			st.Chlorinators.Upsert(&next)
			return &next, changed
		},
	}}, nil
}

// baseDecoders binds a variant's actionTable broadcast codes to the
// shared decode routines above; variants that lack a capability (e.g.
// SunTouch has no chlorinator) simply never receive that broadcast,
// so registering the decoder anyway is harmless.
func baseDecoders(actions actionTable) map[uint16]FrameDecoder {
	return map[uint16]FrameDecoder{
		actions.circuitStatus: decodeCircuitStatus,
		actions.bodyStatus:    decodeBodyStatus,
		actions.pumpStatus:    decodePumpStatus,
		actions.chlorStatus:   decodeChlorinatorStatus,
	}
}
