// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

import "github.com/poolautomation/poolcore/internal/model"

// IntentKind enumerates the high-level operations spec.md §4.5 names.
type IntentKind int

const (
	IntentSetCircuitState IntentKind = iota
	IntentSetCircuitGroupState
	IntentSetLightTheme
	IntentSetBodyHeatMode
	IntentSetHeatSetpoint
	IntentSetCoolSetpoint
	IntentSetPumpSpeed
	IntentSetChlorinator
	IntentSetChemSetpoint
	IntentSetClock
	IntentRequestConfiguration
	IntentRequestStatus
)

func (k IntentKind) String() string {
	switch k {
	case IntentSetCircuitState:
		return "setCircuitState"
	case IntentSetCircuitGroupState:
		return "setCircuitGroupState"
	case IntentSetLightTheme:
		return "setLightTheme"
	case IntentSetBodyHeatMode:
		return "setBodyHeatMode"
	case IntentSetHeatSetpoint:
		return "setHeatSetpoint"
	case IntentSetCoolSetpoint:
		return "setCoolSetpoint"
	case IntentSetPumpSpeed:
		return "setPumpSpeed"
	case IntentSetChlorinator:
		return "setChlorinator"
	case IntentSetChemSetpoint:
		return "setChemSetpoint"
	case IntentSetClock:
		return "setClock"
	case IntentRequestConfiguration:
		return "requestConfiguration"
	default:
		return "requestStatus"
	}
}

// Intent is a caller's request to change or query equipment, ahead of
// its translation into a wire frame (spec.md §4.5).
type Intent interface {
	Kind() IntentKind
	// RequiredCapability names the Capability this intent needs, if
	// any; (_, false) means every variant may attempt it.
	RequiredCapability() (Capability, bool)
}

type SetCircuitStateIntent struct {
	CircuitID int
	On        bool
}

func (SetCircuitStateIntent) Kind() IntentKind                       { return IntentSetCircuitState }
func (SetCircuitStateIntent) RequiredCapability() (Capability, bool) { return 0, false }

type SetCircuitGroupStateIntent struct {
	GroupID int
	On      bool
}

func (SetCircuitGroupStateIntent) Kind() IntentKind { return IntentSetCircuitGroupState }
func (SetCircuitGroupStateIntent) RequiredCapability() (Capability, bool) {
	return CapCircuitGroups, true
}

type SetLightThemeIntent struct {
	GroupID int
	Theme   int
}

func (SetLightThemeIntent) Kind() IntentKind                       { return IntentSetLightTheme }
func (SetLightThemeIntent) RequiredCapability() (Capability, bool) { return CapLightThemes, true }

type SetBodyHeatModeIntent struct {
	BodyID int
	Mode   model.HeatMode
}

func (SetBodyHeatModeIntent) Kind() IntentKind                       { return IntentSetBodyHeatMode }
func (SetBodyHeatModeIntent) RequiredCapability() (Capability, bool) { return 0, false }

type SetHeatSetpointIntent struct {
	BodyID int
	Value  float64
}

func (SetHeatSetpointIntent) Kind() IntentKind                       { return IntentSetHeatSetpoint }
func (SetHeatSetpointIntent) RequiredCapability() (Capability, bool) { return 0, false }

type SetCoolSetpointIntent struct {
	BodyID int
	Value  float64
}

func (SetCoolSetpointIntent) Kind() IntentKind                       { return IntentSetCoolSetpoint }
func (SetCoolSetpointIntent) RequiredCapability() (Capability, bool) { return CapCoolSetpoint, true }

type SetPumpSpeedIntent struct {
	PumpID int
	Value  int // rpm or gpm, per pump type
}

func (SetPumpSpeedIntent) Kind() IntentKind { return IntentSetPumpSpeed }
func (SetPumpSpeedIntent) RequiredCapability() (Capability, bool) {
	return CapVariableSpeedPump, true
}

type SetChlorinatorIntent struct {
	ChlorinatorID int
	PoolPercent   int
	SpaPercent    int
}

func (SetChlorinatorIntent) Kind() IntentKind                       { return IntentSetChlorinator }
func (SetChlorinatorIntent) RequiredCapability() (Capability, bool) { return CapChlorinator, true }

type SetChemSetpointIntent struct {
	ChemControllerID int
	Field            string // "ph" or "orp"
	Value            float64
}

func (SetChemSetpointIntent) Kind() IntentKind { return IntentSetChemSetpoint }
func (SetChemSetpointIntent) RequiredCapability() (Capability, bool) {
	return CapChemController, true
}

type SetClockIntent struct {
	UnixSeconds int64
}

func (SetClockIntent) Kind() IntentKind                       { return IntentSetClock }
func (SetClockIntent) RequiredCapability() (Capability, bool) { return 0, false }

type RequestConfigurationIntent struct{}

func (RequestConfigurationIntent) Kind() IntentKind                       { return IntentRequestConfiguration }
func (RequestConfigurationIntent) RequiredCapability() (Capability, bool) { return 0, false }

type RequestStatusIntent struct{}

func (RequestStatusIntent) Kind() IntentKind                       { return IntentRequestStatus }
func (RequestStatusIntent) RequiredCapability() (Capability, bool) { return 0, false }

// Patch is one decoded change to apply to the equipment model (spec.md
// §4.5: "decoders produce idempotent model patches"). Kind/ID name the
// entity; Apply mutates the target graphs and reports which fields
// changed, so the Change Engine's Commit can be called with an
// accurate changedFields list.
type Patch struct {
	Kind   string
	ID     int
	Apply  func(cfg *model.ConfigGraph, st *model.StateGraph) (postImage any, changedFields []string)
}
