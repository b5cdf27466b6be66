// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package model

import (
	"fmt"

	"github.com/poolautomation/poolcore/internal/poolerr"
)

// NormalizeScheduleWindow enforces spec.md §3's schedule invariant: the
// window is normalized to [0, 1440) minutes, and start<=end unless the
// caller explicitly flagged a midnight wrap.
func NormalizeScheduleWindow(start, end int, wraps bool) (int, int, error) {
	norm := func(m int) int {
		m %= 1440
		if m < 0 {
			m += 1440
		}
		return m
	}
	start, end = norm(start), norm(end)
	if !wraps && start > end {
		return 0, 0, fmt.Errorf("model: startTime %d > endTime %d without a midnight wrap", start, end)
	}
	return start, end, nil
}

// ValidateHeatMode checks that mode is one of the bits body.HeatSources
// permits for the current controller variant (spec.md §3).
func ValidateHeatMode(body *BodyConfig, mode HeatMode) error {
	if mode == HeatOff {
		return nil
	}
	if body.HeatSources&(1<<uint(mode)) == 0 {
		return poolerr.InvalidEquipmentData("body", body.ID, "heatMode",
			fmt.Sprintf("mode %d not in heatSources mask 0x%X", mode, body.HeatSources))
	}
	return nil
}

// ChemRange bounds a chemistry setpoint for a controller variant.
type ChemRange struct {
	Min, Max float64
}

// ValidateChemSetpoint enforces spec.md §3: "Chemistry setpoints lie
// within controller-variant-specific ranges."
func ValidateChemSetpoint(id int, field string, value float64, r ChemRange) error {
	if value < r.Min || value > r.Max {
		return poolerr.InvalidEquipmentData("chemController", id, field,
			fmt.Sprintf("%.2f outside [%.2f, %.2f]", value, r.Min, r.Max))
	}
	return nil
}

// ValidateDoseVolume enforces "dose volumes never exceed the remaining
// tank level" (spec.md §3).
func ValidateDoseVolume(id int, field string, volume, remaining float64) error {
	if volume > remaining {
		return poolerr.InvalidEquipmentData("chemController", id, field,
			fmt.Sprintf("dose %.2fmL exceeds remaining tank level %.2fmL", volume, remaining))
	}
	return nil
}

// ValidateHeatSetpoint clamps-and-rejects per spec.md §8: values
// outside the variant's permitted range are rejected, never silently
// clamped onto the wire.
func ValidateHeatSetpoint(bodyID int, value float64, min, max float64) error {
	if value < min || value > max {
		return poolerr.InvalidEquipmentData("body", bodyID, "setPoint",
			fmt.Sprintf("%.1f outside [%.1f, %.1f]", value, min, max))
	}
	return nil
}

// PumpSpeedRange bounds a commandable pump value; its units (rpm vs
// gpm) depend on the pump's Type.
type PumpSpeedRange struct {
	Min, Max int
}

// ValidatePumpSpeed enforces spec.md §4.5 "validate range ... before
// queuing" for setPumpSpeed.
func ValidatePumpSpeed(pumpID int, value int, r PumpSpeedRange) error {
	if value < r.Min || value > r.Max {
		return poolerr.InvalidEquipmentData("pump", pumpID, "speed",
			fmt.Sprintf("%d outside [%d, %d]", value, r.Min, r.Max))
	}
	return nil
}

// ValidateChlorinatorPercent enforces the 0-100 output range setChlorinator
// accepts for pool/spa setpoints.
func ValidateChlorinatorPercent(id int, field string, value int) error {
	if value < 0 || value > 100 {
		return poolerr.InvalidEquipmentData("chlorinator", id, field,
			fmt.Sprintf("%d outside [0, 100]", value))
	}
	return nil
}
