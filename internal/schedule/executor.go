// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package schedule

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/model"
)

// CircuitDriver is the narrow surface the executor needs to actually
// change a circuit's state; internal/core wires this to a Board's
// setCircuitState intent submitted at background priority (spec.md
// §4.8: "coordination with ... Board Dispatch (priority=background)").
type CircuitDriver interface {
	SetCircuitState(circuitID int, on bool) error
}

// Executor evaluates every schedule once per Tick and drives any
// circuit whose desired state differs from what the executor last
// commanded. Desired state uses union-ON semantics: a circuit is ON if
// ANY schedule touching it is currently active (spec.md §4.8).
type Executor struct {
	driver   CircuitDriver
	log      zerolog.Logger
	lastSent map[int]bool
	location *time.Location
	lat, lon float64
	hasSun   bool
}

// NewExecutor builds an Executor. If lat/lon are both non-zero, sun-
// relative schedules are resolved against them; otherwise a
// sun-relative schedule is treated as never-active; nothing is logged.
func NewExecutor(driver CircuitDriver, loc *time.Location, lat, lon float64, log zerolog.Logger) *Executor {
	return &Executor{
		driver:   driver,
		log:      log,
		lastSent: make(map[int]bool),
		location: loc,
		lat:      lat,
		lon:      lon,
		hasSun:   lat != 0 || lon != 0,
	}
}

// Tick evaluates every schedule in cfg against now and drives any
// circuit whose union-ON desired state changed.
func (e *Executor) Tick(now time.Time, cfg *model.ConfigGraph) {
	now = now.In(e.location)
	nowMin := now.Hour()*60 + now.Minute()
	dayBit := uint8(1) << uint(int(now.Weekday()))

	var sun SunTimes
	if e.hasSun {
		sun = SunPosition(now, e.lat, e.lon)
	}

	desired := make(map[int]bool)
	for _, s := range cfg.Schedules.All() {
		if s.DaysMask&dayBit == 0 {
			continue
		}
		start, end := s.StartTime, s.EndTime
		if start < 0 && e.hasSun { // sentinel: negative encodes "sunrise/sunset-relative"
			start = sun.SunriseMin
		}
		if end < 0 && e.hasSun {
			end = sun.SunsetMin
		}
		if start < 0 || end < 0 {
			continue // sun-relative schedule but no coordinates configured
		}
		if inWindow(nowMin, start, end, s.WrapsMidnight) {
			desired[s.Circuit] = true
		}
	}

	for circuitID, want := range desired {
		if e.lastSent[circuitID] == want {
			continue
		}
		if err := e.driver.SetCircuitState(circuitID, want); err != nil {
			e.log.Warn().Err(err).Int("circuitId", circuitID).Msg("schedule-driven circuit command failed")
			continue
		}
		e.lastSent[circuitID] = want
	}
	// Circuits no schedule currently claims but that a prior tick turned
	// on fall back to off once every active schedule has released them.
	for circuitID, was := range e.lastSent {
		if was && !desired[circuitID] {
			if err := e.driver.SetCircuitState(circuitID, false); err != nil {
				e.log.Warn().Err(err).Int("circuitId", circuitID).Msg("schedule release command failed")
				continue
			}
			e.lastSent[circuitID] = false
		}
	}
}

func inWindow(nowMin, start, end int, wraps bool) bool {
	if !wraps {
		return nowMin >= start && nowMin < end
	}
	return nowMin >= start || nowMin < end
}
