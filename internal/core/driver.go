// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"time"

	"github.com/poolautomation/poolcore/internal/schedule"
)

// scheduleDriver adapts a Core/port pair into schedule.CircuitDriver,
// routing every scheduled circuit change through the same Intent API
// pipeline user commands take (validation, Delay Manager consultation,
// optimistic pending, dispatch), only at background priority (spec.md
// §4.8: "coordination with ... Board Dispatch (priority=background)
// ... respects the Delay Manager").
type scheduleDriver struct {
	core   *Core
	portID int
}

func (d *scheduleDriver) SetCircuitState(circuitID int, on bool) error {
	return d.core.setCircuitStateBackground(d.portID, circuitID, on)
}

// EnableScheduler attaches a schedule.Executor driving circuits through
// the named port's Board.
func (c *Core) EnableScheduler(portID int) bool {
	_, ok := c.Ports[portID]
	if !ok {
		return false
	}
	loc := time.Local
	c.Scheduler = schedule.NewExecutor(&scheduleDriver{core: c, portID: portID}, loc, c.Cfg.Latitude, c.Cfg.Longitude, c.Log)
	return true
}
