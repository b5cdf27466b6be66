// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"context"
	"time"
)

// shutdownDeadline bounds Shutdown's total duration (spec.md §4.4:
// "a 5s hard deadline bounds shutdown").
const shutdownDeadline = 5 * time.Second

// Start brings up every attached port's engine and decode loop, the
// two persistence writers, and the schedule executor (if configured).
// It returns once everything is running. Everything it starts shares
// one run context, which Shutdown cancels.
func (c *Core) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() { defer c.wg.Done(); c.configWriter.Run(runCtx) }()
	c.wg.Add(1)
	go func() { defer c.wg.Done(); c.stateWriter.Run(runCtx) }()

	for _, rt := range c.Ports {
		rt := rt
		c.wg.Add(1)
		go func() { defer c.wg.Done(); rt.Port.Run(runCtx) }()
		c.wg.Add(1)
		go func() { defer c.wg.Done(); rt.Engine.Run(runCtx) }()
		c.wg.Add(1)
		go func() { defer c.wg.Done(); rt.Engine.DecodeLoop(runCtx, rt.Port.Inbound()) }()
	}

	if c.Scheduler != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-runCtx.Done():
					return
				case now := <-ticker.C:
					c.Scheduler.Tick(now, c.ConfigGraph)
				}
			}
		}()
	}
}

// Shutdown cancels the shared run context, so the scheduler, ports,
// transaction engines, decode loops and persistence writers all stop
// together, with no ordering among them. It waits up to
// shutdownDeadline for them to return, then performs a final
// persistence flush.
func (c *Core) Shutdown() error {
	done := make(chan struct{})
	go func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownDeadline):
		c.Log.Warn().Msg("shutdown deadline exceeded, forcing final flush")
	}

	return c.Change.FlushAll()
}
