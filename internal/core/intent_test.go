// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"context"
	"testing"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/port"
	"github.com/poolautomation/poolcore/internal/protocol"
)

func newRunningTestCore(t *testing.T) *Core {
	t.Helper()
	c := newTestCore(t)
	ours, _ := port.NewLoopbackPair()
	c.AttachPort(0, port.LoopbackOpener(ours), board.VariantStandalone, 0x21, 0x10)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	t.Cleanup(cancel)
	return c
}

// TestSetCircuitStateMarksPendingThenConfirms exercises spec.md §3's
// "local command optimism (marked pending until confirmed)" lifecycle:
// the intent marks the circuit pending before any wire traffic, and an
// inbound ack — even one reporting a state the optimistic write
// already assumed — clears it.
func TestSetCircuitStateMarksPendingThenConfirms(t *testing.T) {
	c := newRunningTestCore(t)
	c.ConfigGraph.Circuits.Upsert(&model.CircuitConfig{ID: 6, Name: "Pool Light"})

	if err := c.SetCircuitState(0, 6, true, IntentOptions{}); err != nil {
		t.Fatalf("SetCircuitState: %v", err)
	}
	cs, ok := c.StateGraph.Circuits.Get(6)
	if !ok || !cs.Pending {
		t.Fatalf("expected circuit 6 pending after dispatch, got %+v ok=%v", cs, ok)
	}

	b := board.NewStandalone(0x21, 0x10)
	ack := &protocol.Frame{Action: standaloneCircuitStatusAction, Payload: []byte{6, 1}}
	c.handleSpontaneous(0, b, ack)

	cs, ok = c.StateGraph.Circuits.Get(6)
	if !ok || cs.Pending {
		t.Fatalf("expected circuit 6 pending cleared after ack, got %+v ok=%v", cs, ok)
	}
	if !cs.IsOn {
		t.Fatalf("expected circuit 6 on after ack, got %+v", cs)
	}
}

func TestSetHeatSetpointRejectsOutOfRange(t *testing.T) {
	c := newRunningTestCore(t)
	c.ConfigGraph.Bodies.Upsert(&model.BodyConfig{ID: 1, Name: "Pool", HeatSources: 0xF})

	if err := c.SetHeatSetpoint(0, 1, 200); err == nil {
		t.Fatal("expected an error for an out-of-range heat setpoint")
	}
	if _, ok := c.StateGraph.Bodies.Get(1); ok {
		t.Fatal("rejected setpoint must never mark the body pending")
	}
}

// TestSetBodyHeatModeBlockedByActiveInterlock exercises spec.md §8
// scenario 4: a body whose solar heater is active refuses a switch to
// the gas heater sharing the same body.
func TestSetBodyHeatModeBlockedByActiveInterlock(t *testing.T) {
	c := newRunningTestCore(t)
	c.ConfigGraph.Bodies.Upsert(&model.BodyConfig{ID: 1, Name: "Pool", HeatSources: 0xF})
	c.ConfigGraph.Heaters.Upsert(&model.HeaterConfig{ID: 1, Name: "Gas Heater", Type: model.HeaterGas, BodyMask: 1 << 1})
	c.ConfigGraph.Heaters.Upsert(&model.HeaterConfig{ID: 2, Name: "Solar", Type: model.HeaterSolar, BodyMask: 1 << 1})
	c.wireDelayInterlocks()

	if err := c.SetBodyHeatMode(0, 1, model.HeatSolarOnly, IntentOptions{}); err != nil {
		t.Fatalf("arming solar: %v", err)
	}

	if err := c.SetBodyHeatMode(0, 1, model.HeatHeater, IntentOptions{Immediate: true}); err == nil {
		t.Fatal("expected InterlockViolation while solar interlock is active")
	}
}

func TestSetPumpSpeedRejectsOutOfRangeRPM(t *testing.T) {
	c := newRunningTestCore(t)
	c.ConfigGraph.Pumps.Upsert(&model.PumpConfig{ID: 1, Name: "Filter Pump", Type: model.PumpVS})

	if err := c.SetPumpSpeed(0, 1, 10000, IntentOptions{}); err == nil {
		t.Fatal("expected an error for an out-of-range pump speed")
	}
}

func TestUpsertScheduleNormalizesWindow(t *testing.T) {
	c := newRunningTestCore(t)
	c.ConfigGraph.Circuits.Upsert(&model.CircuitConfig{ID: 6, Name: "Pool Light"})

	sched := model.ScheduleConfig{ID: 1, Circuit: 6, StartTime: 1440 + 30, EndTime: 1440 + 90}
	if err := c.UpsertSchedule(sched); err != nil {
		t.Fatalf("UpsertSchedule: %v", err)
	}
	got, ok := c.ConfigGraph.Schedules.Get(1)
	if !ok || got.StartTime != 30 || got.EndTime != 90 {
		t.Fatalf("expected normalized window [30,90), got %+v ok=%v", got, ok)
	}
}
