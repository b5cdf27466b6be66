// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package core

import (
	"fmt"
	"time"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/change"
	"github.com/poolautomation/poolcore/internal/delay"
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/poolerr"
	"github.com/poolautomation/poolcore/internal/protocol"
	"github.com/poolautomation/poolcore/internal/transaction"
)

// Intent API (spec.md §6): the in-process entry points every external
// surface (CLI, future REST/MQTT front ends) calls through. Each
// method runs the same pipeline: equipment lookup, range/enum
// validation (internal/model/validate.go), a Delay Manager
// consultation, optimistic local state, then a user-priority
// transaction submitted through the port's Board.

// IntentOptions carries per-call knobs that don't belong in the
// equipment-specific signature.
type IntentOptions struct {
	// Immediate requests fail-fast instead of deferring behind a
	// pending cooldown/interlock slot (spec.md §4.7).
	Immediate bool
}

const (
	userIntentTimeout    = 1500 * time.Millisecond
	userIntentMaxRetries = 3

	heatSetpointMin = 50.0
	heatSetpointMax = 104.0
	coolSetpointMin = 55.0
	coolSetpointMax = 90.0

	phSetpointMin  = 7.0
	phSetpointMax  = 7.8
	orpSetpointMin = 400.0
	orpSetpointMax = 900.0
)

// pumpSpeedRange bounds a commandable value by the pump's type: relay
// and single/dual-speed pumps only accept 0/1, variable-speed pumps
// take an rpm, and flow-controlled pumps take a gpm. Pentair publishes
// no single canonical range across product lines, so these are
// representative IntelliFlo/IntelliFlo VF bounds (documented as an
// Open Question resolution in DESIGN.md).
func pumpSpeedRange(t model.PumpType) model.PumpSpeedRange {
	switch t {
	case model.PumpVS, model.PumpVSF:
		return model.PumpSpeedRange{Min: 450, Max: 3450}
	case model.PumpVF:
		return model.PumpSpeedRange{Min: 15, Max: 130}
	default:
		return model.PumpSpeedRange{Min: 0, Max: 1}
	}
}

func chemRangeFor(field string) (model.ChemRange, error) {
	switch field {
	case "ph":
		return model.ChemRange{Min: phSetpointMin, Max: phSetpointMax}, nil
	case "orp":
		return model.ChemRange{Min: orpSetpointMin, Max: orpSetpointMax}, nil
	default:
		return model.ChemRange{}, fmt.Errorf("core: unknown chem setpoint field %q", field)
	}
}

// portRuntime resolves portID or fails with PortUnavailable, the same
// error AttachPort/driver.go callers already surface for a missing
// port.
func (c *Core) portRuntime(portID int) (*PortRuntime, error) {
	rt, ok := c.Ports[portID]
	if !ok {
		return nil, poolerr.PortUnavailable(portID, fmt.Errorf("no port %d attached", portID))
	}
	return rt, nil
}

// dispatch encodes intent against portID's Board and submits the
// resulting frames as one priority-ordered transaction apiece,
// blocking until each resolves (spec.md §4.5: capability check is
// Board.Encode's job; this is the "transaction submit" step).
func (c *Core) dispatch(portID int, intent board.Intent, priority transaction.Priority) error {
	rt, err := c.portRuntime(portID)
	if err != nil {
		return err
	}
	frames, err := rt.Board.Encode(intent)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := c.submitFrame(rt, f, priority); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) submitFrame(rt *PortRuntime, f *protocol.Frame, priority transaction.Priority) error {
	t := transaction.NewTransaction(priority, f, nil, userIntentTimeout, userIntentMaxRetries)
	rt.Engine.Submit(t)
	res := <-t.Done()
	return res.Err
}

// armDelay consults key before the caller queues a frame (spec.md
// §4.7). A key with no pending slot is armed for d and consulted for
// conflicting interlocks in the same locked operation (delay.Manager's
// own Start). A key that is already pending either fails fast
// (opts.Immediate) or is waited out and re-armed, matching "enqueued
// into a pending slot and applied when the delay clears."
func (c *Core) armDelay(key delay.Key, d time.Duration, opts IntentOptions) error {
	if remaining, pending := c.Delay.Pending(key); pending {
		if opts.Immediate {
			return poolerr.InterlockViolation(fmt.Sprintf("%s:%s:%d", key.Purpose, key.Kind, key.ID))
		}
		time.Sleep(remaining)
	}
	return c.Delay.Start(key, d, opts.Immediate)
}

// startupStaggerKey is shared across every "turn something high-
// current on" intent so the 2s stagger (spec.md §4.7) holds across
// circuits, pumps, and heaters rather than only within one entity.
var startupStaggerKey = delay.Key{Kind: "load", ID: 0, Purpose: delay.PurposeStartupStagger}

// --- circuits ---------------------------------------------------------

func (c *Core) markCircuitPending(id int, pending bool) {
	s, ok := c.StateGraph.Circuits.Get(id)
	if !ok {
		s = &model.CircuitState{ID: id}
	}
	if s.Pending == pending {
		return
	}
	next := *s
	next.Pending = pending
	c.StateGraph.Circuits.Upsert(&next)
	c.Change.Commit(change.RootState, "circuit", id, &next, []string{"pending"})
}

// SetCircuitState implements spec.md §4.5 setCircuitState: validate,
// respect the startup stagger when turning on, mark the circuit
// pending, then dispatch at user priority.
func (c *Core) SetCircuitState(portID, circuitID int, on bool, opts IntentOptions) error {
	if _, ok := c.ConfigGraph.Circuits.Get(circuitID); !ok {
		return poolerr.EquipmentNotFound("circuit", circuitID)
	}
	if on {
		if err := c.armDelay(startupStaggerKey, delay.StartupStaggerDefault, opts); err != nil {
			return err
		}
	}
	c.markCircuitPending(circuitID, true)
	if err := c.dispatch(portID, board.SetCircuitStateIntent{CircuitID: circuitID, On: on}, transaction.PriorityUser); err != nil {
		c.markCircuitPending(circuitID, false)
		return err
	}
	return nil
}

// setCircuitStateBackground is the scheduler's entry point (spec.md
// §4.8: "the scheduler commands through the Board Dispatch with
// priority background and respects the Delay Manager"). It runs the
// same validation/delay/pending pipeline as SetCircuitState, only at
// background priority.
func (c *Core) setCircuitStateBackground(portID, circuitID int, on bool) error {
	if _, ok := c.ConfigGraph.Circuits.Get(circuitID); !ok {
		return poolerr.EquipmentNotFound("circuit", circuitID)
	}
	if on {
		if err := c.armDelay(startupStaggerKey, delay.StartupStaggerDefault, IntentOptions{}); err != nil {
			return err
		}
	}
	c.markCircuitPending(circuitID, true)
	if err := c.dispatch(portID, board.SetCircuitStateIntent{CircuitID: circuitID, On: on}, transaction.PriorityBackground); err != nil {
		c.markCircuitPending(circuitID, false)
		return err
	}
	return nil
}

// SetCircuitGroupState implements setCircuitGroupState. Groups carry
// no Pending field (spec.md §3's optimistic-pending clause covers
// bodies/circuits/pumps only). One group frame is dispatched; no
// per-binding swim delay is applied here or by the scheduler.
func (c *Core) SetCircuitGroupState(portID, groupID int, on bool) error {
	if _, ok := c.ConfigGraph.Groups.Get(groupID); !ok {
		return poolerr.EquipmentNotFound("circuitGroup", groupID)
	}
	return c.dispatch(portID, board.SetCircuitGroupStateIntent{GroupID: groupID, On: on}, transaction.PriorityUser)
}

// SetLightTheme implements setLightTheme.
func (c *Core) SetLightTheme(portID, groupID, theme int) error {
	if _, ok := c.ConfigGraph.Groups.Get(groupID); !ok {
		return poolerr.EquipmentNotFound("lightGroup", groupID)
	}
	if theme < 0 || theme > 7 {
		return poolerr.InvalidEquipmentData("lightGroup", groupID, "theme", fmt.Sprintf("%d outside [0, 7]", theme))
	}
	return c.dispatch(portID, board.SetLightThemeIntent{GroupID: groupID, Theme: theme}, transaction.PriorityUser)
}

// --- bodies -------------------------------------------------------

func (c *Core) markBodyPending(id int, pending bool) {
	s, ok := c.StateGraph.Bodies.Get(id)
	if !ok {
		s = &model.BodyState{ID: id}
	}
	if s.Pending == pending {
		return
	}
	next := *s
	next.Pending = pending
	c.StateGraph.Bodies.Upsert(&next)
	c.Change.Commit(change.RootState, "body", id, &next, []string{"pending"})
}

// heaterForBodyMode resolves which configured heater a body-heat-mode
// change targets: the solar heater serving the body for the solar
// modes, or the first non-solar heater serving it otherwise.
// HeaterConfig.BodyMask is a bitmask with bit i set when the heater
// serves body i.
func heaterForBodyMode(cfg *model.ConfigGraph, bodyID int, mode model.HeatMode) (*model.HeaterConfig, bool) {
	wantSolar := mode == model.HeatSolarPreferred || mode == model.HeatSolarOnly
	for _, h := range cfg.Heaters.All() {
		if h.BodyMask&(1<<uint(bodyID)) == 0 {
			continue
		}
		if wantSolar == (h.Type == model.HeaterSolar) {
			return h, true
		}
	}
	return nil, false
}

// heatersForBody returns every heater bound to bodyID, used to clear
// interlock holds and arm heater-cooldown holds when the body's mode
// goes to HeatOff.
func heatersForBody(cfg *model.ConfigGraph, bodyID int) []*model.HeaterConfig {
	var out []*model.HeaterConfig
	for _, h := range cfg.Heaters.All() {
		if h.BodyMask&(1<<uint(bodyID)) != 0 {
			out = append(out, h)
		}
	}
	return out
}

// SetBodyHeatMode implements setBodyHeatMode (spec.md §8 scenario 4):
// validate the mode against the body's heatSources mask, consult the
// Delay Manager's declarative interlock for the targeted heater,
// optimistically mark the body pending, then dispatch.
func (c *Core) SetBodyHeatMode(portID, bodyID int, mode model.HeatMode, opts IntentOptions) error {
	body, ok := c.ConfigGraph.Bodies.Get(bodyID)
	if !ok {
		return poolerr.EquipmentNotFound("body", bodyID)
	}
	if err := model.ValidateHeatMode(body, mode); err != nil {
		return err
	}

	if mode == model.HeatOff {
		for _, h := range heatersForBody(c.ConfigGraph, bodyID) {
			key := delay.Key{Kind: "heater", ID: h.ID, Purpose: delay.PurposeInterlock}
			c.Delay.Cancel(key)
			cooldown := h.Cooldown
			if cooldown <= 0 {
				cooldown = delay.HeaterCooldownDefault
			}
			// Arm the pump-run-on window (spec.md §4.7
			// "heater-cooldown"); no pump driver yet consults it (see
			// DESIGN.md), but the hold is recorded for one to query.
			_ = c.Delay.Start(delay.Key{Kind: "heater", ID: h.ID, Purpose: delay.PurposeHeaterCooldown}, cooldown, false)
		}
	} else if heater, found := heaterForBodyMode(c.ConfigGraph, bodyID, mode); found {
		key := delay.Key{Kind: "heater", ID: heater.ID, Purpose: delay.PurposeInterlock}
		hold := heater.Cooldown
		if hold <= 0 {
			hold = delay.HeaterCooldownDefault
		}
		if err := c.armDelay(key, hold, opts); err != nil {
			return err
		}
	}

	c.markBodyPending(bodyID, true)
	if err := c.dispatch(portID, board.SetBodyHeatModeIntent{BodyID: bodyID, Mode: mode}, transaction.PriorityUser); err != nil {
		c.markBodyPending(bodyID, false)
		return err
	}
	return nil
}

// SetHeatSetpoint implements setHeatSetpoint (spec.md §8: "clamps-and-
// rejects ... never a clamped wire frame").
func (c *Core) SetHeatSetpoint(portID, bodyID int, value float64) error {
	if _, ok := c.ConfigGraph.Bodies.Get(bodyID); !ok {
		return poolerr.EquipmentNotFound("body", bodyID)
	}
	if err := model.ValidateHeatSetpoint(bodyID, value, heatSetpointMin, heatSetpointMax); err != nil {
		return err
	}
	c.markBodyPending(bodyID, true)
	if err := c.dispatch(portID, board.SetHeatSetpointIntent{BodyID: bodyID, Value: value}, transaction.PriorityUser); err != nil {
		c.markBodyPending(bodyID, false)
		return err
	}
	return nil
}

// SetCoolSetpoint implements setCoolSetpoint for variants with
// CapCoolSetpoint (spec.md §8 same clamp-and-reject rule).
func (c *Core) SetCoolSetpoint(portID, bodyID int, value float64) error {
	if _, ok := c.ConfigGraph.Bodies.Get(bodyID); !ok {
		return poolerr.EquipmentNotFound("body", bodyID)
	}
	if err := model.ValidateHeatSetpoint(bodyID, value, coolSetpointMin, coolSetpointMax); err != nil {
		return err
	}
	c.markBodyPending(bodyID, true)
	if err := c.dispatch(portID, board.SetCoolSetpointIntent{BodyID: bodyID, Value: value}, transaction.PriorityUser); err != nil {
		c.markBodyPending(bodyID, false)
		return err
	}
	return nil
}

// --- pumps ----------------------------------------------------------

func (c *Core) markPumpPending(id int, pending bool) {
	s, ok := c.StateGraph.Pumps.Get(id)
	if !ok {
		s = &model.PumpState{ID: id}
	}
	if s.Pending == pending {
		return
	}
	next := *s
	next.Pending = pending
	c.StateGraph.Pumps.Upsert(&next)
	c.Change.Commit(change.RootState, "pump", id, &next, []string{"pending"})
}

// SetPumpSpeed implements setPumpSpeed: validate against the pump's
// type-specific range, enforce the pump change-cooldown (spec.md §4.7:
// "pumps 30s"), mark pending, dispatch.
func (c *Core) SetPumpSpeed(portID, pumpID, value int, opts IntentOptions) error {
	pump, ok := c.ConfigGraph.Pumps.Get(pumpID)
	if !ok {
		return poolerr.EquipmentNotFound("pump", pumpID)
	}
	if err := model.ValidatePumpSpeed(pumpID, value, pumpSpeedRange(pump.Type)); err != nil {
		return err
	}
	key := delay.Key{Kind: "pump", ID: pumpID, Purpose: delay.PurposeChangeCooldown}
	if err := c.armDelay(key, delay.PumpCooldownDefault, opts); err != nil {
		return err
	}
	if value > 0 {
		if err := c.armDelay(startupStaggerKey, delay.StartupStaggerDefault, opts); err != nil {
			return err
		}
	}
	c.markPumpPending(pumpID, true)
	if err := c.dispatch(portID, board.SetPumpSpeedIntent{PumpID: pumpID, Value: value}, transaction.PriorityUser); err != nil {
		c.markPumpPending(pumpID, false)
		return err
	}
	return nil
}

// --- chlorinator / chemistry -----------------------------------------

// SetChlorinator implements setChlorinator. ChlorinatorState carries
// no Pending field (spec.md §3's optimistic-pending list is bodies,
// circuits, and pumps only).
func (c *Core) SetChlorinator(portID, chlorinatorID, poolPercent, spaPercent int) error {
	if _, ok := c.ConfigGraph.Chlorinators.Get(chlorinatorID); !ok {
		return poolerr.EquipmentNotFound("chlorinator", chlorinatorID)
	}
	if err := model.ValidateChlorinatorPercent(chlorinatorID, "poolPercent", poolPercent); err != nil {
		return err
	}
	if err := model.ValidateChlorinatorPercent(chlorinatorID, "spaPercent", spaPercent); err != nil {
		return err
	}
	return c.dispatch(portID, board.SetChlorinatorIntent{
		ChlorinatorID: chlorinatorID, PoolPercent: poolPercent, SpaPercent: spaPercent,
	}, transaction.PriorityUser)
}

// SetChemSetpoint implements setChemSetpoint. Besides the setpoint's
// own range, it validates the controller's configured dose limit
// against the live tank level (model.ValidateDoseVolume); spec.md
// gives chem setpoints no dedicated "dose now" intent, so this is
// where that check naturally lives (see DESIGN.md).
func (c *Core) SetChemSetpoint(portID, chemID int, field string, value float64) error {
	chem, ok := c.ConfigGraph.ChemControllers.Get(chemID)
	if !ok {
		return poolerr.EquipmentNotFound("chemController", chemID)
	}
	r, err := chemRangeFor(field)
	if err != nil {
		return poolerr.InvalidEquipmentData("chemController", chemID, field, err.Error())
	}
	if err := model.ValidateChemSetpoint(chemID, field, value, r); err != nil {
		return err
	}
	if st, ok := c.StateGraph.ChemControllers.Get(chemID); ok {
		switch field {
		case "ph":
			if err := model.ValidateDoseVolume(chemID, "phDoseLimit", chem.PHDoseLimit, st.PHTankLevel); err != nil {
				return err
			}
		case "orp":
			if err := model.ValidateDoseVolume(chemID, "orpDoseLimit", chem.ORPDoseLimit, st.ORPTankLevel); err != nil {
				return err
			}
		}
	}
	return c.dispatch(portID, board.SetChemSetpointIntent{ChemControllerID: chemID, Field: field, Value: value}, transaction.PriorityUser)
}

// --- clock / configuration / status -----------------------------------

// SetClock implements setClock.
func (c *Core) SetClock(portID int, when time.Time) error {
	return c.dispatch(portID, board.SetClockIntent{UnixSeconds: when.Unix()}, transaction.PriorityUser)
}

// RequestConfiguration implements requestConfiguration.
func (c *Core) RequestConfiguration(portID int) error {
	return c.dispatch(portID, board.RequestConfigurationIntent{}, transaction.PriorityUser)
}

// RequestStatus implements requestStatus.
func (c *Core) RequestStatus(portID int) error {
	return c.dispatch(portID, board.RequestStatusIntent{}, transaction.PriorityUser)
}

// --- schedules ----------------------------------------------------

// UpsertSchedule validates and normalizes a schedule window (spec.md
// §3's invariant: start<=end unless the window wraps midnight) before
// committing it to configuration. Schedule CRUD has no wire intent
// (spec.md §4.5's list is board-dispatch intents only): schedules are
// host-managed configuration, created/edited the way any config item
// is, via user PUT rather than through the Board.
func (c *Core) UpsertSchedule(sched model.ScheduleConfig) error {
	if _, ok := c.ConfigGraph.Circuits.Get(sched.Circuit); !ok {
		return poolerr.EquipmentNotFound("circuit", sched.Circuit)
	}
	start, end, err := model.NormalizeScheduleWindow(sched.StartTime, sched.EndTime, sched.WrapsMidnight)
	if err != nil {
		return poolerr.InvalidEquipmentData("schedule", sched.ID, "window", err.Error())
	}
	sched.StartTime, sched.EndTime = start, end
	c.ConfigGraph.Schedules.Upsert(&sched)
	c.Change.Commit(change.RootConfig, "schedule", sched.ID, &sched,
		[]string{"startTime", "endTime", "wrapsMidnight", "daysMask", "circuit", "heatMode", "setPoint"})
	return nil
}

// RemoveSchedule deletes a schedule and its shadow state, the
// configuration-removal half of spec.md §3's lifecycle invariant
// ("removed when their configuration counterpart is removed").
func (c *Core) RemoveSchedule(id int) error {
	if !c.ConfigGraph.Schedules.Remove(id) {
		return poolerr.EquipmentNotFound("schedule", id)
	}
	c.StateGraph.Schedules.Remove(id)
	c.Change.Commit(change.RootConfig, "schedule", id, nil, []string{"removed"})
	return nil
}

// --- model reads (spec.md §6) ------------------------------------------

// GetEquipment returns a snapshot of the singleton equipment record.
func (c *Core) GetEquipment() model.Equipment {
	return *c.ConfigGraph.Equipment
}

// GetState returns a snapshot of one state entity by kind and id.
func (c *Core) GetState(kind string, id int) (any, error) {
	switch kind {
	case "body":
		s, ok := c.StateGraph.Bodies.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "circuit":
		s, ok := c.StateGraph.Circuits.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "feature":
		s, ok := c.StateGraph.Features.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "pump":
		s, ok := c.StateGraph.Pumps.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "heater":
		s, ok := c.StateGraph.Heaters.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "chlorinator":
		s, ok := c.StateGraph.Chlorinators.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "chemController":
		s, ok := c.StateGraph.ChemControllers.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "filter":
		s, ok := c.StateGraph.Filters.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "valve":
		s, ok := c.StateGraph.Valves.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "circuitGroup", "lightGroup":
		s, ok := c.StateGraph.Groups.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "schedule":
		s, ok := c.StateGraph.Schedules.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	case "cover":
		s, ok := c.StateGraph.Covers.Get(id)
		if !ok {
			return nil, poolerr.EquipmentNotFound(kind, id)
		}
		cp := *s
		return &cp, nil
	default:
		return nil, poolerr.EquipmentNotFound(kind, id)
	}
}

// GetSection returns the full configuration collection named by path
// (e.g. "bodies", "circuits", "pumps"), the coarse-grained counterpart
// to GetState for callers that want an entire equipment kind at once.
func (c *Core) GetSection(path string) (any, bool) {
	switch path {
	case "equipment":
		return c.GetEquipment(), true
	case "bodies":
		return c.ConfigGraph.Bodies.All(), true
	case "circuits":
		return c.ConfigGraph.Circuits.All(), true
	case "features":
		return c.ConfigGraph.Features.All(), true
	case "pumps":
		return c.ConfigGraph.Pumps.All(), true
	case "heaters":
		return c.ConfigGraph.Heaters.All(), true
	case "chlorinators":
		return c.ConfigGraph.Chlorinators.All(), true
	case "chemControllers":
		return c.ConfigGraph.ChemControllers.All(), true
	case "schedules":
		return c.ConfigGraph.Schedules.All(), true
	case "valves":
		return c.ConfigGraph.Valves.All(), true
	case "filters":
		return c.ConfigGraph.Filters.All(), true
	case "groups":
		return c.ConfigGraph.Groups.All(), true
	case "covers":
		return c.ConfigGraph.Covers.All(), true
	case "remotes":
		return c.ConfigGraph.Remotes.All(), true
	default:
		return nil, false
	}
}
