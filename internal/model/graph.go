// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package model

// ConfigGraph is the full slowly-changing configuration: bodies,
// circuits, features, pumps, heaters, chlorinators, chem controllers,
// schedules, valves, filters, groups, covers, remotes, and the
// equipment singleton (spec.md §3, persisted as *pool-config*).
type ConfigGraph struct {
	Equipment       *Equipment
	Bodies          *Collection[*BodyConfig]
	Circuits        *Collection[*CircuitConfig]
	Features        *Collection[*FeatureConfig]
	Pumps           *Collection[*PumpConfig]
	Heaters         *Collection[*HeaterConfig]
	Chlorinators    *Collection[*ChlorinatorConfig]
	ChemControllers *Collection[*ChemControllerConfig]
	Schedules       *Collection[*ScheduleConfig]
	Valves          *Collection[*ValveConfig]
	Filters         *Collection[*FilterConfig]
	Groups          *Collection[*GroupConfig]
	Covers          *Collection[*CoverConfig]
	Remotes         *Collection[*RemoteConfig]
	Options         map[string]any
}

// NewConfigGraph returns an empty configuration graph with every
// collection initialized (never nil, so callers never special-case a
// freshly-created graph).
func NewConfigGraph() *ConfigGraph {
	return &ConfigGraph{
		Equipment:       &Equipment{},
		Bodies:          NewCollection[*BodyConfig](),
		Circuits:        NewCollection[*CircuitConfig](),
		Features:        NewCollection[*FeatureConfig](),
		Pumps:           NewCollection[*PumpConfig](),
		Heaters:         NewCollection[*HeaterConfig](),
		Chlorinators:    NewCollection[*ChlorinatorConfig](),
		ChemControllers: NewCollection[*ChemControllerConfig](),
		Schedules:       NewCollection[*ScheduleConfig](),
		Valves:          NewCollection[*ValveConfig](),
		Filters:         NewCollection[*FilterConfig](),
		Groups:          NewCollection[*GroupConfig](),
		Covers:          NewCollection[*CoverConfig](),
		Remotes:         NewCollection[*RemoteConfig](),
		Options:         make(map[string]any),
	}
}

// StateGraph mirrors ConfigGraph's shape with the fast-changing live
// state fields (spec.md §3, persisted as *pool-state*).
type StateGraph struct {
	Bodies          *Collection[*BodyState]
	Circuits        *Collection[*CircuitState]
	Features        *Collection[*FeatureState]
	Pumps           *Collection[*PumpState]
	Heaters         *Collection[*HeaterState]
	Chlorinators    *Collection[*ChlorinatorState]
	ChemControllers *Collection[*ChemControllerState]
	Schedules       *Collection[*ScheduleState]
	Valves          *Collection[*ValveState]
	Filters         *Collection[*FilterState]
	Groups          *Collection[*GroupState]
	Covers          *Collection[*CoverState]
}

func NewStateGraph() *StateGraph {
	return &StateGraph{
		Bodies:          NewCollection[*BodyState](),
		Circuits:        NewCollection[*CircuitState](),
		Features:        NewCollection[*FeatureState](),
		Pumps:           NewCollection[*PumpState](),
		Heaters:         NewCollection[*HeaterState](),
		Chlorinators:    NewCollection[*ChlorinatorState](),
		ChemControllers: NewCollection[*ChemControllerState](),
		Schedules:       NewCollection[*ScheduleState](),
		Valves:          NewCollection[*ValveState](),
		Filters:         NewCollection[*FilterState](),
		Groups:          NewCollection[*GroupState](),
		Covers:          NewCollection[*CoverState](),
	}
}

// PruneOrphans removes every state item whose configuration
// counterpart no longer exists (spec.md §3 invariant 2, §8 invariant
// 5: "orphan counts are 0 after load"). It returns the number removed.
func PruneOrphans(cfg *ConfigGraph, st *StateGraph) int {
	removed := 0
	prune := func(hasConfig func(id int) bool, ids []int, remove func(int)) {
		for _, id := range ids {
			if !hasConfig(id) {
				remove(id)
				removed++
			}
		}
	}

	idsOf := func(fn func() []int) []int { return fn() }
	_ = idsOf

	bodyIDs := make([]int, 0)
	for _, b := range st.Bodies.All() {
		bodyIDs = append(bodyIDs, b.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Bodies.Get(id); return ok }, bodyIDs, func(id int) { st.Bodies.Remove(id) })

	circuitIDs := make([]int, 0)
	for _, c := range st.Circuits.All() {
		circuitIDs = append(circuitIDs, c.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Circuits.Get(id); return ok }, circuitIDs, func(id int) { st.Circuits.Remove(id) })

	featureIDs := make([]int, 0)
	for _, f := range st.Features.All() {
		featureIDs = append(featureIDs, f.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Features.Get(id); return ok }, featureIDs, func(id int) { st.Features.Remove(id) })

	pumpIDs := make([]int, 0)
	for _, p := range st.Pumps.All() {
		pumpIDs = append(pumpIDs, p.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Pumps.Get(id); return ok }, pumpIDs, func(id int) { st.Pumps.Remove(id) })

	heaterIDs := make([]int, 0)
	for _, h := range st.Heaters.All() {
		heaterIDs = append(heaterIDs, h.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Heaters.Get(id); return ok }, heaterIDs, func(id int) { st.Heaters.Remove(id) })

	chlorIDs := make([]int, 0)
	for _, c := range st.Chlorinators.All() {
		chlorIDs = append(chlorIDs, c.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Chlorinators.Get(id); return ok }, chlorIDs, func(id int) { st.Chlorinators.Remove(id) })

	chemIDs := make([]int, 0)
	for _, c := range st.ChemControllers.All() {
		chemIDs = append(chemIDs, c.ID)
	}
	prune(func(id int) bool { _, ok := cfg.ChemControllers.Get(id); return ok }, chemIDs, func(id int) { st.ChemControllers.Remove(id) })

	schedIDs := make([]int, 0)
	for _, s := range st.Schedules.All() {
		schedIDs = append(schedIDs, s.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Schedules.Get(id); return ok }, schedIDs, func(id int) { st.Schedules.Remove(id) })

	valveIDs := make([]int, 0)
	for _, v := range st.Valves.All() {
		valveIDs = append(valveIDs, v.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Valves.Get(id); return ok }, valveIDs, func(id int) { st.Valves.Remove(id) })

	filterIDs := make([]int, 0)
	for _, f := range st.Filters.All() {
		filterIDs = append(filterIDs, f.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Filters.Get(id); return ok }, filterIDs, func(id int) { st.Filters.Remove(id) })

	groupIDs := make([]int, 0)
	for _, g := range st.Groups.All() {
		groupIDs = append(groupIDs, g.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Groups.Get(id); return ok }, groupIDs, func(id int) { st.Groups.Remove(id) })

	coverIDs := make([]int, 0)
	for _, c := range st.Covers.All() {
		coverIDs = append(coverIDs, c.ID)
	}
	prune(func(id int) bool { _, ok := cfg.Covers.Get(id); return ok }, coverIDs, func(id int) { st.Covers.Remove(id) })

	return removed
}
