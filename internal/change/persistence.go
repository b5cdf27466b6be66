// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package change implements the Change Engine (spec.md §4.6): per-entity
// diff/commit bookkeeping, event fan-out, and debounced atomic
// persistence of the pool-config and pool-state documents.
package change

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/poolerr"
)

// ConfigDocument is the on-disk shape of pool-config (spec.md §6):
// circuitGroups and lightGroups are GroupConfig split by GroupKind.
type ConfigDocument struct {
	Equipment       *model.Equipment             `json:"equipment"`
	Bodies          []*model.BodyConfig          `json:"bodies"`
	Circuits        []*model.CircuitConfig       `json:"circuits"`
	Features        []*model.FeatureConfig       `json:"features"`
	Pumps           []*model.PumpConfig          `json:"pumps"`
	Heaters         []*model.HeaterConfig        `json:"heaters"`
	Chlorinators    []*model.ChlorinatorConfig   `json:"chlorinators"`
	ChemControllers []*model.ChemControllerConfig `json:"chemControllers"`
	Schedules       []*model.ScheduleConfig      `json:"schedules"`
	Valves          []*model.ValveConfig         `json:"valves"`
	Filters         []*model.FilterConfig        `json:"filters"`
	CircuitGroups   []*model.GroupConfig         `json:"circuitGroups"`
	LightGroups     []*model.GroupConfig         `json:"lightGroups"`
	Covers          []*model.CoverConfig         `json:"covers"`
	Remotes         []*model.RemoteConfig        `json:"remotes"`
	Options         map[string]any               `json:"options"`
}

// StateDocument is the on-disk shape of pool-state (spec.md §6).
type StateDocument struct {
	Bodies          []*model.BodyState          `json:"bodies"`
	Circuits        []*model.CircuitState       `json:"circuits"`
	Features        []*model.FeatureState       `json:"features"`
	Pumps           []*model.PumpState          `json:"pumps"`
	Heaters         []*model.HeaterState        `json:"heaters"`
	Chlorinators    []*model.ChlorinatorState   `json:"chlorinators"`
	ChemControllers []*model.ChemControllerState `json:"chemControllers"`
	Schedules       []*model.ScheduleState      `json:"schedules"`
	Valves          []*model.ValveState         `json:"valves"`
	Filters         []*model.FilterState        `json:"filters"`
	CircuitGroups   []*model.GroupState         `json:"circuitGroups"`
	LightGroups     []*model.GroupState         `json:"lightGroups"`
	Covers          []*model.CoverState         `json:"covers"`
}

// BuildConfigDocument snapshots cfg into its persisted shape.
func BuildConfigDocument(cfg *model.ConfigGraph) *ConfigDocument {
	doc := &ConfigDocument{
		Equipment:       cfg.Equipment,
		Bodies:          cfg.Bodies.All(),
		Circuits:        cfg.Circuits.All(),
		Features:        cfg.Features.All(),
		Pumps:           cfg.Pumps.All(),
		Heaters:         cfg.Heaters.All(),
		Chlorinators:    cfg.Chlorinators.All(),
		ChemControllers: cfg.ChemControllers.All(),
		Schedules:       cfg.Schedules.All(),
		Valves:          cfg.Valves.All(),
		Filters:         cfg.Filters.All(),
		Covers:          cfg.Covers.All(),
		Remotes:         cfg.Remotes.All(),
		Options:         cfg.Options,
	}
	for _, g := range cfg.Groups.All() {
		if g.Kind == model.GroupLightGroup {
			doc.LightGroups = append(doc.LightGroups, g)
		} else {
			doc.CircuitGroups = append(doc.CircuitGroups, g)
		}
	}
	return doc
}

// BuildStateDocument snapshots st into its persisted shape. GroupState
// carries no Kind of its own (it shadows GroupConfig), so cfg supplies
// the circuitGroup/lightGroup split.
func BuildStateDocument(st *model.StateGraph, cfg *model.ConfigGraph) *StateDocument {
	doc := &StateDocument{
		Bodies:          st.Bodies.All(),
		Circuits:        st.Circuits.All(),
		Features:        st.Features.All(),
		Pumps:           st.Pumps.All(),
		Heaters:         st.Heaters.All(),
		Chlorinators:    st.Chlorinators.All(),
		ChemControllers: st.ChemControllers.All(),
		Schedules:       st.Schedules.All(),
		Valves:          st.Valves.All(),
		Filters:         st.Filters.All(),
		Covers:          st.Covers.All(),
	}
	for _, g := range st.Groups.All() {
		isLight := false
		if gc, ok := cfg.Groups.Get(g.ID); ok {
			isLight = gc.Kind == model.GroupLightGroup
		}
		if isLight {
			doc.LightGroups = append(doc.LightGroups, g)
		} else {
			doc.CircuitGroups = append(doc.CircuitGroups, g)
		}
	}
	return doc
}

// writeAtomic writes data to path via a temp-file-plus-fsync-plus-rename
// sequence (spec.md §4.6: "atomic write"), grounded on renameio's
// WriteFile which performs exactly that sequence.
func writeAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return poolerr.PersistenceError(path, err)
	}
	return nil
}

// LoadJSON reads and unmarshals path into out. On a corrupt (unparsable)
// file it renames the bad file aside to "<path>.corrupt-<unixnano>.json",
// returns a ConfigurationCorrupt error, and leaves out untouched so the
// caller can fall back to defaults (spec.md §4.6, §8 invariant: corrupt
// files are quarantined, never silently overwritten).
func LoadJSON(path string, out any, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return poolerr.PersistenceError(path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt-%d.json", path, time.Now().UnixNano())
		if renErr := os.Rename(path, quarantine); renErr != nil {
			log.Error().Err(renErr).Str("path", path).Msg("failed to quarantine corrupt persistence file")
		} else {
			log.Warn().Str("path", path).Str("quarantine", quarantine).Msg("quarantined corrupt persistence file")
		}
		return poolerr.ConfigurationCorrupt(path)
	}
	return nil
}
