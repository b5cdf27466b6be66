// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package change

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/model"
)

// LoadConfig loads pool-config from path into a fresh ConfigGraph. A
// missing file yields empty defaults with no error; a corrupt file is
// quarantined (see LoadJSON) and also yields empty defaults, with the
// ConfigurationCorrupt error returned so the caller can surface a
// "configuration-corrupt" event before continuing on defaults.
func LoadConfig(path string, log zerolog.Logger) (*model.ConfigGraph, error) {
	graph := model.NewConfigGraph()
	var doc ConfigDocument
	err := LoadJSON(path, &doc, log)
	if err != nil {
		if os.IsNotExist(err) {
			return graph, nil
		}
		return graph, err
	}

	graph.Equipment = doc.Equipment
	if graph.Equipment == nil {
		graph.Equipment = &model.Equipment{}
	}
	for _, v := range doc.Bodies {
		graph.Bodies.Upsert(v)
	}
	for _, v := range doc.Circuits {
		graph.Circuits.Upsert(v)
	}
	for _, v := range doc.Features {
		graph.Features.Upsert(v)
	}
	for _, v := range doc.Pumps {
		graph.Pumps.Upsert(v)
	}
	for _, v := range doc.Heaters {
		graph.Heaters.Upsert(v)
	}
	for _, v := range doc.Chlorinators {
		graph.Chlorinators.Upsert(v)
	}
	for _, v := range doc.ChemControllers {
		graph.ChemControllers.Upsert(v)
	}
	for _, v := range doc.Schedules {
		graph.Schedules.Upsert(v)
	}
	for _, v := range doc.Valves {
		graph.Valves.Upsert(v)
	}
	for _, v := range doc.Filters {
		graph.Filters.Upsert(v)
	}
	for _, v := range doc.CircuitGroups {
		v.Kind = model.GroupCircuitGroup
		graph.Groups.Upsert(v)
	}
	for _, v := range doc.LightGroups {
		v.Kind = model.GroupLightGroup
		graph.Groups.Upsert(v)
	}
	for _, v := range doc.Covers {
		graph.Covers.Upsert(v)
	}
	for _, v := range doc.Remotes {
		graph.Remotes.Upsert(v)
	}
	if doc.Options != nil {
		graph.Options = doc.Options
	}
	return graph, nil
}

// LoadState loads pool-state from path. It does not prune entries
// whose configuration counterpart no longer exists (spec.md §3
// invariant 2): the caller runs PruneOrphans once both graphs are
// loaded, since state alone can't know about config.
func LoadState(path string, log zerolog.Logger) (*model.StateGraph, error) {
	graph := model.NewStateGraph()
	var doc StateDocument
	err := LoadJSON(path, &doc, log)
	if err != nil {
		if os.IsNotExist(err) {
			return graph, nil
		}
		return graph, err
	}

	for _, v := range doc.Bodies {
		graph.Bodies.Upsert(v)
	}
	for _, v := range doc.Circuits {
		graph.Circuits.Upsert(v)
	}
	for _, v := range doc.Features {
		graph.Features.Upsert(v)
	}
	for _, v := range doc.Pumps {
		graph.Pumps.Upsert(v)
	}
	for _, v := range doc.Heaters {
		graph.Heaters.Upsert(v)
	}
	for _, v := range doc.Chlorinators {
		graph.Chlorinators.Upsert(v)
	}
	for _, v := range doc.ChemControllers {
		graph.ChemControllers.Upsert(v)
	}
	for _, v := range doc.Schedules {
		graph.Schedules.Upsert(v)
	}
	for _, v := range doc.Valves {
		graph.Valves.Upsert(v)
	}
	for _, v := range doc.Filters {
		graph.Filters.Upsert(v)
	}
	for _, v := range doc.CircuitGroups {
		graph.Groups.Upsert(v)
	}
	for _, v := range doc.LightGroups {
		graph.Groups.Upsert(v)
	}
	for _, v := range doc.Covers {
		graph.Covers.Upsert(v)
	}
	return graph, nil
}
