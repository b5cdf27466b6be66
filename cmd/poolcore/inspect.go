// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poolautomation/poolcore/internal/change"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/corelog"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the current equipment configuration and state as JSON",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// runInspect loads the persisted config/state documents directly,
// without opening any port, so it can be run alongside a live `serve`
// process to inspect what was last flushed.
func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := corelog.New(cfg.LogLevel, os.Stderr)

	cfgGraph, err := change.LoadConfig(cfg.PoolConfigPath, log)
	if err != nil {
		return fmt.Errorf("load equipment config: %w", err)
	}
	stateGraph, err := change.LoadState(cfg.StatePath, log)
	if err != nil {
		return fmt.Errorf("load equipment state: %w", err)
	}

	out := struct {
		Config *change.ConfigDocument `json:"config"`
		State  *change.StateDocument  `json:"state"`
	}{
		Config: change.BuildConfigDocument(cfgGraph),
		State:  change.BuildStateDocument(stateGraph, cfgGraph),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
