// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "poolcore",
	Short: "Pool-automation RS-485 bridge",
	Long: `poolcore speaks the RS-485 wire protocol used by Pentair-style pool
controllers (IntelliCenter, IntelliTouch, EasyTouch, SunTouch, IntelliCom,
AquaLink) and exposes their equipment as a local model with live events,
scheduling, and persisted configuration.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "poolcore.yaml", "Configuration file path")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
