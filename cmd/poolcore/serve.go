// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/core"
	"github.com/poolautomation/poolcore/internal/corelog"
	"github.com/poolautomation/poolcore/internal/events"
	"github.com/poolautomation/poolcore/internal/port"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge daemon",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := corelog.New(cfg.LogLevel, os.Stderr)

	c, err := core.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize core: %w", err)
	}

	for _, pc := range cfg.Ports {
		opener, err := buildOpener(pc)
		if err != nil {
			return fmt.Errorf("port %d: %w", pc.ID, err)
		}
		variant := board.ParseVariant(pc.Variant)
		c.AttachPort(pc.ID, opener, variant, 0x21, 0x10)
	}
	if len(cfg.Ports) > 0 {
		c.EnableScheduler(cfg.Ports[0].ID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start(ctx)
	log.Info().Msg("poolcore bridge running")

	reloadCtx, cancelReload := context.WithCancel(ctx)
	defer cancelReload()
	go func() {
		_ = config.Watch(reloadCtx, cfg, func(reloaded config.Config) {
			c.Cfg = reloaded
			c.Bus.Publish(events.Event{Kind: "configuration-reloaded"})
		}, log)
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return c.Shutdown()
}

func buildOpener(pc config.PortConfig) (port.Opener, error) {
	switch pc.Kind {
	case "serial":
		return port.SerialOpener(port.SerialConfig{Device: pc.Device, Baud: pc.Baud}), nil
	case "tcp":
		return port.TCPOpener(port.TCPConfig{Host: pc.Host, Port: pc.TCPPort}), nil
	case "ws":
		return port.WSOpener(port.WSConfig{URL: pc.Host}), nil
	default:
		return nil, fmt.Errorf("unknown port kind %q", pc.Kind)
	}
}
