// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/core"
	"github.com/poolautomation/poolcore/internal/corelog"
	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/port"
	"github.com/poolautomation/poolcore/internal/protocol"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run against an in-memory loopback simulator instead of real hardware",
	RunE:  runSim,
}

func init() {
	rootCmd.AddCommand(simCmd)
}

// runSim wires a Standalone Board onto an in-memory loopback pair
// (spec.md §12 supplemented feature: "standalone simulator"), then
// drives the peer end with a slow drip of synthetic circuit-status
// broadcasts so `poolcore monitor`/`poolcore inspect` have something
// to show without a physical bus.
func runSim(cmd *cobra.Command, args []string) error {
	cfg := config.Defaults()
	log := corelog.New(cfg.LogLevel, os.Stderr)

	c, err := core.New(cfg, log)
	if err != nil {
		return err
	}
	c.ConfigGraph.Circuits.Upsert(&model.CircuitConfig{ID: 1, Name: "Pool Pump Circuit"})
	c.ConfigGraph.Circuits.Upsert(&model.CircuitConfig{ID: 6, Name: "Spa Light"})

	ours, peer := port.NewLoopbackPair()
	rt := c.AttachPort(0, port.LoopbackOpener(ours), board.VariantStandalone, 0x21, 0x10)
	c.EnableScheduler(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start(ctx)
	go driveSimPeer(ctx, peer, rt.Board.Variant().Framing())

	log.Info().Msg("simulator running against in-memory loopback")
	<-ctx.Done()
	return c.Shutdown()
}

func driveSimPeer(ctx context.Context, peer *port.Loopback, framing protocol.Framing) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	on := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			on = !on
			f := &protocol.Frame{Dest: 0x21, Src: 0x10, Action: 2, Payload: []byte{1, boolByteSim(on)}}
			wire, err := protocol.EncodeFrame(framing, f)
			if err != nil {
				continue
			}
			_, _ = peer.Write(wire)
			_ = rand.Int() // vary timing jitter source without needing real entropy for correctness
		}
	}
}

func boolByteSim(b bool) byte {
	if b {
		return 1
	}
	return 0
}
