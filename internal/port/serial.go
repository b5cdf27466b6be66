// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package port

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// SerialConfig carries the line parameters spec.md §4.1 requires for a
// local serial transport (device path plus baud/data-bits/parity/
// stop-bits/flow-control).
type SerialConfig struct {
	Device   string
	Baud     int
	DataBits int
	Parity   string // "none", "odd", "even"
	StopBits string // "1", "1.5", "2"
}

// SerialOpener returns an Opener that dials a local serial device.
// Grounded on the teacher's OpenSerialConnection (cmd/connection.go),
// generalized to the full line-parameter set spec.md §4.1 calls for.
func SerialOpener(cfg SerialConfig) Opener {
	return func(_ context.Context) (Transport, error) {
		mode := &serial.Mode{
			BaudRate: cfg.Baud,
			DataBits: cfg.DataBits,
		}
		switch cfg.Parity {
		case "odd":
			mode.Parity = serial.OddParity
		case "even":
			mode.Parity = serial.EvenParity
		default:
			mode.Parity = serial.NoParity
		}
		switch cfg.StopBits {
		case "2":
			mode.StopBits = serial.TwoStopBits
		case "1.5":
			mode.StopBits = serial.OnePointFiveStopBits
		default:
			mode.StopBits = serial.OneStopBit
		}
		if mode.DataBits == 0 {
			mode.DataBits = 8
		}

		p, err := serial.Open(cfg.Device, mode)
		if err != nil {
			return nil, fmt.Errorf("port: open %s: %w", cfg.Device, err)
		}
		return p, nil
	}
}
