// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package corelog wires the zerolog backend used throughout the core.
// New builds the root logger; Component derives a child logger tagged
// with a component name.
package corelog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger at the given level (one of zerolog's level
// names: trace, debug, info, warn, error). An empty/unknown level falls
// back to "info".
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the owning subsystem,
// e.g. corelog.Component(root, "port").
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
