// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Command poolcore is the pool-automation bridge CLI: it speaks the
// RS-485 wire protocol used by Pentair-style pool controllers and
// exposes the equipment model, schedule executor, and change feed over
// a small set of subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
