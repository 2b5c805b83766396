// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools
//
// Ccwatch - CurrentCost Energy Monitor Decoder
//
// A CLI tool for decoding, watching, and forwarding telemetry from
// CurrentCost home energy monitors.

package main

import (
	"os"

	"github.com/gridtools/currentcost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
