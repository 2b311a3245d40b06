// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// floorctl is the operator CLI for the FloorOps timeclock service.
//
// It talks to a running timeclock server over HTTP and covers the
// supervisor workflows: checking service health, inspecting a worker's
// active timers, and draining (snapshotting) timers for a worker who
// left without clocking out.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/FloorOps/pkg/ux"
)

var rootCmd = &cobra.Command{
	Use:   "floorctl",
	Short: "Operator CLI for the FloorOps timeclock service",
	Long: `floorctl manages a running timeclock server.

Examples:
  floorctl health                  # Check server and database health
  floorctl active w-17             # Show worker w-17's active timers
  floorctl drain w-17              # Snapshot and close w-17's timers

The server address defaults to http://localhost:12240 and can be
overridden with the TIMECLOCK_URL environment variable. Requests send
the FLOOROPS_TOKEN environment variable as a bearer token when set.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

var plainOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Machine-readable output (no colors or spinners)")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if plainOutput {
			ux.SetPlain(true)
		}
	}

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(drainCmd)
	rootCmd.AddCommand(recoveryCmd)
}
