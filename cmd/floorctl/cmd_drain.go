// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/FloorOps/pkg/ux"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var drainCmd = &cobra.Command{
	Use:   "drain <user_id>",
	Short: "Snapshot and close a worker's active timers",
	Long: `Snapshots every active timer for the worker and closes the
originals, preserving elapsed time and item counts.

Use this when a worker left the floor without clocking out: their time
is captured, and when they next log in the station offers to restore
the session from the snapshot.

Requires an admin token (FLOOROPS_TOKEN).`,
	Args: cobra.ExactArgs(1),
	Run:  runDrainCommand,
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runDrainCommand(_ *cobra.Command, args []string) {
	client := newAPIClient()

	body := map[string]string{"user_id": args[0]}
	var out struct {
		Saved int `json:"saved"`
	}
	err := ux.WithSpinner(fmt.Sprintf("draining timers for %s", args[0]), func() error {
		return client.do("POST", "/v1/recovery/save", body, &out)
	})
	if err != nil {
		os.Exit(1)
	}

	if out.Saved == 0 {
		ux.Info(fmt.Sprintf("No active timers for %s", args[0]))
		return
	}
	ux.Success(fmt.Sprintf("Saved %d timer(s) for %s", out.Saved, args[0]))
}
