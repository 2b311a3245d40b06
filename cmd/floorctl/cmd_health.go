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

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check timeclock server health",
	Long: `Checks that the timeclock server is reachable and that its timer
database answers a read transaction.

Exits 1 when the server is unreachable or unhealthy, so the command can
gate deployment scripts.`,
	Run: runHealthCommand,
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runHealthCommand(_ *cobra.Command, _ []string) {
	client := newAPIClient()

	var out map[string]any
	if err := client.do("GET", "/health", nil, &out); err != nil {
		ux.Error(fmt.Sprintf("unhealthy: %v", err))
		os.Exit(1)
	}

	ux.Success("timeclock server healthy")
	ux.KeyValue("url", client.baseURL)
}
