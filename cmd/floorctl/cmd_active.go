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
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/FloorOps/pkg/ux"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var activeWorkflow string // Restrict output to one workflow type

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var activeCmd = &cobra.Command{
	Use:   "active <user_id>",
	Short: "Show a worker's active timers",
	Long: `Shows the worker's active timers with live elapsed minutes.

Without --workflow both workflow types are reported, with null entries
for idle workflows.

Examples:
  floorctl active w-17
  floorctl active w-17 --workflow production`,
	Args: cobra.ExactArgs(1),
	Run:  runActiveCommand,
}

func init() {
	activeCmd.Flags().StringVarP(&activeWorkflow, "workflow", "w", "",
		"Workflow type to query (production or fulfillment)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runActiveCommand(_ *cobra.Command, args []string) {
	client := newAPIClient()

	query := url.Values{}
	query.Set("user_id", args[0])
	if activeWorkflow != "" {
		query.Set("workflow_type", activeWorkflow)
	}

	var out map[string]any
	if err := client.do("GET", "/v1/timers/active?"+query.Encode(), nil, &out); err != nil {
		ux.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}

	printJSON(out)
}
