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
// COMMAND DEFINITION
// =============================================================================

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Inspect and manage shutdown snapshots",
}

var recoveryCheckCmd = &cobra.Command{
	Use:   "check <user_id>",
	Short: "List a worker's un-restored snapshots",
	Args:  cobra.ExactArgs(1),
	Run:   runRecoveryCheckCommand,
}

var recoveryDiscardCmd = &cobra.Command{
	Use:   "discard <save_id|all>",
	Short: "Delete a snapshot, or all of the caller's snapshots",
	Args:  cobra.ExactArgs(1),
	Run:   runRecoveryDiscardCommand,
}

func init() {
	recoveryCmd.AddCommand(recoveryCheckCmd)
	recoveryCmd.AddCommand(recoveryDiscardCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runRecoveryCheckCommand(_ *cobra.Command, args []string) {
	client := newAPIClient()

	query := url.Values{}
	query.Set("user_id", args[0])

	var out map[string]any
	if err := client.do("GET", "/v1/recovery/check?"+query.Encode(), nil, &out); err != nil {
		ux.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}

	printJSON(out)
}

func runRecoveryDiscardCommand(_ *cobra.Command, args []string) {
	client := newAPIClient()

	body := map[string]string{"target": args[0]}
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := client.do("POST", "/v1/recovery/discard", body, &out); err != nil {
		ux.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}

	ux.Success(fmt.Sprintf("Deleted %d snapshot(s)", out.Deleted))
}
