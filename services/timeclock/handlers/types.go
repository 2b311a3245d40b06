// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

// StartTimerRequest begins a work session on a stage.
//
// The acting user comes from the auth context; UserID is an admin-only
// override for starting a timer on another worker's behalf.
type StartTimerRequest struct {
	StageID      string `json:"stage_id" binding:"required,ident"`
	StageName    string `json:"stage_name" binding:"required"`
	BatchID      string `json:"batch_id"`
	WorkflowType string `json:"workflow_type" binding:"required,oneof=production fulfillment"`
	UserID       string `json:"user_id,omitempty" binding:"omitempty,ident"`
	UserName     string `json:"user_name,omitempty"`
}

// PauseTimerRequest pauses the active timer on a stage.
type PauseTimerRequest struct {
	StageID      string `json:"stage_id" binding:"required,ident"`
	WorkflowType string `json:"workflow_type" binding:"required,oneof=production fulfillment"`
}

// ResumeTimerRequest resumes a paused timer on a stage.
type ResumeTimerRequest struct {
	StageID      string `json:"stage_id" binding:"required,ident"`
	WorkflowType string `json:"workflow_type" binding:"required,oneof=production fulfillment"`
}

// StopTimerRequest finalizes the active timer.
//
// ItemsProcessed is the station's final count; the engine keeps the larger
// of this value and any count accumulated through item increments. UserID
// is an admin-only override for stopping another worker's timer.
type StopTimerRequest struct {
	WorkflowType   string `json:"workflow_type" binding:"required,oneof=production fulfillment"`
	ItemsProcessed int    `json:"items_processed" binding:"gte=0"`
	UserID         string `json:"user_id,omitempty" binding:"omitempty,ident"`
}

// IncrementItemsRequest adds completed items to the active timer.
type IncrementItemsRequest struct {
	WorkflowType string `json:"workflow_type" binding:"required,oneof=production fulfillment"`
	Delta        int    `json:"delta" binding:"gte=0"`
}

// RestoreRequest resumes work from a shutdown snapshot.
type RestoreRequest struct {
	SaveID string `json:"save_id" binding:"required"`
}

// DiscardRequest deletes one snapshot by id, or every un-restored
// snapshot for the user when Target is "all".
type DiscardRequest struct {
	Target string `json:"target" binding:"required"`
}
