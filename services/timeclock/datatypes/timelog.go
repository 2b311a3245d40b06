// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the shared data structures for the timeclock
// service: work-timer sessions (TimeLog), recoverable snapshots
// (SavedTimerState), and the workflow domains they are partitioned by.
package datatypes

import (
	"fmt"
	"time"
)

// =============================================================================
// Workflow Types
// =============================================================================

// WorkflowType identifies one of the two independent timer domains.
//
// Production and fulfillment timers never share the single-active-timer
// constraint or query scope: a worker may hold one open timer in each
// domain simultaneously.
type WorkflowType string

const (
	// WorkflowProduction is the production-floor timer domain.
	WorkflowProduction WorkflowType = "production"

	// WorkflowFulfillment is the fulfillment-floor timer domain.
	WorkflowFulfillment WorkflowType = "fulfillment"
)

// AllWorkflowTypes returns the closed set of timer domains.
func AllWorkflowTypes() []WorkflowType {
	return []WorkflowType{WorkflowProduction, WorkflowFulfillment}
}

// Valid reports whether w is a known workflow type.
func (w WorkflowType) Valid() bool {
	return w == WorkflowProduction || w == WorkflowFulfillment
}

// ParseWorkflowType converts a wire string into a WorkflowType.
//
// # Outputs
//
//   - WorkflowType: The parsed value.
//   - error: Non-nil if s is not a known workflow type.
func ParseWorkflowType(s string) (WorkflowType, error) {
	w := WorkflowType(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown workflow type %q", s)
	}
	return w, nil
}

// =============================================================================
// TimeLog
// =============================================================================

// TimeLog is one work-timer session for a worker on a pipeline stage.
//
// # Description
//
// A TimeLog is created by Start, mutated by Pause/Resume/Stop and by
// item-count increments from the stage pipeline, and closed exactly once.
// It is never deleted.
//
// Clock-state invariants:
//
//  1. For a fixed (UserID, WorkflowType) at most one TimeLog has
//     CompletedAt == nil. Enforced at the storage layer, not here.
//  2. AccumulatedMinutes is monotonically non-decreasing, changing only on
//     a Running→Paused transition (banking the elapsed interval) or at
//     close (finalized into DurationMinutes).
//  3. A Paused→Running transition resets StartedAt but never touches
//     AccumulatedMinutes.
//
// # Thread Safety
//
// TimeLog is a plain value; concurrent mutation control lives in the
// store's transactions.
type TimeLog struct {
	// LogID uniquely identifies this session.
	LogID string `json:"log_id"`

	// UserID is the worker this session belongs to.
	UserID string `json:"user_id"`

	// UserName is a denormalized display name. Never authoritative; it is
	// a read-path cache that may be refreshed without touching clock state.
	UserName string `json:"user_name,omitempty"`

	// StageID is the pipeline stage being timed.
	StageID string `json:"stage_id"`

	// StageName is the denormalized stage display name.
	StageName string `json:"stage_name,omitempty"`

	// BatchID optionally ties the session to a production batch.
	BatchID string `json:"batch_id,omitempty"`

	// WorkflowType is the timer domain this session counts against.
	WorkflowType WorkflowType `json:"workflow_type"`

	// StartedAt anchors the current running interval. While paused it is
	// historical metadata only and is not reused until resume.
	StartedAt time.Time `json:"started_at"`

	// AccumulatedMinutes is time banked from previous running intervals,
	// excluding the interval currently open.
	AccumulatedMinutes float64 `json:"accumulated_minutes"`

	// IsPaused reports whether the session is currently paused.
	IsPaused bool `json:"is_paused"`

	// CompletedAt is nil while the session is open.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationMinutes is set only at close, rounded to 2 decimals.
	DurationMinutes float64 `json:"duration_minutes,omitempty"`

	// ItemsProcessed counts units handled during the session. Mutable
	// while open; the pipeline increments it.
	ItemsProcessed int `json:"items_processed"`

	// RestoredFrom carries the save_id of the snapshot this session was
	// restored from, for traceability. Empty for ordinary starts.
	RestoredFrom string `json:"restored_from,omitempty"`

	// CreatedAt is when the session record was inserted.
	CreatedAt time.Time `json:"created_at"`
}

// IsOpen reports whether the session has not been closed yet.
func (l *TimeLog) IsOpen() bool {
	return l.CompletedAt == nil
}

// ElapsedMinutes computes the session's effective elapsed time at now.
//
// # Description
//
// This is the single duration formula used everywhere: banked minutes plus
// the current running interval (zero while paused). Stop finalizes this
// value into DurationMinutes; SaveAll writes it into a snapshot; both call
// this method so a save mid-session is numerically indistinguishable from
// a stop at the same instant.
//
// # Inputs
//
//   - now: The observation instant. Must come from the engine's clock.
//
// # Outputs
//
//   - float64: Continuous minutes, not rounded.
func (l *TimeLog) ElapsedMinutes(now time.Time) float64 {
	if l.IsPaused {
		return l.AccumulatedMinutes
	}
	return l.AccumulatedMinutes + MinutesBetween(l.StartedAt, now)
}

// =============================================================================
// SavedTimerState
// =============================================================================

// SavedTimerState is a recoverable snapshot of an interrupted session.
//
// At most one un-restored snapshot exists per (UserID, WorkflowType); a new
// save supersedes prior ones. Restored flips false→true exactly once and is
// never reset.
type SavedTimerState struct {
	// SaveID uniquely identifies this snapshot.
	SaveID string `json:"save_id"`

	// OriginalLogID references the TimeLog the snapshot was taken from.
	OriginalLogID string `json:"original_log_id"`

	// UserID is the worker the snapshot belongs to.
	UserID string `json:"user_id"`

	// UserName is the worker's display name, carried so a restored
	// session keeps it.
	UserName string `json:"user_name,omitempty"`

	// WorkflowType is the timer domain of the source session.
	WorkflowType WorkflowType `json:"workflow_type"`

	// Stage/batch context carried from the source TimeLog.
	StageID   string `json:"stage_id"`
	StageName string `json:"stage_name,omitempty"`
	BatchID   string `json:"batch_id,omitempty"`

	// ElapsedMinutes is the effective elapsed time at save, computed with
	// the same formula Stop uses, rounded to 2 decimals.
	ElapsedMinutes float64 `json:"elapsed_minutes"`

	// ItemsProcessed is the item count at save.
	ItemsProcessed int `json:"items_processed"`

	// IsPaused records the pause state at save time.
	IsPaused bool `json:"is_paused"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// Restored reports whether the snapshot was consumed by a restore.
	Restored bool `json:"restored"`

	// RestoredAt is set when Restored flips true.
	RestoredAt *time.Time `json:"restored_at,omitempty"`
}
