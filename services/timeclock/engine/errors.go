// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
)

var (
	// ErrAlreadyActive indicates a start collided with an open timer.
	// Match the concrete *AlreadyActiveError with errors.As to get the
	// conflicting stage for the worker-facing message.
	ErrAlreadyActive = errors.New("timer already active")

	// ErrNoActiveTimer indicates pause/resume/stop found nothing open.
	ErrNoActiveTimer = errors.New("no active timer")

	// ErrAlreadyPaused indicates pause was called on a paused timer.
	ErrAlreadyPaused = errors.New("timer already paused")

	// ErrNotPaused indicates resume was called on a running timer.
	ErrNotPaused = errors.New("timer is not paused")

	// ErrInvalidRequest indicates missing or malformed operation inputs.
	ErrInvalidRequest = errors.New("invalid timer request")
)

// AlreadyActiveError carries the conflicting session's context so callers
// can tell the worker exactly which stage still has an open timer.
type AlreadyActiveError struct {
	WorkflowType datatypes.WorkflowType
	LogID        string
	StageID      string
	StageName    string
}

func (e *AlreadyActiveError) Error() string {
	stage := e.StageName
	if stage == "" {
		stage = e.StageID
	}
	return fmt.Sprintf("an open %s timer already exists for stage %q", e.WorkflowType, stage)
}

// Is lets errors.Is(err, ErrAlreadyActive) match without losing the
// stage context.
func (e *AlreadyActiveError) Is(target error) bool {
	return target == ErrAlreadyActive
}
