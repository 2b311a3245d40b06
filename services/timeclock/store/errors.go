// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
)

var (
	// ErrLogNotFound indicates no TimeLog exists for the given log ID.
	ErrLogNotFound = errors.New("time log not found")

	// ErrNotOpen indicates the TimeLog being mutated is no longer the open
	// timer for its (user, workflow) key. A concurrent stop or save won.
	ErrNotOpen = errors.New("time log is not open")

	// ErrSnapshotNotFound indicates no snapshot exists for the given save ID.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// OpenTimerExistsError is returned when an insert collides with the
// open-timer uniqueness key. It carries the conflicting session's stage
// name so callers can render a precise message.
type OpenTimerExistsError struct {
	UserID       string
	WorkflowType datatypes.WorkflowType
	LogID        string
	StageID      string
	StageName    string
}

func (e *OpenTimerExistsError) Error() string {
	stage := e.StageName
	if stage == "" {
		stage = e.StageID
	}
	return fmt.Sprintf("open %s timer already exists for user %s (stage %q)",
		e.WorkflowType, e.UserID, stage)
}
