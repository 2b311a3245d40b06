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

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/FloorOps/pkg/extensions"
	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
	"github.com/AleutianAI/FloorOps/services/timeclock/recovery"
)

// respondTimerError translates domain errors into HTTP responses.
//
// Conflict-class errors (already active, already paused, not paused) map
// to 409 so stations can distinguish "retry is pointless" from transient
// failures. Missing-state errors map to 404. Anything unrecognized is a
// 500 and gets logged.
func respondTimerError(c *gin.Context, err error) {
	var active *engine.AlreadyActiveError
	switch {
	case errors.As(err, &active):
		c.JSON(http.StatusConflict, gin.H{
			"error": "timer already active",
			"active": gin.H{
				"log_id":        active.LogID,
				"workflow_type": active.WorkflowType,
				"stage_id":      active.StageID,
				"stage_name":    active.StageName,
			},
		})
	case errors.Is(err, engine.ErrAlreadyPaused):
		c.JSON(http.StatusConflict, gin.H{"error": "timer already paused"})
	case errors.Is(err, engine.ErrNotPaused):
		c.JSON(http.StatusConflict, gin.H{"error": "timer is not paused"})
	case errors.Is(err, engine.ErrNoActiveTimer):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active timer"})
	case errors.Is(err, recovery.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
	case errors.Is(err, extensions.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, engine.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("unhandled timer error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
