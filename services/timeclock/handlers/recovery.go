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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/FloorOps/services/timeclock/recovery"
)

// SaveTimers handles POST /v1/recovery/save.
//
// Snapshots every active timer for the user and closes the originals.
// Used by stations on shutdown, and by supervisors (via user_id override)
// to drain a departed worker's timers.
func SaveTimers(svc *recovery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id,omitempty"`
		}
		// Body is optional; an empty body saves the caller's own timers.
		_ = c.ShouldBindJSON(&req)

		userID, _, err := resolveActor(c, req.UserID)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		saved, err := svc.SaveAll(c.Request.Context(), userID)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		slog.Info("timers saved for recovery", "user_id", userID, "saved", saved)
		c.JSON(http.StatusOK, gin.H{"saved": saved})
	}
}

// CheckRecovery handles GET /v1/recovery/check.
//
// Reports any un-restored snapshots for the user, one per workflow.
// Stations call this at login to offer "pick up where you left off".
func CheckRecovery(svc *recovery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := resolveActor(c, c.Query("user_id"))
		if err != nil {
			respondTimerError(c, err)
			return
		}

		result, err := svc.Check(c.Request.Context(), userID)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// RestoreTimer handles POST /v1/recovery/restore.
//
// Starts a fresh timer seeded with the snapshot's elapsed time and item
// count, then marks the snapshot consumed. A snapshot restores at most
// once; a second restore returns 404.
func RestoreTimer(svc *recovery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RestoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		log, err := svc.Restore(c.Request.Context(), userID, req.SaveID)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		slog.Info("timer restored", "user_id", userID,
			"save_id", req.SaveID, "log_id", log.LogID)
		c.JSON(http.StatusCreated, log)
	}
}

// DiscardRecovery handles POST /v1/recovery/discard.
//
// Deletes one snapshot by save_id, or all the user's un-restored
// snapshots when target is "all". Discarding is idempotent.
func DiscardRecovery(svc *recovery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DiscardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		deleted, err := svc.Discard(c.Request.Context(), userID, req.Target)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}
