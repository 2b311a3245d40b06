// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP surface of the timeclock service.
//
// Handlers are thin: they bind and validate request bodies, resolve the
// acting user from the auth context, delegate to the engine or recovery
// service, and translate domain errors to HTTP status codes. All timer
// semantics live in the engine package.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/FloorOps/pkg/extensions"
	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
	"github.com/AleutianAI/FloorOps/services/timeclock/middleware"
	"github.com/AleutianAI/FloorOps/services/timeclock/policy"
)

// resolveActor determines which worker a request operates on.
//
// The default actor is the authenticated user. A request may name another
// worker via override; that path is reserved for supervisors (RoleAdmin),
// covering the "worker forgot to clock out" case. Returns
// extensions.ErrUnauthorized when a non-admin attempts an override.
func resolveActor(c *gin.Context, override string) (userID, userName string, err error) {
	auth := middleware.GetAuthInfo(c)
	if auth == nil {
		return "", "", extensions.ErrUnauthorized
	}
	if override == "" || override == auth.UserID {
		return auth.UserID, auth.DisplayName, nil
	}
	if !auth.HasRole(extensions.RoleAdmin) {
		return "", "", extensions.ErrUnauthorized
	}
	// Supervisor acting on another worker. The display name is unknown
	// here; the engine keeps whatever name the timer was started with.
	return override, "", nil
}

// StartTimer handles POST /v1/timers/start.
func StartTimer(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartTimerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, userName, err := resolveActor(c, req.UserID)
		if err != nil {
			respondTimerError(c, err)
			return
		}
		if req.UserName != "" {
			userName = req.UserName
		}

		log, err := eng.Start(c.Request.Context(), engine.StartRequest{
			UserID:       userID,
			UserName:     userName,
			StageID:      req.StageID,
			StageName:    req.StageName,
			BatchID:      req.BatchID,
			WorkflowType: datatypes.WorkflowType(req.WorkflowType),
		})
		if err != nil {
			respondTimerError(c, err)
			return
		}

		slog.Info("timer started",
			"log_id", log.LogID, "user_id", userID,
			"stage_id", req.StageID, "workflow", req.WorkflowType)
		c.JSON(http.StatusCreated, log)
	}
}

// PauseTimer handles POST /v1/timers/pause.
func PauseTimer(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PauseTimerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		log, err := eng.Pause(c.Request.Context(), userID, req.StageID,
			datatypes.WorkflowType(req.WorkflowType))
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, log)
	}
}

// ResumeTimer handles POST /v1/timers/resume.
func ResumeTimer(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResumeTimerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		log, err := eng.Resume(c.Request.Context(), userID, req.StageID,
			datatypes.WorkflowType(req.WorkflowType))
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, log)
	}
}

// StopTimer handles POST /v1/timers/stop.
//
// On success the response includes the finalized duration, the item count,
// and the advisory daily-limit status after this session was recorded.
func StopTimer(eng *engine.Engine, limiter *policy.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StopTimerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, req.UserID)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		result, err := eng.Stop(c.Request.Context(), userID,
			datatypes.WorkflowType(req.WorkflowType), req.ItemsProcessed)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		limiter.RecordStop(userID, result.DurationMinutes)
		status := limiter.Check(userID)

		slog.Info("timer stopped",
			"log_id", result.LogID, "user_id", userID,
			"duration_minutes", result.DurationMinutes,
			"items_processed", result.ItemsProcessed)
		c.JSON(http.StatusOK, gin.H{
			"log_id":           result.LogID,
			"duration_minutes": result.DurationMinutes,
			"items_processed":  result.ItemsProcessed,
			"daily_limit":      status,
		})
	}
}

// IncrementItems handles POST /v1/timers/items.
func IncrementItems(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IncrementItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		log, err := eng.IncrementItems(c.Request.Context(), userID,
			datatypes.WorkflowType(req.WorkflowType), req.Delta)
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, log)
	}
}

// GetActiveTimers handles GET /v1/timers/active.
//
// With ?workflow_type= it returns the single active timer (or 404). With
// no query it reports both workflows, with nulls for idle ones, plus
// live elapsed minutes computed against the engine clock.
func GetActiveTimers(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := resolveActor(c, c.Query("user_id"))
		if err != nil {
			respondTimerError(c, err)
			return
		}

		if wf := c.Query("workflow_type"); wf != "" {
			workflow, err := datatypes.ParseWorkflowType(wf)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log, err := eng.GetActive(c.Request.Context(), userID, workflow)
			if err != nil {
				respondTimerError(c, err)
				return
			}
			if log == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "no active timer"})
				return
			}
			c.JSON(http.StatusOK, activeView(log, eng))
			return
		}

		out := gin.H{}
		for _, workflow := range datatypes.AllWorkflowTypes() {
			log, err := eng.GetActive(c.Request.Context(), userID, workflow)
			if err != nil {
				respondTimerError(c, err)
				return
			}
			if log == nil {
				out[string(workflow)] = nil
				continue
			}
			out[string(workflow)] = activeView(log, eng)
		}
		c.JSON(http.StatusOK, out)
	}
}

// activeView decorates an open timer with its live elapsed minutes.
func activeView(log *datatypes.TimeLog, eng *engine.Engine) gin.H {
	return gin.H{
		"timer":           log,
		"elapsed_minutes": datatypes.RoundMinutes(log.ElapsedMinutes(eng.Now())),
	}
}
