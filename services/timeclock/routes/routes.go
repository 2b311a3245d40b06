// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/FloorOps/pkg/extensions"
	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
	"github.com/AleutianAI/FloorOps/services/timeclock/handlers"
	"github.com/AleutianAI/FloorOps/services/timeclock/middleware"
	"github.com/AleutianAI/FloorOps/services/timeclock/policy"
	"github.com/AleutianAI/FloorOps/services/timeclock/recovery"
	storage "github.com/AleutianAI/FloorOps/services/timeclock/storage/badger"
	"github.com/AleutianAI/FloorOps/services/timeclock/telemetry"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	DB       *storage.DB
	Engine   *engine.Engine
	Recovery *recovery.Service
	Limiter  *policy.Limiter
	Auth     extensions.AuthProvider
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck(deps.DB))

	// Prometheus scrape endpoint; nil when the exporter is disabled.
	if metricsHandler := telemetry.MetricsHandler(); metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Auth))
	{
		timers := v1.Group("/timers")
		{
			timers.POST("/start", handlers.StartTimer(deps.Engine))
			timers.POST("/pause", handlers.PauseTimer(deps.Engine))
			timers.POST("/resume", handlers.ResumeTimer(deps.Engine))
			timers.POST("/stop", handlers.StopTimer(deps.Engine, deps.Limiter))
			timers.POST("/items", handlers.IncrementItems(deps.Engine))
			timers.GET("/active", handlers.GetActiveTimers(deps.Engine))
		}

		rec := v1.Group("/recovery")
		{
			rec.POST("/save", handlers.SaveTimers(deps.Recovery))
			rec.GET("/check", handlers.CheckRecovery(deps.Recovery))
			rec.POST("/restore", handlers.RestoreTimer(deps.Recovery))
			rec.POST("/discard", handlers.DiscardRecovery(deps.Recovery))
		}

		pol := v1.Group("/policy")
		{
			pol.GET("/limit", handlers.GetLimitStatus(deps.Limiter))
			pol.POST("/limit/ack", handlers.AcknowledgeLimit(deps.Limiter))
		}
	}
}
