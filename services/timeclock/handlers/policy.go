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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/FloorOps/services/timeclock/policy"
)

// GetLimitStatus handles GET /v1/policy/limit.
func GetLimitStatus(limiter *policy.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := resolveActor(c, c.Query("user_id"))
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, limiter.Check(userID))
	}
}

// AcknowledgeLimit handles POST /v1/policy/limit/ack.
//
// The daily limit is advisory: workers past the limit acknowledge the
// warning and keep working. The acknowledgement is recorded so stations
// stop re-prompting for the rest of the day.
func AcknowledgeLimit(limiter *policy.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := resolveActor(c, "")
		if err != nil {
			respondTimerError(c, err)
			return
		}

		c.JSON(http.StatusOK, limiter.Acknowledge(userID))
	}
}
