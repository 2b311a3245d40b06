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

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"

	storage "github.com/AleutianAI/FloorOps/services/timeclock/storage/badger"
)

// HealthCheck handles GET /health.
//
// Performs a no-op read transaction against the store so a wedged or
// closed database reports unhealthy rather than just "process is up".
func HealthCheck(db *storage.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.WithReadTxn(c.Request.Context(), func(txn *badger.Txn) error {
			return nil
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "timeclock",
		})
	}
}
