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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_store_operations_total",
		Help: "Total store operations by operation and status",
	}, []string{"operation", "status"})

	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timeclock_store_operation_duration_seconds",
		Help:    "Store operation latency",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"operation"})

	openTimerConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timeclock_open_timer_conflicts_total",
		Help: "Starts rejected by the open-timer uniqueness constraint",
	})
)

// now is stubbed in tests.
var now = time.Now

// observe records one store operation's outcome and latency.
func observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, status).Inc()
	storeOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
