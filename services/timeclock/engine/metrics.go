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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	timerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_timer_operations_total",
		Help: "Timer engine operations by operation, workflow and status",
	}, []string{"operation", "workflow", "status"})

	closedSessionMinutes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timeclock_session_duration_minutes",
		Help:    "Final duration of closed timer sessions in minutes",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 240, 480},
	}, []string{"workflow"})
)

func countOp(operation string, workflow string, err error) {
	status := "ok"
	if err != nil {
		status = "rejected"
	}
	timerOperationsTotal.WithLabelValues(operation, workflow, status).Inc()
}
