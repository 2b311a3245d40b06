// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy implements advisory daily work-hour limits.
//
// The limiter is a layer beside the timer core, not inside it: it reads
// stop/save results and answers "has this worker exceeded today's limit",
// but it never blocks an engine operation and it does not participate in
// the core's invariants. Workers who exceed the limit acknowledge the
// warning and keep working; the acknowledgement is recorded for the shift
// supervisor's report.
package policy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
)

// Status is the limit state reported to the UI prompt.
type Status struct {
	WorkedMinutes float64 `json:"worked_minutes"`
	LimitMinutes  float64 `json:"limit_minutes"`
	Exceeded      bool    `json:"exceeded"`
	Acknowledged  bool    `json:"acknowledged"`
}

// Limiter tracks per-worker minutes for the current calendar day.
//
// State is in-memory and advisory; a restart forgets the running totals,
// which is acceptable for a warning prompt and keeps the core free of any
// daily-aggregate storage.
//
// # Thread Safety
//
// Safe for concurrent use.
type Limiter struct {
	mu           sync.Mutex
	limitMinutes float64
	clock        engine.Clock
	logger       *slog.Logger
	ledgers      map[string]*dayLedger
}

type dayLedger struct {
	day          string
	worked       float64
	acknowledged bool
}

// NewLimiter creates a Limiter. limitMinutes <= 0 disables the limit
// (Check always reports not exceeded). A nil clock defaults to
// SystemClock; a nil logger defaults to slog.Default().
func NewLimiter(limitMinutes float64, clock engine.Clock, logger *slog.Logger) *Limiter {
	if clock == nil {
		clock = engine.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		limitMinutes: limitMinutes,
		clock:        clock,
		logger:       logger,
		ledgers:      make(map[string]*dayLedger),
	}
}

// RecordStop folds a closed session's duration into today's total. Called
// with results from stop and saveAll, never with in-progress elapsed time.
func (l *Limiter) RecordStop(userID string, durationMinutes float64) {
	if durationMinutes <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.todayLedger(userID)
	ledger.worked += durationMinutes

	if l.limitMinutes > 0 && ledger.worked > l.limitMinutes && !ledger.acknowledged {
		l.logger.Warn("daily work limit exceeded",
			"user_id", userID,
			"worked_minutes", ledger.worked,
			"limit_minutes", l.limitMinutes,
		)
	}
}

// Check returns the worker's limit status for today.
func (l *Limiter) Check(userID string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.todayLedger(userID)
	return Status{
		WorkedMinutes: ledger.worked,
		LimitMinutes:  l.limitMinutes,
		Exceeded:      l.limitMinutes > 0 && ledger.worked > l.limitMinutes,
		Acknowledged:  ledger.acknowledged,
	}
}

// Acknowledge records that the worker pressed through today's exceeded
// limit warning. Idempotent.
func (l *Limiter) Acknowledge(userID string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.todayLedger(userID)
	if !ledger.acknowledged {
		ledger.acknowledged = true
		l.logger.Info("daily limit warning acknowledged", "user_id", userID)
	}
	return Status{
		WorkedMinutes: ledger.worked,
		LimitMinutes:  l.limitMinutes,
		Exceeded:      l.limitMinutes > 0 && ledger.worked > l.limitMinutes,
		Acknowledged:  ledger.acknowledged,
	}
}

// todayLedger returns the worker's ledger for the current day, rolling
// over stale ones. Caller holds l.mu.
func (l *Limiter) todayLedger(userID string) *dayLedger {
	day := l.clock.Now().Format(time.DateOnly)
	ledger, ok := l.ledgers[userID]
	if !ok || ledger.day != day {
		ledger = &dayLedger{day: day}
		l.ledgers[userID] = ledger
	}
	return ledger
}
