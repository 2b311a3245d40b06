// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements the work-timer state machine: start, pause,
// resume, stop, item increments, and the getActive read.
//
// The engine owns all elapsed-time arithmetic. Pause/resume is a two-state
// toggle layered on an accumulator, not an interval log, so the duration
// formula is O(1) regardless of how many pause cycles a session went
// through. The single-active-timer invariant is enforced by the store's
// open-timer key, never by an in-process lock; the service may run as
// multiple stateless instances.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/FloorOps/pkg/validation"
	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
	"github.com/AleutianAI/FloorOps/services/timeclock/store"
)

var tracer = otel.Tracer("github.com/AleutianAI/FloorOps/services/timeclock/engine")

// loggerWithTrace returns a logger with trace context attached so engine
// log lines correlate with request spans.
func loggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

// =============================================================================
// Engine
// =============================================================================

// Engine is the timer state machine over a TimeLogStore.
//
// # Thread Safety
//
// Safe for concurrent use. Mutating operations load and rewrite the open
// timer inside a single store transaction, so concurrent writers
// serialize: a request that lost a commit race re-runs against the
// winner's state or surfaces a taxonomy error, never a lost update.
type Engine struct {
	logs   *store.TimeLogStore
	clock  Clock
	logger *slog.Logger
}

// New creates an Engine. A nil clock defaults to SystemClock; a nil logger
// defaults to slog.Default().
func New(logs *store.TimeLogStore, clock Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logs: logs, clock: clock, logger: logger}
}

// StartRequest carries the context for a new timer session. User and stage
// identifiers are opaque to the engine; display names are denormalized
// caches supplied by the caller.
type StartRequest struct {
	UserID       string
	UserName     string
	StageID      string
	StageName    string
	BatchID      string
	WorkflowType datatypes.WorkflowType
}

func (r *StartRequest) validate() error {
	if err := validation.ValidateID("user_id", r.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validation.ValidateID("stage_id", r.StageID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.BatchID != "" {
		if err := validation.ValidateID("batch_id", r.BatchID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if !r.WorkflowType.Valid() {
		return fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, r.WorkflowType)
	}
	return nil
}

// Seed pre-loads a new session with state carried over from a snapshot.
type Seed struct {
	AccumulatedMinutes float64
	ItemsProcessed     int
	RestoredFrom       string
}

// StopResult is what the stage pipeline consumes on stage exit; the
// duration feeds external labor-cost aggregation.
type StopResult struct {
	LogID           string  `json:"log_id"`
	DurationMinutes float64 `json:"duration_minutes"`
	ItemsProcessed  int     `json:"items_processed"`
}

// =============================================================================
// Operations
// =============================================================================

// Start opens a new timer session.
//
// # Description
//
// Inserts a fresh TimeLog with a zero accumulator and the clock's now as
// the running-interval anchor. The no-open-timer precondition is checked
// and enforced atomically by the store's uniqueness key; a collision fails
// with *AlreadyActiveError carrying the conflicting stage.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*datatypes.TimeLog, error) {
	return e.start(ctx, req, Seed{})
}

// StartWithSeed opens a new timer session pre-loaded with snapshot state.
// Used by the recovery service; restore is a start, never a bypass of the
// open-timer invariant.
func (e *Engine) StartWithSeed(ctx context.Context, req StartRequest, seed Seed) (*datatypes.TimeLog, error) {
	return e.start(ctx, req, seed)
}

func (e *Engine) start(ctx context.Context, req StartRequest, seed Seed) (*datatypes.TimeLog, error) {
	ctx, span := tracer.Start(ctx, "engine.start")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	log := &datatypes.TimeLog{
		LogID:              uuid.NewString(),
		UserID:             req.UserID,
		UserName:           req.UserName,
		StageID:            req.StageID,
		StageName:          req.StageName,
		BatchID:            req.BatchID,
		WorkflowType:       req.WorkflowType,
		StartedAt:          now,
		AccumulatedMinutes: seed.AccumulatedMinutes,
		ItemsProcessed:     seed.ItemsProcessed,
		RestoredFrom:       seed.RestoredFrom,
		CreatedAt:          now,
	}

	err := e.logs.CreateOpen(ctx, log)
	countOp("start", string(req.WorkflowType), err)
	if err != nil {
		var conflict *store.OpenTimerExistsError
		if errors.As(err, &conflict) {
			loggerWithTrace(ctx, e.logger).Info("start rejected, timer already active",
				"user_id", req.UserID,
				"workflow", req.WorkflowType,
				"conflicting_stage", conflict.StageName,
			)
			return nil, &AlreadyActiveError{
				WorkflowType: conflict.WorkflowType,
				LogID:        conflict.LogID,
				StageID:      conflict.StageID,
				StageName:    conflict.StageName,
			}
		}
		return nil, fmt.Errorf("start timer: %w", err)
	}

	loggerWithTrace(ctx, e.logger).Info("timer started",
		"log_id", log.LogID,
		"user_id", log.UserID,
		"stage_id", log.StageID,
		"workflow", log.WorkflowType,
		"restored_from", log.RestoredFrom,
	)
	return log, nil
}

// Pause banks the current running interval into the accumulator and marks
// the session paused. StartedAt is left as historical metadata and is not
// reused until resume.
//
// Preconditions: an open, non-paused TimeLog exists for this exact stage.
// Violations fail ErrNoActiveTimer / ErrAlreadyPaused.
func (e *Engine) Pause(ctx context.Context, userID, stageID string, workflow datatypes.WorkflowType) (*datatypes.TimeLog, error) {
	ctx, span := tracer.Start(ctx, "engine.pause")
	defer span.End()

	if !workflow.Valid() {
		err := fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, workflow)
		countOp("pause", string(workflow), err)
		return nil, err
	}

	cur, err := e.mutateOpen(ctx, userID, workflow, func(cur *datatypes.TimeLog) error {
		if err := stageMatches(cur, stageID, workflow); err != nil {
			return err
		}
		if cur.IsPaused {
			return fmt.Errorf("stage %q: %w", cur.StageName, ErrAlreadyPaused)
		}
		cur.AccumulatedMinutes += datatypes.MinutesBetween(cur.StartedAt, e.clock.Now())
		cur.IsPaused = true
		return nil
	})
	if err != nil {
		countOp("pause", string(workflow), err)
		return nil, err
	}
	countOp("pause", string(workflow), nil)

	loggerWithTrace(ctx, e.logger).Info("timer paused",
		"log_id", cur.LogID,
		"user_id", userID,
		"workflow", workflow,
		"accumulated_minutes", cur.AccumulatedMinutes,
	)
	return cur, nil
}

// Resume re-anchors the running interval at now and clears the pause
// flag. The accumulator is never touched on resume.
//
// Preconditions: an open, paused TimeLog exists for this exact stage.
// Violations fail ErrNoActiveTimer / ErrNotPaused.
func (e *Engine) Resume(ctx context.Context, userID, stageID string, workflow datatypes.WorkflowType) (*datatypes.TimeLog, error) {
	ctx, span := tracer.Start(ctx, "engine.resume")
	defer span.End()

	if !workflow.Valid() {
		err := fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, workflow)
		countOp("resume", string(workflow), err)
		return nil, err
	}

	cur, err := e.mutateOpen(ctx, userID, workflow, func(cur *datatypes.TimeLog) error {
		if err := stageMatches(cur, stageID, workflow); err != nil {
			return err
		}
		if !cur.IsPaused {
			return fmt.Errorf("stage %q: %w", cur.StageName, ErrNotPaused)
		}
		cur.StartedAt = e.clock.Now()
		cur.IsPaused = false
		return nil
	})
	if err != nil {
		countOp("resume", string(workflow), err)
		return nil, err
	}
	countOp("resume", string(workflow), nil)

	loggerWithTrace(ctx, e.logger).Info("timer resumed",
		"log_id", cur.LogID,
		"user_id", userID,
		"workflow", workflow,
	)
	return cur, nil
}

// Stop closes the open session, paused or running.
//
// # Description
//
// Finalizes duration with the shared formula (banked minutes plus the
// running interval, zero while paused), rounded to 2 decimals. The
// reported item count is merged with max() so pipeline increments that
// raced with the final report are never lost.
func (e *Engine) Stop(ctx context.Context, userID string, workflow datatypes.WorkflowType, itemsProcessed int) (*StopResult, error) {
	ctx, span := tracer.Start(ctx, "engine.stop")
	defer span.End()

	if !workflow.Valid() {
		err := fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, workflow)
		countOp("stop", string(workflow), err)
		return nil, err
	}

	cur, err := e.closeOpen(ctx, userID, workflow, func(cur *datatypes.TimeLog) error {
		now := e.clock.Now()
		cur.DurationMinutes = datatypes.RoundMinutes(cur.ElapsedMinutes(now))
		cur.CompletedAt = &now
		if itemsProcessed > cur.ItemsProcessed {
			cur.ItemsProcessed = itemsProcessed
		}
		return nil
	})
	if err != nil {
		countOp("stop", string(workflow), err)
		return nil, err
	}
	countOp("stop", string(workflow), nil)
	closedSessionMinutes.WithLabelValues(string(workflow)).Observe(cur.DurationMinutes)

	loggerWithTrace(ctx, e.logger).Info("timer stopped",
		"log_id", cur.LogID,
		"user_id", userID,
		"workflow", workflow,
		"duration_minutes", cur.DurationMinutes,
		"items_processed", cur.ItemsProcessed,
	)
	return &StopResult{
		LogID:           cur.LogID,
		DurationMinutes: cur.DurationMinutes,
		ItemsProcessed:  cur.ItemsProcessed,
	}, nil
}

// IncrementItems adds delta to the open session's item count. Written by
// the stage pipeline as units move through the stage.
func (e *Engine) IncrementItems(ctx context.Context, userID string, workflow datatypes.WorkflowType, delta int) (*datatypes.TimeLog, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: item delta must be non-negative", ErrInvalidRequest)
	}

	if !workflow.Valid() {
		return nil, fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, workflow)
	}

	return e.mutateOpen(ctx, userID, workflow, func(cur *datatypes.TimeLog) error {
		cur.ItemsProcessed += delta
		return nil
	})
}

// GetActive returns the open TimeLog for (user, workflow), or nil if none.
// Read-only and side-effect free; callable at arbitrary frequency.
func (e *Engine) GetActive(ctx context.Context, userID string, workflow datatypes.WorkflowType) (*datatypes.TimeLog, error) {
	if !workflow.Valid() {
		return nil, fmt.Errorf("%w: unknown workflow type %q", ErrInvalidRequest, workflow)
	}
	return e.logs.GetOpen(ctx, userID, workflow)
}

// Now exposes the engine's clock reading so collaborators (recovery,
// policy) share the same time source.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// =============================================================================
// Internal
// =============================================================================

// stageMatches rejects mutations addressed to a stage other than the one
// the open timer is running. An empty stageID skips the check.
func stageMatches(cur *datatypes.TimeLog, stageID string, workflow datatypes.WorkflowType) error {
	if stageID != "" && cur.StageID != stageID {
		return fmt.Errorf("open %s timer is for stage %q, not %q: %w",
			workflow, cur.StageID, stageID, ErrNoActiveTimer)
	}
	return nil
}

// mutateOpen runs fn against the open timer inside the store's write
// transaction and maps the no-open-timer case to the taxonomy error the
// caller expects.
func (e *Engine) mutateOpen(ctx context.Context, userID string, workflow datatypes.WorkflowType, fn func(*datatypes.TimeLog) error) (*datatypes.TimeLog, error) {
	cur, err := e.logs.MutateOpen(ctx, userID, workflow, fn)
	if err != nil {
		if errors.Is(err, store.ErrNotOpen) {
			return nil, fmt.Errorf("no open %s timer for user %s: %w", workflow, userID, ErrNoActiveTimer)
		}
		return nil, err
	}
	return cur, nil
}

func (e *Engine) closeOpen(ctx context.Context, userID string, workflow datatypes.WorkflowType, finalize func(*datatypes.TimeLog) error) (*datatypes.TimeLog, error) {
	cur, err := e.logs.CloseOpenWith(ctx, userID, workflow, finalize)
	if err != nil {
		if errors.Is(err, store.ErrNotOpen) {
			return nil, fmt.Errorf("no open %s timer for user %s: %w", workflow, userID, ErrNoActiveTimer)
		}
		return nil, err
	}
	return cur, nil
}
