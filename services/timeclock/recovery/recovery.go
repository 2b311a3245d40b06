// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recovery implements save/restore of in-progress timer state
// across session interruption (logout, forced redeploy).
//
// SaveAll snapshots every open timer a worker holds and closes the
// originals, so the single-active-timer invariant holds uniformly across a
// save. Restore is a start-with-seed through the engine's own
// precondition, never a bypass of the invariant.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
	"github.com/AleutianAI/FloorOps/services/timeclock/policy"
	"github.com/AleutianAI/FloorOps/services/timeclock/store"
)

// ErrSnapshotNotFound indicates the snapshot does not exist, belongs to a
// different user, or was already consumed by a restore. The three cases
// are deliberately indistinguishable to callers.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DiscardAll is the discard target that removes every un-restored
// snapshot the worker owns.
const DiscardAll = "all"

// =============================================================================
// Service
// =============================================================================

// Service coordinates the snapshot store and the timer engine.
//
// # Thread Safety
//
// Safe for concurrent use; consistency control lives in the stores'
// transactions and the engine's open-timer key.
type Service struct {
	engine  *engine.Engine
	logs    *store.TimeLogStore
	snaps   *store.SnapshotStore
	limiter *policy.Limiter
	clock   engine.Clock
	logger  *slog.Logger
}

// New creates a recovery Service. The limiter receives every session a
// save closes, the same feed stop gives it; nil disables the feed. A nil
// clock defaults to SystemClock; a nil logger defaults to slog.Default().
func New(eng *engine.Engine, logs *store.TimeLogStore, snaps *store.SnapshotStore, limiter *policy.Limiter, clock engine.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = engine.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: eng, logs: logs, snaps: snaps, limiter: limiter, clock: clock, logger: logger}
}

// CheckResult is shaped for the "resume your previous session?" prompt:
// one un-restored snapshot per workflow domain, nil where none exists.
type CheckResult struct {
	Production  *datatypes.SavedTimerState `json:"production"`
	Fulfillment *datatypes.SavedTimerState `json:"fulfillment"`
}

// =============================================================================
// Operations
// =============================================================================

// SaveAll snapshots every open timer the worker holds (0-2, one per
// workflow domain) and closes the originals.
//
// # Description
//
// For each domain with an open TimeLog: the original is closed in one
// store transaction with the effective elapsed time computed by the exact
// Stop formula, then a snapshot carrying the same elapsed value is
// written, superseding any prior un-restored snapshot for the key. A save
// is therefore numerically indistinguishable from a stop at that moment,
// and every closed session is fed to the daily-limit ledger exactly as a
// stop would be.
//
// # Outputs
//
//   - int: Number of snapshots taken.
//   - error: Non-nil on storage failure; partial progress is reported in
//     the count.
func (s *Service) SaveAll(ctx context.Context, userID string) (int, error) {
	saved := 0
	for _, workflow := range datatypes.AllWorkflowTypes() {
		var savedAt time.Time
		closed, err := s.logs.CloseOpenWith(ctx, userID, workflow, func(cur *datatypes.TimeLog) error {
			savedAt = s.clock.Now()
			cur.DurationMinutes = datatypes.RoundMinutes(cur.ElapsedMinutes(savedAt))
			cur.CompletedAt = &savedAt
			return nil
		})
		if err != nil {
			if errors.Is(err, store.ErrNotOpen) {
				continue
			}
			return saved, fmt.Errorf("close %s timer for save: %w", workflow, err)
		}

		if s.limiter != nil {
			s.limiter.RecordStop(userID, closed.DurationMinutes)
		}

		snap := &datatypes.SavedTimerState{
			SaveID:         uuid.NewString(),
			OriginalLogID:  closed.LogID,
			UserID:         closed.UserID,
			UserName:       closed.UserName,
			WorkflowType:   closed.WorkflowType,
			StageID:        closed.StageID,
			StageName:      closed.StageName,
			BatchID:        closed.BatchID,
			ElapsedMinutes: closed.DurationMinutes,
			ItemsProcessed: closed.ItemsProcessed,
			IsPaused:       closed.IsPaused,
			SavedAt:        savedAt,
		}

		superseded, err := s.snaps.Put(ctx, snap)
		if err != nil {
			// The session is already closed and its minutes are final; losing
			// the snapshot only loses the restore offer.
			return saved, fmt.Errorf("write %s snapshot: %w", workflow, err)
		}

		saved++
		s.logger.Info("timer state saved",
			"save_id", snap.SaveID,
			"log_id", closed.LogID,
			"user_id", userID,
			"workflow", workflow,
			"elapsed_minutes", closed.DurationMinutes,
			"superseded", superseded,
		)
	}
	return saved, nil
}

// Check returns the worker's un-restored snapshots, one per workflow
// domain. Pure read, no side effects.
func (s *Service) Check(ctx context.Context, userID string) (*CheckResult, error) {
	production, err := s.snaps.GetUnrestored(ctx, userID, datatypes.WorkflowProduction)
	if err != nil {
		return nil, fmt.Errorf("check production snapshot: %w", err)
	}
	fulfillment, err := s.snaps.GetUnrestored(ctx, userID, datatypes.WorkflowFulfillment)
	if err != nil {
		return nil, fmt.Errorf("check fulfillment snapshot: %w", err)
	}
	return &CheckResult{Production: production, Fulfillment: fulfillment}, nil
}

// Restore recreates a timer session from a snapshot.
//
// # Description
//
// The new session starts with the snapshot's elapsed minutes already
// banked, the snapshot's item count, a fresh running interval anchored at
// now, and RestoredFrom set for traceability. The engine's start
// precondition applies unchanged, so a restore colliding with an open
// timer fails AlreadyActive. The snapshot then flips Restored exactly
// once; a second restore of the same save_id fails ErrSnapshotNotFound.
func (s *Service) Restore(ctx context.Context, userID, saveID string) (*datatypes.TimeLog, error) {
	snap, err := s.snaps.Get(ctx, saveID)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%s: %w", saveID, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap.UserID != userID || snap.Restored {
		return nil, fmt.Errorf("%s: %w", saveID, ErrSnapshotNotFound)
	}

	log, err := s.engine.StartWithSeed(ctx, engine.StartRequest{
		UserID:       userID,
		UserName:     snap.UserName,
		StageID:      snap.StageID,
		StageName:    snap.StageName,
		BatchID:      snap.BatchID,
		WorkflowType: snap.WorkflowType,
	}, engine.Seed{
		AccumulatedMinutes: snap.ElapsedMinutes,
		ItemsProcessed:     snap.ItemsProcessed,
		RestoredFrom:       snap.SaveID,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	snap.Restored = true
	snap.RestoredAt = &now
	if err := s.snaps.MarkRestored(ctx, snap); err != nil {
		// The timer is already open; a failure here leaves the snapshot
		// visible for one more check. Surface it so the caller retries the
		// prompt rather than silently double-offering the session.
		s.logger.Error("restored timer but failed to mark snapshot",
			"save_id", saveID, "log_id", log.LogID, "error", err)
		return nil, fmt.Errorf("mark snapshot restored: %w", err)
	}

	s.logger.Info("timer restored",
		"save_id", saveID,
		"log_id", log.LogID,
		"user_id", userID,
		"workflow", snap.WorkflowType,
		"elapsed_minutes", snap.ElapsedMinutes,
	)
	return log, nil
}

// Discard deletes the worker's un-restored snapshot with the given save
// ID, or every un-restored snapshot when target is DiscardAll.
//
// Idempotent: unknown, already-restored, or foreign-owned IDs are a no-op
// returning 0, never an error.
func (s *Service) Discard(ctx context.Context, userID, target string) (int, error) {
	var (
		deleted int
		err     error
	)
	if target == DiscardAll {
		deleted, err = s.snaps.DeleteAllUnrestored(ctx, userID)
	} else {
		deleted, err = s.snaps.Delete(ctx, userID, target)
	}
	if err != nil {
		return 0, fmt.Errorf("discard snapshots: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("snapshots discarded",
			"user_id", userID, "target", target, "deleted", deleted)
	}
	return deleted, nil
}
