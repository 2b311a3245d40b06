// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store implements durable storage for timer sessions and saved
// timer state on top of BadgerDB.
//
// Every mutating method is a single serializable transaction. The
// open-timer uniqueness key (see keys.go) makes invariant enforcement a
// property of storage, not of application-level check-then-insert: two
// concurrent starts for the same (user, workflow) race on the same key,
// one commits, and the other either aborts with badger.ErrConflict (and is
// retried once, at which point it observes the winner) or sees the key
// directly and fails with OpenTimerExistsError.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
	storage "github.com/AleutianAI/FloorOps/services/timeclock/storage/badger"
)

// =============================================================================
// Transaction Helpers
// =============================================================================

// withConflictRetry runs fn in a read-write transaction, retrying exactly
// once if the commit lost a serialization race. The retry re-reads current
// state, so a start that lost to a concurrent start deterministically
// surfaces OpenTimerExistsError instead of a transient conflict.
func withConflictRetry(ctx context.Context, db *storage.DB, fn func(txn *badger.Txn) error) error {
	err := db.WithTxn(ctx, fn)
	if errors.Is(err, badger.ErrConflict) {
		return db.WithTxn(ctx, fn)
	}
	return err
}

// withConflictLoop runs fn in a read-write transaction, retrying while the
// commit keeps losing serialization races. Every conflict means another
// writer committed, so the loop is livelock-free; ctx cancellation is
// checked by WithTxn on each attempt.
func withConflictLoop(ctx context.Context, db *storage.DB, fn func(txn *badger.Txn) error) error {
	for {
		err := db.WithTxn(ctx, fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

// getValue copies the value at key, reporting whether the key existed.
func getValue(txn *badger.Txn, key []byte) ([]byte, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// getJSON unmarshals the value at key into out, reporting presence.
func getJSON(txn *badger.Txn, key []byte, out any) (bool, error) {
	val, ok, err := getValue(txn, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(val, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// setJSON marshals v and writes it at key.
func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// =============================================================================
// TimeLogStore
// =============================================================================

// TimeLogStore persists TimeLog records and enforces the open-timer
// uniqueness constraint.
//
// # Thread Safety
//
// Safe for concurrent use; all consistency control is transactional.
type TimeLogStore struct {
	db *storage.DB
}

// NewTimeLogStore creates a TimeLogStore over the given database.
func NewTimeLogStore(db *storage.DB) *TimeLogStore {
	return &TimeLogStore{db: db}
}

// CreateOpen inserts a new open TimeLog.
//
// # Description
//
// Atomically checks the open-timer key for (user, workflow) and, if
// absent, writes the record and the key in one transaction. A rejected
// insert leaves storage untouched.
//
// # Outputs
//
//   - error: *OpenTimerExistsError (carrying the conflicting session's
//     stage) if an open timer already holds the key; storage errors
//     otherwise.
func (s *TimeLogStore) CreateOpen(ctx context.Context, log *datatypes.TimeLog) error {
	start := now()
	err := withConflictRetry(ctx, s.db, func(txn *badger.Txn) error {
		openKey := openTimerKey(log.WorkflowType, log.UserID)
		existingID, ok, err := getValue(txn, openKey)
		if err != nil {
			return err
		}
		if ok {
			var existing datatypes.TimeLog
			if _, err := getJSON(txn, timeLogKey(string(existingID)), &existing); err != nil {
				return err
			}
			return &OpenTimerExistsError{
				UserID:       log.UserID,
				WorkflowType: log.WorkflowType,
				LogID:        existing.LogID,
				StageID:      existing.StageID,
				StageName:    existing.StageName,
			}
		}
		if err := setJSON(txn, timeLogKey(log.LogID), log); err != nil {
			return err
		}
		return txn.Set(openKey, []byte(log.LogID))
	})
	var conflict *OpenTimerExistsError
	if errors.As(err, &conflict) {
		openTimerConflictsTotal.Inc()
	}
	observe("create_open", start, err)
	return err
}

// GetOpen returns the open TimeLog for (user, workflow), or nil if none.
func (s *TimeLogStore) GetOpen(ctx context.Context, userID string, workflow datatypes.WorkflowType) (log *datatypes.TimeLog, err error) {
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		logID, ok, err := getValue(txn, openTimerKey(workflow, userID))
		if err != nil || !ok {
			return err
		}
		var rec datatypes.TimeLog
		found, err := getJSON(txn, timeLogKey(string(logID)), &rec)
		if err != nil {
			return err
		}
		if !found {
			// Pointer without a record means a torn write somewhere; surface
			// it rather than pretending no timer is open.
			return fmt.Errorf("open timer %s: %w", logID, ErrLogNotFound)
		}
		log = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// Get returns the TimeLog with the given ID, open or closed.
func (s *TimeLogStore) Get(ctx context.Context, logID string) (*datatypes.TimeLog, error) {
	var rec datatypes.TimeLog
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		found, err := getJSON(txn, timeLogKey(logID), &rec)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: %w", logID, ErrLogNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MutateOpen loads the open TimeLog for (workflow, userID), applies mutate
// to the freshly read record, and writes it back, all in one transaction.
// Reading inside the write transaction keeps concurrent mutations
// serializable: two writers hitting the same record conflict at commit and
// the loser re-runs mutate against the winner's state.
//
// Fails with ErrNotOpen when no open timer exists for the key. Errors
// returned by mutate abort the transaction unchanged.
func (s *TimeLogStore) MutateOpen(ctx context.Context, userID string, workflow datatypes.WorkflowType, mutate func(*datatypes.TimeLog) error) (*datatypes.TimeLog, error) {
	start := now()
	var rec datatypes.TimeLog
	err := withConflictLoop(ctx, s.db, func(txn *badger.Txn) error {
		if err := s.loadOpen(txn, userID, workflow, &rec); err != nil {
			return err
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		return setJSON(txn, timeLogKey(rec.LogID), &rec)
	})
	observe("mutate_open", start, err)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CloseOpenWith loads the open TimeLog, applies finalize (which sets
// CompletedAt, DurationMinutes, final items), writes the closed record, and
// releases the open-timer key in one transaction.
//
// Fails with ErrNotOpen when no open timer exists for the key.
func (s *TimeLogStore) CloseOpenWith(ctx context.Context, userID string, workflow datatypes.WorkflowType, finalize func(*datatypes.TimeLog) error) (*datatypes.TimeLog, error) {
	start := now()
	var rec datatypes.TimeLog
	err := withConflictLoop(ctx, s.db, func(txn *badger.Txn) error {
		if err := s.loadOpen(txn, userID, workflow, &rec); err != nil {
			return err
		}
		if err := finalize(&rec); err != nil {
			return err
		}
		if err := setJSON(txn, timeLogKey(rec.LogID), &rec); err != nil {
			return err
		}
		return txn.Delete(openTimerKey(workflow, userID))
	})
	observe("close_open", start, err)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// loadOpen resolves the open-timer key and reads the record it points at
// into rec inside txn. Registers both reads with the transaction so a
// concurrent writer of either key forces a commit conflict.
func (s *TimeLogStore) loadOpen(txn *badger.Txn, userID string, workflow datatypes.WorkflowType, rec *datatypes.TimeLog) error {
	// Reset so a conflict retry never carries state from the prior attempt.
	*rec = datatypes.TimeLog{}
	logID, ok, err := getValue(txn, openTimerKey(workflow, userID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", workflow, userID, ErrNotOpen)
	}
	found, err := getJSON(txn, timeLogKey(string(logID)), rec)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s points at missing record %s: %w", openTimerKey(workflow, userID), logID, ErrNotOpen)
	}
	return nil
}
