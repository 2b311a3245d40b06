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
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
	storage "github.com/AleutianAI/FloorOps/services/timeclock/storage/badger"
)

// SnapshotStore persists SavedTimerState records.
//
// At most one un-restored snapshot exists per (user, workflow): Put
// supersedes the prior one inside its own transaction. Restored snapshots
// keep their record (with Restored=true) but lose the ss:open key, so they
// never surface in Check again.
//
// # Thread Safety
//
// Safe for concurrent use; all consistency control is transactional.
type SnapshotStore struct {
	db *storage.DB
}

// NewSnapshotStore creates a SnapshotStore over the given database.
func NewSnapshotStore(db *storage.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Put inserts snap, deleting any prior un-restored snapshot for the same
// (user, workflow). Returns the number of snapshots superseded (0 or 1).
func (s *SnapshotStore) Put(ctx context.Context, snap *datatypes.SavedTimerState) (superseded int, err error) {
	start := now()
	err = withConflictRetry(ctx, s.db, func(txn *badger.Txn) error {
		superseded = 0
		openKey := openSnapshotKey(snap.WorkflowType, snap.UserID)
		priorID, ok, err := getValue(txn, openKey)
		if err != nil {
			return err
		}
		if ok {
			if err := txn.Delete(snapshotKey(string(priorID))); err != nil {
				return err
			}
			superseded = 1
		}
		if err := setJSON(txn, snapshotKey(snap.SaveID), snap); err != nil {
			return err
		}
		return txn.Set(openKey, []byte(snap.SaveID))
	})
	observe("snapshot_put", start, err)
	if err != nil {
		return 0, err
	}
	return superseded, nil
}

// GetUnrestored returns the un-restored snapshot for (user, workflow), or
// nil if none exists.
func (s *SnapshotStore) GetUnrestored(ctx context.Context, userID string, workflow datatypes.WorkflowType) (snap *datatypes.SavedTimerState, err error) {
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		saveID, ok, err := getValue(txn, openSnapshotKey(workflow, userID))
		if err != nil || !ok {
			return err
		}
		var rec datatypes.SavedTimerState
		found, err := getJSON(txn, snapshotKey(string(saveID)), &rec)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("snapshot %s: %w", saveID, ErrSnapshotNotFound)
		}
		snap = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the snapshot with the given save ID, restored or not.
func (s *SnapshotStore) Get(ctx context.Context, saveID string) (*datatypes.SavedTimerState, error) {
	var rec datatypes.SavedTimerState
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		found, err := getJSON(txn, snapshotKey(saveID), &rec)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: %w", saveID, ErrSnapshotNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkRestored writes snap (with Restored=true and RestoredAt set) and
// removes it from the un-restored index.
//
// Fails with ErrSnapshotNotFound if snap is no longer the current
// un-restored snapshot for its key, so a snapshot can be consumed at most
// once even under concurrent restores.
func (s *SnapshotStore) MarkRestored(ctx context.Context, snap *datatypes.SavedTimerState) error {
	start := now()
	err := withConflictRetry(ctx, s.db, func(txn *badger.Txn) error {
		openKey := openSnapshotKey(snap.WorkflowType, snap.UserID)
		currentID, ok, err := getValue(txn, openKey)
		if err != nil {
			return err
		}
		if !ok || string(currentID) != snap.SaveID {
			return fmt.Errorf("%s: %w", snap.SaveID, ErrSnapshotNotFound)
		}
		if err := setJSON(txn, snapshotKey(snap.SaveID), snap); err != nil {
			return err
		}
		return txn.Delete(openKey)
	})
	observe("snapshot_mark_restored", start, err)
	return err
}

// Delete removes the un-restored snapshot with the given save ID if it
// belongs to userID. Unknown, restored, or foreign-owned IDs are a no-op
// returning 0; bulk cleanup must not fail on partial state.
func (s *SnapshotStore) Delete(ctx context.Context, userID, saveID string) (deleted int, err error) {
	start := now()
	err = withConflictRetry(ctx, s.db, func(txn *badger.Txn) error {
		deleted = 0
		var rec datatypes.SavedTimerState
		found, err := getJSON(txn, snapshotKey(saveID), &rec)
		if err != nil {
			return err
		}
		if !found || rec.Restored || rec.UserID != userID {
			return nil
		}
		if err := txn.Delete(snapshotKey(saveID)); err != nil {
			return err
		}
		if err := txn.Delete(openSnapshotKey(rec.WorkflowType, rec.UserID)); err != nil {
			return err
		}
		deleted = 1
		return nil
	})
	observe("snapshot_delete", start, err)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// DeleteAllUnrestored removes every un-restored snapshot belonging to
// userID across both workflow domains, returning the count removed.
func (s *SnapshotStore) DeleteAllUnrestored(ctx context.Context, userID string) (deleted int, err error) {
	start := now()
	err = withConflictRetry(ctx, s.db, func(txn *badger.Txn) error {
		deleted = 0
		for _, workflow := range datatypes.AllWorkflowTypes() {
			openKey := openSnapshotKey(workflow, userID)
			saveID, ok, err := getValue(txn, openKey)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := txn.Delete(snapshotKey(string(saveID))); err != nil {
				return err
			}
			if err := txn.Delete(openKey); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	observe("snapshot_delete_all", start, err)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
