// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{InMemory: false})
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	assert.NoError(t, err)
}

func TestOpen_Persistent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()

	db, err := Open(cfg)
	require.NoError(t, err)

	err = db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("persist"), []byte("yes"))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopen and verify the value survived.
	db2, err := Open(cfg)
	require.NoError(t, err)
	defer db2.Close()

	err = db2.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte("persist"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("yes"), val)
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.InMemory())
	assert.Empty(t, db.Path())
}

func TestNewGCRunner_Validation(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	_, err = NewGCRunner(nil, time.Minute, 0.5, nil)
	assert.Error(t, err)

	_, err = NewGCRunner(db, 0, 0.5, nil)
	assert.Error(t, err)

	_, err = NewGCRunner(db, time.Minute, 1.5, nil)
	assert.Error(t, err)

	runner, err := NewGCRunner(db, time.Minute, 0.5, nil)
	require.NoError(t, err)
	runner.Start()
	runner.Stop()
}

func TestDB_WithTxn(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	err = db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("a"), []byte("1"))
	})
	require.NoError(t, err)

	err = db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte("a"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("1"), val)
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestDB_WithTxn_ErrorDiscards(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	err = db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		if err := txn.Set([]byte("b"), []byte("2")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	// The write must not have committed.
	err = db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte("b"))
		return err
	})
	assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
}

func TestDB_WithTxn_CancelledContext(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		t.Fatal("fn should not run with cancelled context")
		return nil
	})
	assert.Error(t, err)
}

func TestDB_SerializableConflict(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	// Two transactions read the same key, then both write it. The second
	// commit must fail with ErrConflict under SSI.
	txn1 := db.NewTransaction(true)
	defer txn1.Discard()
	txn2 := db.NewTransaction(true)
	defer txn2.Discard()

	_, err = txn1.Get([]byte("contested"))
	assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
	_, err = txn2.Get([]byte("contested"))
	assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)

	require.NoError(t, txn1.Set([]byte("contested"), []byte("first")))
	require.NoError(t, txn2.Set([]byte("contested"), []byte("second")))

	require.NoError(t, txn1.Commit())
	assert.ErrorIs(t, txn2.Commit(), badgerdb.ErrConflict)
}
