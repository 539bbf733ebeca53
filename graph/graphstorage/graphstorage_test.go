/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graphstorage

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func TestMemoryGraphStorage(t *testing.T) {
	mgs := NewMemoryGraphStorage("mytest")

	if mgs.Name() != "mytest" {
		t.Error("Unexpected name:", mgs.Name())
		return
	}

	mgs.MainDB()["test1"] = "123"
	mgs.FlushMain()

	mgs.MainDB()["test2"] = "456"

	if err := mgs.RollbackMain(); err != nil {
		t.Error(err)
		return
	}

	if res := fmt.Sprint(mgs.MainDB()); res != "map[test1:123]" {
		t.Error("Unexpected main db:", res)
		return
	}

	if sm := mgs.StorageManager("test", false); sm != nil {
		t.Error("Storage manager should not exist yet")
		return
	}

	sm := mgs.StorageManager("test", true)

	if sm.Name() != "mytest/test" {
		t.Error("Unexpected name:", sm.Name())
		return
	}

	if mgs.MemoryStorageManager("test") == nil || mgs.MemoryStorageManager("foo") != nil {
		t.Error("Unexpected memory storage manager lookup")
		return
	}

	sm.Put([]byte("a"), []byte("b"))

	if err := mgs.FlushAll(); err != nil {
		t.Error(err)
		return
	}

	if mgs.MemoryStorageManager("test").Size() != 1 {
		t.Error("Storage manager should have been flushed")
		return
	}

	if res := fmt.Sprint(mgs.StorageManagerNames()); res != "[test]" {
		t.Error("Unexpected names:", res)
		return
	}

	MgsRetRollbackMain = errors.New("testerror")

	if err := mgs.RollbackMain(); err != MgsRetRollbackMain {
		t.Error("Unexpected result:", err)
		return
	}

	MgsRetRollbackMain = nil

	MgsRetFlushMain = errors.New("testerror")

	if err := mgs.FlushAll(); err != MgsRetFlushMain {
		t.Error("Unexpected result:", err)
		return
	}

	MgsRetFlushMain = nil

	if err := mgs.Close(); err != nil {
		t.Error(err)
		return
	}
}

func checkPersistentGraphStorage(t *testing.T, open func() (Storage, error)) {
	gs, err := open()
	if err != nil {
		t.Error(err)
		return
	}

	gs.MainDB()["test1"] = "123"

	sm := gs.StorageManager("nodes", true)
	sm.Put([]byte("k"), []byte("v"))

	if err := gs.FlushAll(); err != nil {
		t.Error(err)
		return
	}

	gs.MainDB()["test2"] = "456"

	if err := gs.RollbackMain(); err != nil {
		t.Error(err)
		return
	}

	if _, ok := gs.MainDB()["test2"]; ok {
		t.Error("Rollback should have removed the entry")
		return
	}

	if err := gs.Close(); err != nil {
		t.Error(err)
		return
	}

	// Reopen the storage

	gs, err = open()
	if err != nil {
		t.Error(err)
		return
	}
	defer gs.Close()

	if gs.MainDB()["test1"] != "123" {
		t.Error("Main db was not persisted:", gs.MainDB())
		return
	}

	if gs.StorageManager("other", false) != nil {
		t.Error("Storage manager should not exist")
		return
	}

	sm = gs.StorageManager("nodes", false)
	if sm == nil {
		t.Error("Storage manager should exist")
		return
	}

	if res, err := sm.Get([]byte("k")); err != nil || string(res) != "v" {
		t.Error("Unexpected result:", string(res), err)
		return
	}
}

func TestBadgerGraphStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	checkPersistentGraphStorage(t, func() (Storage, error) {
		return NewBadgerGraphStorage("test", dir, false)
	})
}

func TestSQLiteGraphStorage(t *testing.T) {
	file := filepath.Join(t.TempDir(), "graph.db")

	checkPersistentGraphStorage(t, func() (Storage, error) {
		return NewSQLiteGraphStorage("test", file)
	})
}
