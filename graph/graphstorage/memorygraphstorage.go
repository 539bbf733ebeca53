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
	"sort"
	"sync"

	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
Return values for Close and FlushMain calls
*/
var MgsRetClose, MgsRetFlushMain, MgsRetRollbackMain error

/*
MemoryGraphStorage data structure
*/
type MemoryGraphStorage struct {
	name            string                                   // Name of the graph storage
	mainDB          map[string]string                        // Database storing names
	mainDBFlushed   map[string]string                        // State of the main database at the last flush
	storagemanagers map[string]*storage.MemoryStorageManager // Map of StorageManagers
	mutex           *sync.Mutex                              // Mutex to protect the storage manager map
}

/*
NewMemoryGraphStorage creates a new MemoryGraphStorage instance.
*/
func NewMemoryGraphStorage(name string) *MemoryGraphStorage {
	return &MemoryGraphStorage{name, make(map[string]string), make(map[string]string),
		make(map[string]*storage.MemoryStorageManager), &sync.Mutex{}}
}

/*
Name returns the name of the MemoryGraphStorage instance.
*/
func (mgs *MemoryGraphStorage) Name() string {
	return mgs.name
}

/*
MainDB returns the main database.
*/
func (mgs *MemoryGraphStorage) MainDB() map[string]string {
	return mgs.mainDB
}

/*
RollbackMain restores the main database to the state of the last flush.
*/
func (mgs *MemoryGraphStorage) RollbackMain() error {
	if MgsRetRollbackMain != nil {
		return MgsRetRollbackMain
	}

	copyMainDB(mgs.mainDB, mgs.mainDBFlushed)

	return nil
}

/*
FlushMain writes the main database to the storage.
*/
func (mgs *MemoryGraphStorage) FlushMain() error {
	if MgsRetFlushMain != nil {
		return MgsRetFlushMain
	}

	copyMainDB(mgs.mainDBFlushed, mgs.mainDB)

	return nil
}

/*
FlushAll writes all pending changes to the storage.
*/
func (mgs *MemoryGraphStorage) FlushAll() error {
	if err := mgs.FlushMain(); err != nil {
		return err
	}

	mgs.mutex.Lock()
	defer mgs.mutex.Unlock()

	for _, sm := range mgs.storagemanagers {
		if err := sm.Flush(); err != nil {
			return err
		}
	}

	return nil
}

/*
FlushStorages writes the pending changes of the named storage managers and the
main database. Memory storage managers only fail on simulated errors which
fail every flush so nothing is written if the first flush fails.
*/
func (mgs *MemoryGraphStorage) FlushStorages(smnames []string) error {
	if MgsRetFlushMain != nil {
		return &util.GraphError{Type: util.ErrFlushing, Detail: MgsRetFlushMain.Error()}
	}

	mgs.mutex.Lock()
	sms := make([]*storage.MemoryStorageManager, 0, len(smnames))
	for _, smname := range smnames {
		if sm, ok := mgs.storagemanagers[smname]; ok {
			sms = append(sms, sm)
		}
	}
	mgs.mutex.Unlock()

	for _, sm := range sms {
		if err := sm.Flush(); err != nil {
			return &util.GraphError{Type: util.ErrFlushing, Detail: err.Error()}
		}
	}

	return mgs.FlushMain()
}

/*
StorageManager gets a storage manager with a certain name. A non-existing
StorageManager is not created automatically if the create flag is set to false.
*/
func (mgs *MemoryGraphStorage) StorageManager(smname string, create bool) storage.Manager {
	mgs.mutex.Lock()
	defer mgs.mutex.Unlock()

	sm, ok := mgs.storagemanagers[smname]

	if !ok && create {
		sm = storage.NewMemoryStorageManager(mgs.name + "/" + smname)
		mgs.storagemanagers[smname] = sm
	}

	if sm == nil {
		return nil
	}

	return sm
}

/*
MemoryStorageManager returns a memory storage manager for error simulation.
Returns nil if the storage manager does not exist.
*/
func (mgs *MemoryGraphStorage) MemoryStorageManager(smname string) *storage.MemoryStorageManager {
	mgs.mutex.Lock()
	defer mgs.mutex.Unlock()

	return mgs.storagemanagers[smname]
}

/*
StorageManagerNames returns the names of all existing storage managers.
*/
func (mgs *MemoryGraphStorage) StorageManagerNames() []string {
	mgs.mutex.Lock()
	defer mgs.mutex.Unlock()

	ret := make([]string, 0, len(mgs.storagemanagers))
	for name := range mgs.storagemanagers {
		ret = append(ret, name)
	}

	sort.Strings(ret)

	return ret
}

/*
Close closes the storage.
*/
func (mgs *MemoryGraphStorage) Close() error {
	return MgsRetClose
}
