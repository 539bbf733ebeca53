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
	"sync"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
persistentGraphStorage is the common part of graph storages which keep their
storage managers in a shared database.
*/
type persistentGraphStorage struct {
	name            string                              // Name of the graph storage
	mainDB          map[string]string                   // Main database
	mainSM          storage.Manager                     // Storage manager holding the main database
	storagemanagers map[string]storage.Manager          // Map of StorageManagers
	newSM           func(smname string) storage.Manager // Factory for new storage managers
	flushBatch      func(sms []storage.Manager) error   // Function to flush several managers at once
	closeDB         func() error                        // Function to close the shared database
	mutex           *sync.Mutex                         // Mutex to protect the storage manager map
}

/*
newPersistentGraphStorage creates a new graph storage and loads its main database.
The flushBatch function must write the pending changes of all given storage
managers in one database transaction.
*/
func newPersistentGraphStorage(name string, newSM func(smname string) storage.Manager,
	flushBatch func(sms []storage.Manager) error, closeDB func() error) (*persistentGraphStorage, error) {

	mainSM := newSM(mainDBStorageName)

	mainDB, err := readMainDB(mainSM)
	if err != nil {
		return nil, &util.GraphError{Type: util.ErrOpening, Detail: err.Error()}
	}

	return &persistentGraphStorage{name, mainDB, mainSM, make(map[string]storage.Manager),
		newSM, flushBatch, closeDB, &sync.Mutex{}}, nil
}

/*
Name returns the name of the graph storage.
*/
func (pgs *persistentGraphStorage) Name() string {
	return pgs.name
}

/*
MainDB returns the main database.
*/
func (pgs *persistentGraphStorage) MainDB() map[string]string {
	return pgs.mainDB
}

/*
RollbackMain reloads the main database from the storage.
*/
func (pgs *persistentGraphStorage) RollbackMain() error {
	if err := pgs.mainSM.Rollback(); err != nil {
		return &util.GraphError{Type: util.ErrRollback, Detail: err.Error()}
	}

	mainDB, err := readMainDB(pgs.mainSM)
	if err != nil {
		return &util.GraphError{Type: util.ErrRollback, Detail: err.Error()}
	}

	copyMainDB(pgs.mainDB, mainDB)

	return nil
}

/*
FlushMain writes the main database to the storage.
*/
func (pgs *persistentGraphStorage) FlushMain() error {
	if err := writeMainDB(pgs.mainSM, pgs.mainDB); err != nil {
		return &util.GraphError{Type: util.ErrFlushing, Detail: err.Error()}
	}

	return nil
}

/*
FlushStorages writes the pending changes of the named storage managers and
the main database in a single transaction of the shared database.
*/
func (pgs *persistentGraphStorage) FlushStorages(smnames []string) error {
	if err := putMainDB(pgs.mainSM, pgs.mainDB); err != nil {
		return &util.GraphError{Type: util.ErrFlushing, Detail: err.Error()}
	}

	sms := []storage.Manager{pgs.mainSM}

	pgs.mutex.Lock()
	for _, smname := range smnames {
		if sm, ok := pgs.storagemanagers[smname]; ok {
			sms = append(sms, sm)
		}
	}
	pgs.mutex.Unlock()

	if err := pgs.flushBatch(sms); err != nil {
		return &util.GraphError{Type: util.ErrFlushing, Detail: err.Error()}
	}

	return nil
}

/*
FlushAll writes all pending changes to the storage.
*/
func (pgs *persistentGraphStorage) FlushAll() error {
	pgs.mutex.Lock()
	smnames := make([]string, 0, len(pgs.storagemanagers))
	for smname := range pgs.storagemanagers {
		smnames = append(smnames, smname)
	}
	pgs.mutex.Unlock()

	return pgs.FlushStorages(smnames)
}

/*
StorageManager gets a storage manager with a certain name. Storage managers
are known to exist if the main database lists them.
*/
func (pgs *persistentGraphStorage) StorageManager(smname string, create bool) storage.Manager {
	pgs.mutex.Lock()
	defer pgs.mutex.Unlock()

	smkey := "\x01sm" + smname

	if _, ok := pgs.mainDB[smkey]; !ok {
		if !create {
			return nil
		}

		// Record the storage manager - the entry is persisted with the next
		// flush of the main database. A rollback of the main database
		// may remove the entry again.

		pgs.mainDB[smkey] = ""
	}

	sm, ok := pgs.storagemanagers[smname]
	if !ok {
		sm = storage.NewCachedStorageManager(pgs.newSM(smname), CacheSize)
		pgs.storagemanagers[smname] = sm
	}

	return sm
}

/*
Close closes the storage. Pending changes are discarded.
*/
func (pgs *persistentGraphStorage) Close() error {
	pgs.mutex.Lock()
	defer pgs.mutex.Unlock()

	ce := errorutil.NewCompositeError()

	for _, sm := range pgs.storagemanagers {
		if err := sm.Close(); err != nil {
			ce.Add(err)
		}
	}

	if err := pgs.closeDB(); err != nil {
		ce.Add(err)
	}

	pgs.storagemanagers = make(map[string]storage.Manager)

	if ce.HasErrors() {
		return &util.GraphError{Type: util.ErrClosing, Detail: ce.Error()}
	}

	return nil
}
