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
	"github.com/dgraph-io/badger/v4"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
BadgerGraphStorage data structure
*/
type BadgerGraphStorage struct {
	*persistentGraphStorage
	db *badger.DB // Badger database
}

/*
NewBadgerGraphStorage creates a new graph storage in a given badger database
directory. An empty directory name creates an in-memory badger database.
*/
func NewBadgerGraphStorage(name string, dir string, syncWrites bool) (*BadgerGraphStorage, error) {
	db, err := storage.OpenBadgerDB(dir, syncWrites)
	if err != nil {
		return nil, &util.GraphError{Type: util.ErrOpening, Detail: err.Error()}
	}

	pgs, err := newPersistentGraphStorage(name, func(smname string) storage.Manager {
		return storage.NewBadgerStorageManager(smname, db)
	}, func(sms []storage.Manager) error {
		return storage.FlushBadgerManagers(db, sms)
	}, db.Close)

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BadgerGraphStorage{pgs, db}, nil
}

/*
RunGC runs the value log garbage collection of the badger database.
*/
func (bgs *BadgerGraphStorage) RunGC() error {
	return storage.RunBadgerGC(bgs.db)
}
