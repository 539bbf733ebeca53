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
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
SQLiteGraphStorage data structure
*/
type SQLiteGraphStorage struct {
	*persistentGraphStorage
}

/*
NewSQLiteGraphStorage creates a new graph storage in a given sqlite database file.
*/
func NewSQLiteGraphStorage(name string, file string) (*SQLiteGraphStorage, error) {
	db, err := storage.OpenSQLiteDB(file)
	if err != nil {
		return nil, &util.GraphError{Type: util.ErrOpening, Detail: err.Error()}
	}

	pgs, err := newPersistentGraphStorage(name, func(smname string) storage.Manager {
		return storage.NewSQLiteStorageManager(smname, db)
	}, func(sms []storage.Manager) error {
		return storage.FlushSQLiteManagers(db, sms)
	}, db.Close)

	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteGraphStorage{pgs}, nil
}
