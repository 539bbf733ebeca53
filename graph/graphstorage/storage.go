/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package graphstorage contains classes which model storage objects for graph data.

There are three main storage objects:

MemoryGraphStorage - Graph storage which stores its data in memory only.
Rollbacks restore the main database to the state of the last flush.

BadgerGraphStorage - Graph storage which stores its data in a badger database
directory.

SQLiteGraphStorage - Graph storage which stores its data in a sqlite database file.

The storage managers of persistent graph storages are wrapped in a cache.
*/
package graphstorage

import (
	"bytes"
	"encoding/gob"

	"github.com/krotik/tracestore/storage"
)

/*
Storage interface models the storage backend for a graph manager.
*/
type Storage interface {

	/*
	   Name returns the name of the GraphStorage instance.
	*/
	Name() string

	/*
		MainDB returns the main database. The main database is a quick
		lookup map for meta data which is always kept in memory.
	*/
	MainDB() map[string]string

	/*
	   RollbackMain rollback the main database.
	*/
	RollbackMain() error

	/*
	   FlushMain writes the main database to the storage.
	*/
	FlushMain() error

	/*
	   FlushAll writes all pending changes to the storage.
	*/
	FlushAll() error

	/*
	   FlushStorages writes the pending changes of the named storage managers
	   together with the main database. Either all changes are written or none.
	*/
	FlushStorages(smnames []string) error

	/*
	   StorageManager gets a storage manager with a certain name. A non-existing
	   StorageManager is not created automatically if the create flag is set to false.
	*/
	StorageManager(smname string, create bool) storage.Manager

	/*
		Close closes the storage.
	*/
	Close() error
}

/*
mainDBKey is the key under which persistent storages keep the main database
*/
var mainDBKey = []byte("maindb")

/*
mainDBStorageName is the name of the storage manager which holds the main database
*/
const mainDBStorageName = "__main__"

/*
CacheSize is the number of values which are cached for each storage manager
of a persistent graph storage.
*/
var CacheSize = 10000

/*
writeMainDB writes a main database into a storage manager.
*/
func writeMainDB(sm storage.Manager, mainDB map[string]string) error {
	if err := putMainDB(sm, mainDB); err != nil {
		return err
	}

	return sm.Flush()
}

/*
putMainDB adds a main database to the pending changes of a storage manager.
*/
func putMainDB(sm storage.Manager, mainDB map[string]string) error {
	var bb bytes.Buffer

	if err := gob.NewEncoder(&bb).Encode(mainDB); err != nil {
		return err
	}

	return sm.Put(mainDBKey, bb.Bytes())
}

/*
readMainDB reads a main database from a storage manager. Returns an empty
map if nothing was stored yet.
*/
func readMainDB(sm storage.Manager) (map[string]string, error) {
	mainDB := make(map[string]string)

	val, err := sm.Get(mainDBKey)
	if err != nil || val == nil {
		return mainDB, err
	}

	err = gob.NewDecoder(bytes.NewReader(val)).Decode(&mainDB)

	return mainDB, err
}

/*
copyMainDB copies the content of one main database map into another.
*/
func copyMainDB(dst map[string]string, src map[string]string) {
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range src {
		dst[k] = v
	}
}
