/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

/*
BadgerLogger receives log output of badger databases. Badger logging is
disabled if this is nil.
*/
var BadgerLogger func(v ...interface{})

/*
badgerLogAdapter adapts a log function to the logger interface of badger.
*/
type badgerLogAdapter struct {
	log func(v ...interface{})
}

func (l *badgerLogAdapter) Errorf(format string, args ...interface{}) {
	l.log("[badger] ERROR ", fmt.Sprintf(format, args...))
}

func (l *badgerLogAdapter) Warningf(format string, args ...interface{}) {
	l.log("[badger] WARNING ", fmt.Sprintf(format, args...))
}

func (l *badgerLogAdapter) Infof(format string, args ...interface{}) {
	l.log("[badger] ", fmt.Sprintf(format, args...))
}

func (l *badgerLogAdapter) Debugf(format string, args ...interface{}) {
}

/*
OpenBadgerDB opens a badger database in a given directory. An empty path
opens an in-memory database.
*/
func OpenBadgerDB(path string, syncWrites bool) (*badger.DB, error) {
	var opts badger.Options

	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(path)
	}

	opts = opts.WithSyncWrites(syncWrites).WithNumVersionsToKeep(1)

	if BadgerLogger != nil {
		opts = opts.WithLogger(&badgerLogAdapter{BadgerLogger})
	} else {
		opts = opts.WithLogger(nil)
	}

	return badger.Open(opts)
}

/*
RunBadgerGC runs the value log garbage collection of a badger database until
nothing is left to collect.
*/
func RunBadgerGC(db *badger.DB) error {
	for {
		err := db.RunValueLogGC(0.5)

		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

/*
BadgerStorageManager data structure
*/
type BadgerStorageManager struct {
	name    string      // Name of the storage manager
	prefix  []byte      // Key prefix of this storage manager in the database
	db      *badger.DB  // Shared badger database
	pending *changeSet  // Pending changes
	mutex   *sync.Mutex // Mutex to protect pending changes
}

/*
NewBadgerStorageManager creates a new storage manager which stores its
data in a given badger database. Keys are stored under the name of the
storage manager so several managers can share one database.
*/
func NewBadgerStorageManager(name string, db *badger.DB) *BadgerStorageManager {
	return &BadgerStorageManager{name, []byte(name + "\x00"), db, newChangeSet(), &sync.Mutex{}}
}

/*
Name returns the name of the StorageManager instance.
*/
func (bsm *BadgerStorageManager) Name() string {
	return bsm.name
}

func (bsm *BadgerStorageManager) dbKey(key []byte) []byte {
	k := make([]byte, 0, len(bsm.prefix)+len(key))
	return append(append(k, bsm.prefix...), key...)
}

/*
Get returns the value of a given key.
*/
func (bsm *BadgerStorageManager) Get(key []byte) ([]byte, error) {
	bsm.mutex.Lock()
	v, ok := bsm.pending.get(key)
	bsm.mutex.Unlock()

	if ok {
		return v, nil
	}

	var ret []byte

	err := bsm.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bsm.dbKey(key))

		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		ret, err = item.ValueCopy(nil)

		return err
	})

	if err != nil {
		return nil, NewStorageManagerError(ErrReading, err.Error(), bsm.name)
	}

	return ret, nil
}

/*
Put stores a value under a given key.
*/
func (bsm *BadgerStorageManager) Put(key []byte, value []byte) error {
	bsm.mutex.Lock()
	defer bsm.mutex.Unlock()

	bsm.pending.put(key, value)

	return nil
}

/*
Delete removes a given key.
*/
func (bsm *BadgerStorageManager) Delete(key []byte) error {
	bsm.mutex.Lock()
	defer bsm.mutex.Unlock()

	bsm.pending.delete(key)

	return nil
}

/*
Scan calls a given function for every key with a given prefix.
*/
func (bsm *BadgerStorageManager) Scan(prefix []byte, fn func(key []byte, value []byte) bool) error {
	bsm.mutex.Lock()
	pending := newChangeSet()
	for k, v := range bsm.pending.puts {
		pending.puts[k] = v
	}
	for k := range bsm.pending.dels {
		pending.dels[k] = struct{}{}
	}
	bsm.mutex.Unlock()

	err := scanMerged(prefix, func(add func(k, v []byte)) error {
		return bsm.db.View(func(txn *badger.Txn) error {
			full := bsm.dbKey(prefix)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = full

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(full); it.ValidForPrefix(full); it.Next() {
				item := it.Item()

				v, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}

				add(item.KeyCopy(nil)[len(bsm.prefix):], v)
			}

			return nil
		})
	}, pending, fn)

	if err != nil {
		return NewStorageManagerError(ErrReading, err.Error(), bsm.name)
	}

	return nil
}

/*
Flush writes all pending changes in a single badger transaction.
*/
func (bsm *BadgerStorageManager) Flush() error {
	return FlushBadgerManagers(bsm.db, []Manager{bsm})
}

/*
FlushBadgerManagers writes the pending changes of several storage managers
of one badger database in a single transaction. Either all changes are
written or none.
*/
func FlushBadgerManagers(db *badger.DB, sms []Manager) error {
	var bsms []*BadgerStorageManager

	for _, sm := range distinctManagers(sms) {
		bsm, ok := unwrapManager(sm).(*BadgerStorageManager)

		if !ok || bsm.db != db {
			return NewStorageManagerError(ErrFlush, "Not a manager of this database", sm.Name())
		}

		bsms = append(bsms, bsm)
	}

	for _, bsm := range bsms {
		bsm.mutex.Lock()
		defer bsm.mutex.Unlock()
	}

	err := db.Update(func(txn *badger.Txn) error {
		for _, bsm := range bsms {
			if err := bsm.writePending(txn); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return NewStorageManagerError(ErrFlush, err.Error(), managerNames(sms))
	}

	for _, bsm := range bsms {
		bsm.pending.reset()
	}

	return nil
}

/*
writePending adds all pending changes to a badger transaction. The caller
must hold the lock of the storage manager.
*/
func (bsm *BadgerStorageManager) writePending(txn *badger.Txn) error {
	for k, v := range bsm.pending.puts {
		if err := txn.Set(bsm.dbKey([]byte(k)), v); err != nil {
			return err
		}
	}

	for k := range bsm.pending.dels {
		if err := txn.Delete(bsm.dbKey([]byte(k))); err != nil {
			return err
		}
	}

	return nil
}

/*
Rollback discards all pending changes.
*/
func (bsm *BadgerStorageManager) Rollback() error {
	bsm.mutex.Lock()
	defer bsm.mutex.Unlock()

	bsm.pending.reset()

	return nil
}

/*
Close closes the StorageManager. The shared database is closed by its owner.
*/
func (bsm *BadgerStorageManager) Close() error {
	bsm.mutex.Lock()
	defer bsm.mutex.Unlock()

	if !bsm.pending.isEmpty() {
		log.Print("Discarding pending changes of ", bsm.name)
	}

	bsm.pending.reset()

	return nil
}
