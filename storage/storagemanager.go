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
Package storage contains the low-level key-value storage managers of TraceStore.

Manager

A Manager stores byte values under byte keys. All writes go into a pending
change set which is only made permanent by a call to Flush. A call to Rollback
discards the pending change set. Reads always see pending changes.

Implementations

MemoryStorageManager keeps all data in memory and provides error simulation
facilities for tests. BadgerStorageManager stores its data in a shared badger
database. SQLiteStorageManager stores its data in a table of a shared sqlite
database. Managers of one shared database can be flushed together in a single
database transaction (FlushBadgerManagers, FlushSQLiteManagers).
*/
package storage

import (
	"bytes"
	"sort"
)

/*
Manager is a storage manager which stores byte values under byte keys.
*/
type Manager interface {

	/*
		Name returns the name of the StorageManager instance.
	*/
	Name() string

	/*
		Get returns the value of a given key. Returns nil if the key does not exist.
	*/
	Get(key []byte) ([]byte, error)

	/*
		Put stores a value under a given key.
	*/
	Put(key []byte, value []byte) error

	/*
		Delete removes a given key.
	*/
	Delete(key []byte) error

	/*
		Scan calls a given function for every key with a given prefix in
		ascending key order. The iteration stops if the function returns false.
	*/
	Scan(prefix []byte, fn func(key []byte, value []byte) bool) error

	/*
		Flush writes all pending changes to the storage.
	*/
	Flush() error

	/*
		Rollback discards all pending changes.
	*/
	Rollback() error

	/*
		Close closes the StorageManager. Pending changes are discarded.
	*/
	Close() error
}

/*
changeSet holds pending changes of a storage manager.
*/
type changeSet struct {
	puts map[string][]byte
	dels map[string]struct{}
}

func newChangeSet() *changeSet {
	return &changeSet{make(map[string][]byte), make(map[string]struct{})}
}

func (cs *changeSet) put(key []byte, value []byte) {
	k := string(key)
	delete(cs.dels, k)
	cs.puts[k] = append([]byte(nil), value...)
}

func (cs *changeSet) delete(key []byte) {
	k := string(key)
	delete(cs.puts, k)
	cs.dels[k] = struct{}{}
}

/*
get looks up a key in the change set. The second return value is true if the
change set decides the value of the key.
*/
func (cs *changeSet) get(key []byte) ([]byte, bool) {
	k := string(key)

	if v, ok := cs.puts[k]; ok {
		return v, true
	} else if _, ok := cs.dels[k]; ok {
		return nil, true
	}

	return nil, false
}

func (cs *changeSet) isEmpty() bool {
	return len(cs.puts) == 0 && len(cs.dels) == 0
}

func (cs *changeSet) reset() {
	cs.puts = make(map[string][]byte)
	cs.dels = make(map[string]struct{})
}

/*
scanMerged collects all committed entries with a given prefix, overlays the
pending changes and calls fn in ascending key order.
*/
func scanMerged(prefix []byte, committed func(add func(k, v []byte)) error,
	cs *changeSet, fn func(key []byte, value []byte) bool) error {

	entries := make(map[string][]byte)

	if err := committed(func(k, v []byte) {
		entries[string(k)] = v
	}); err != nil {
		return err
	}

	for k, v := range cs.puts {
		if bytes.HasPrefix([]byte(k), prefix) {
			entries[k] = v
		}
	}

	for k := range cs.dels {
		delete(entries, k)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if !fn([]byte(k), entries[k]) {
			break
		}
	}

	return nil
}

/*
unwrapManager returns the storage manager behind a cache.
*/
func unwrapManager(sm Manager) Manager {
	if csm, ok := sm.(*CachedStorageManager); ok {
		return csm.sm
	}

	return sm
}

/*
distinctManagers removes duplicates from a list of storage managers and sorts
it by name. Locks of several managers are always taken in this order.
*/
func distinctManagers(sms []Manager) []Manager {
	seen := make(map[Manager]bool)
	ret := make([]Manager, 0, len(sms))

	for _, sm := range sms {
		if u := unwrapManager(sm); !seen[u] {
			seen[u] = true
			ret = append(ret, sm)
		}
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name() < ret[j].Name()
	})

	return ret
}

/*
managerNames returns the names of a list of storage managers for error messages.
*/
func managerNames(sms []Manager) string {
	var buf bytes.Buffer

	for i, sm := range sms {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(sm.Name())
	}

	return buf.String()
}
