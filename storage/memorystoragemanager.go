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
	"bytes"
	"fmt"
	"strings"
	"sync"
)

/*
AccessGetError means keys with a registered prefix will not be accessible via Get
*/
const AccessGetError = 1

/*
AccessPutError means keys with a registered prefix will not be accessible via Put
*/
const AccessPutError = 2

/*
AccessDeleteError means keys with a registered prefix will not be accessible via Delete
*/
const AccessDeleteError = 3

/*
AccessScanError means a scan over a registered prefix will fail
*/
const AccessScanError = 4

/*
Return values for Close, Flush and Rollback calls
*/
var MsmRetClose, MsmRetFlush, MsmRetRollback error

/*
MemoryStorageManager data structure
*/
type MemoryStorageManager struct {
	name    string            // Name of the storage manager
	data    map[string][]byte // Map of committed data
	pending *changeSet        // Pending changes
	mutex   *sync.Mutex       // Mutex to protect map operations

	AccessMap map[string]int // Special map to simulate access issues (key prefix -> access error)
}

/*
NewMemoryStorageManager creates a new MemoryStorageManager
*/
func NewMemoryStorageManager(name string) *MemoryStorageManager {
	return &MemoryStorageManager{name, make(map[string][]byte), newChangeSet(),
		&sync.Mutex{}, make(map[string]int)}
}

/*
Name returns the name of the StorageManager instance.
*/
func (msm *MemoryStorageManager) Name() string {
	return msm.name
}

/*
Get returns the value of a given key.
*/
func (msm *MemoryStorageManager) Get(key []byte) ([]byte, error) {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	if msm.checkAccess(key, AccessGetError) {
		return nil, NewStorageManagerError(ErrReading, fmt.Sprintf("Key: %q", key), msm.name)
	}

	if v, ok := msm.pending.get(key); ok {
		return v, nil
	}

	return msm.data[string(key)], nil
}

/*
Put stores a value under a given key.
*/
func (msm *MemoryStorageManager) Put(key []byte, value []byte) error {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	if msm.checkAccess(key, AccessPutError) {
		return NewStorageManagerError(ErrWriting, fmt.Sprintf("Key: %q", key), msm.name)
	}

	msm.pending.put(key, value)

	return nil
}

/*
Delete removes a given key.
*/
func (msm *MemoryStorageManager) Delete(key []byte) error {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	if msm.checkAccess(key, AccessDeleteError) {
		return NewStorageManagerError(ErrWriting, fmt.Sprintf("Key: %q", key), msm.name)
	}

	msm.pending.delete(key)

	return nil
}

/*
Scan calls a given function for every key with a given prefix.
*/
func (msm *MemoryStorageManager) Scan(prefix []byte, fn func(key []byte, value []byte) bool) error {
	msm.mutex.Lock()

	if msm.checkAccess(prefix, AccessScanError) {
		msm.mutex.Unlock()
		return NewStorageManagerError(ErrReading, fmt.Sprintf("Prefix: %q", prefix), msm.name)
	}

	// Copy the data so fn can call back into the manager

	snapshot := make(map[string][]byte)
	for k, v := range msm.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			snapshot[k] = v
		}
	}

	pending := newChangeSet()
	for k, v := range msm.pending.puts {
		pending.puts[k] = v
	}
	for k := range msm.pending.dels {
		pending.dels[k] = struct{}{}
	}

	msm.mutex.Unlock()

	return scanMerged(prefix, func(add func(k, v []byte)) error {
		for k, v := range snapshot {
			add([]byte(k), v)
		}
		return nil
	}, pending, fn)
}

/*
Flush writes all pending changes to the storage.
*/
func (msm *MemoryStorageManager) Flush() error {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	if MsmRetFlush != nil {
		return MsmRetFlush
	}

	for k, v := range msm.pending.puts {
		msm.data[k] = v
	}

	for k := range msm.pending.dels {
		delete(msm.data, k)
	}

	msm.pending.reset()

	return nil
}

/*
Rollback discards all pending changes.
*/
func (msm *MemoryStorageManager) Rollback() error {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	msm.pending.reset()

	return MsmRetRollback
}

/*
Close closes the StorageManager.
*/
func (msm *MemoryStorageManager) Close() error {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	msm.pending.reset()

	return MsmRetClose
}

/*
Size returns the number of committed entries.
*/
func (msm *MemoryStorageManager) Size() int {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	return len(msm.data)
}

/*
checkAccess checks if an access error was registered for a given key. It is
assumed that the caller holds the mutex.
*/
func (msm *MemoryStorageManager) checkAccess(key []byte, code int) bool {
	for prefix, c := range msm.AccessMap {
		if c == code && strings.HasPrefix(string(key), prefix) {
			return true
		}
	}

	return false
}

/*
String returns a string representation of this storage manager.
*/
func (msm *MemoryStorageManager) String() string {
	msm.mutex.Lock()
	defer msm.mutex.Unlock()

	return fmt.Sprintf("MemoryStorageManager %v - %v committed entries, %v pending changes",
		msm.name, len(msm.data), len(msm.pending.puts)+len(msm.pending.dels))
}
