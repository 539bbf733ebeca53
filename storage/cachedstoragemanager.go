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

import "sync"

/*
CachedStorageManager is a cache wrapper for a storage manager. It keeps the
values of the most recently used keys. Once the cache is full it forgets the
values which have been requested the least.
*/
type CachedStorageManager struct {
	sm         Manager                // Wrapped storage manager
	mutex      *sync.Mutex            // Mutex to protect list and map operations
	cache      map[string]*cacheEntry // Map of stored cacheEntry objects
	maxObjects int                    // Max number of values which should be held in the cache
	firstentry *cacheEntry            // Pointer to first entry in cacheEntry linked list
	lastentry  *cacheEntry            // Pointer to last entry in cacheEntry linked list
}

/*
cacheEntry data structure
*/
type cacheEntry struct {
	key   string      // Key of the entry
	value []byte      // Value of the entry
	prev  *cacheEntry // Pointer to previous entry in cacheEntry linked list
	next  *cacheEntry // Pointer to next entry in cacheEntry linked list
}

/*
Pool for cache entries
*/
var entryPool = &sync.Pool{New: func() interface{} { return &cacheEntry{} }}

/*
NewCachedStorageManager creates a new cache wrapper for a storage manager.
*/
func NewCachedStorageManager(sm Manager, maxObjects int) *CachedStorageManager {
	return &CachedStorageManager{sm, &sync.Mutex{}, make(map[string]*cacheEntry),
		maxObjects, nil, nil}
}

/*
Name returns the name of the StorageManager instance.
*/
func (csm *CachedStorageManager) Name() string {
	return csm.sm.Name()
}

/*
Get returns the value of a given key. Cached values are returned without
asking the wrapped storage manager.
*/
func (csm *CachedStorageManager) Get(key []byte) ([]byte, error) {
	csm.mutex.Lock()

	if entry, ok := csm.cache[string(key)]; ok {
		csm.llTouchEntry(entry)
		value := copyBytes(entry.value)
		csm.mutex.Unlock()

		return value, nil
	}

	csm.mutex.Unlock()

	value, err := csm.sm.Get(key)

	if err == nil && value != nil {
		csm.mutex.Lock()
		csm.storeInCache(string(key), value)
		csm.mutex.Unlock()
	}

	return value, err
}

/*
Put stores a value under a given key.
*/
func (csm *CachedStorageManager) Put(key []byte, value []byte) error {
	if err := csm.sm.Put(key, value); err != nil {
		return err
	}

	csm.mutex.Lock()
	defer csm.mutex.Unlock()

	csm.storeInCache(string(key), value)

	return nil
}

/*
Delete removes a given key.
*/
func (csm *CachedStorageManager) Delete(key []byte) error {
	if err := csm.sm.Delete(key); err != nil {
		return err
	}

	csm.mutex.Lock()
	defer csm.mutex.Unlock()

	if entry, ok := csm.cache[string(key)]; ok {
		delete(csm.cache, entry.key)
		csm.llRemoveEntry(entry)
		entryPool.Put(entry)
	}

	return nil
}

/*
Scan calls a given function for every key with a given prefix. Scans are not
cached.
*/
func (csm *CachedStorageManager) Scan(prefix []byte, fn func(key []byte, value []byte) bool) error {
	return csm.sm.Scan(prefix, fn)
}

/*
Flush writes all pending changes to the storage.
*/
func (csm *CachedStorageManager) Flush() error {
	return csm.sm.Flush()
}

/*
Rollback discards all pending changes. The cache is emptied in any case.
*/
func (csm *CachedStorageManager) Rollback() error {
	err := csm.sm.Rollback()

	csm.reset()

	return err
}

/*
Close closes the wrapped storage manager.
*/
func (csm *CachedStorageManager) Close() error {
	csm.reset()

	return csm.sm.Close()
}

/*
Cached returns the number of cached values.
*/
func (csm *CachedStorageManager) Cached() int {
	csm.mutex.Lock()
	defer csm.mutex.Unlock()

	return len(csm.cache)
}

/*
reset empties the cache.
*/
func (csm *CachedStorageManager) reset() {
	csm.mutex.Lock()
	defer csm.mutex.Unlock()

	csm.cache = make(map[string]*cacheEntry)
	csm.firstentry = nil
	csm.lastentry = nil
}

/*
storeInCache adds or updates an entry. It is assumed that the caller holds
the mutex.
*/
func (csm *CachedStorageManager) storeInCache(key string, value []byte) {
	if csm.maxObjects <= 0 {
		return
	}

	if entry, ok := csm.cache[key]; ok {
		entry.value = copyBytes(value)
		csm.llTouchEntry(entry)
		return
	}

	var entry *cacheEntry

	// Get an entry from the pool or recycle the oldest entry if the
	// cache is full

	if len(csm.cache) >= csm.maxObjects {
		entry = csm.removeOldestFromCache()
	} else {
		entry = entryPool.Get().(*cacheEntry)
	}

	entry.key = key
	entry.value = copyBytes(value)

	csm.llAppendEntry(entry)

	csm.cache[key] = entry
}

/*
removeOldestFromCache removes the oldest entry from the cache and return it.
*/
func (csm *CachedStorageManager) removeOldestFromCache() *cacheEntry {
	entry := csm.firstentry

	if entry == nil {
		return entryPool.Get().(*cacheEntry)
	}

	csm.llRemoveEntry(entry)

	delete(csm.cache, entry.key)

	return entry
}

/*
llTouchEntry puts an entry to the last position of the cacheEntry linked list.
Calling llTouchEntry on all requested items ensures that the oldest used
entry is at the beginning of the list.
*/
func (csm *CachedStorageManager) llTouchEntry(entry *cacheEntry) {
	if csm.lastentry == entry {
		return
	}

	csm.llRemoveEntry(entry)
	csm.llAppendEntry(entry)
}

/*
llAppendEntry appends a cacheEntry to the end of the cacheEntry linked list.
*/
func (csm *CachedStorageManager) llAppendEntry(entry *cacheEntry) {
	if csm.firstentry == nil {
		csm.firstentry = entry
		csm.lastentry = entry
		entry.prev = nil
	} else {
		csm.lastentry.next = entry
		entry.prev = csm.lastentry
		csm.lastentry = entry
	}
	entry.next = nil
}

/*
llRemoveEntry removes a cacheEntry from the cacheEntry linked list.
*/
func (csm *CachedStorageManager) llRemoveEntry(entry *cacheEntry) {
	if entry == csm.firstentry {
		csm.firstentry = entry.next
	}
	if csm.lastentry == entry {
		csm.lastentry = entry.prev
	}

	if entry.prev != nil {
		entry.prev.next = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}

func copyBytes(b []byte) []byte {
	ret := make([]byte, len(b))
	copy(ret, b)
	return ret
}
