/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package util

import (
	"bytes"
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"sort"

	"github.com/krotik/tracestore/storage"
)

/*
PrefixAttrHash is the prefix for index entries of whole values
*/
const PrefixAttrHash = "\x02"

/*
IndexManager data structure
*/
type IndexManager struct {
	sm storage.Manager // Storage manager holding the index
}

/*
indexEntry data structure
*/
type indexEntry struct {
	Keys map[string]string // Set of keys which have a certain value
}

/*
NewIndexManager creates a new index manager instance.
*/
func NewIndexManager(sm storage.Manager) *IndexManager {
	return &IndexManager{sm}
}

/*
Index indexes (adds) a given object which is identified by a given key.
*/
func (im *IndexManager) Index(key string, obj map[string]string) error {
	return im.updateIndex(key, obj, nil)
}

/*
Reindex reindexes (updates) a given object which is identified by a given key.
*/
func (im *IndexManager) Reindex(key string, newObj map[string]string,
	oldObj map[string]string) error {
	return im.updateIndex(key, newObj, oldObj)
}

/*
Deindex deindexes (removes) a given object which is identified by a given key.
*/
func (im *IndexManager) Deindex(key string, obj map[string]string) error {
	return im.updateIndex(key, nil, obj)
}

/*
LookupValue finds all nodes where an attribute has a certain value. This call
returns a sorted list of node keys.
*/
func (im *IndexManager) LookupValue(attr, value string) ([]string, error) {
	entry, err := im.readEntry(im.indexKey(attr, value))

	if err != nil {
		return nil, &GraphError{ErrIndexError, err.Error()}
	} else if entry == nil {
		return nil, nil
	}

	ret := make([]string, 0, len(entry.Keys))

	for key := range entry.Keys {
		ret = append(ret, key)
	}

	sort.StringSlice(ret).Sort()

	return ret, nil
}

/*
Count returns the number of nodes where an attribute has a certain value.
*/
func (im *IndexManager) Count(attr, value string) (int, error) {
	entry, err := im.readEntry(im.indexKey(attr, value))

	if err != nil {
		return 0, &GraphError{ErrIndexError, err.Error()}
	} else if entry == nil {
		return 0, nil
	}

	return len(entry.Keys), nil
}

/*
updateIndex updates the index for a specific object. Depending on the
new and old arguments being set a given object is either indexed/added
(only new is set), deindexted/removed (only old is set) or reindexted/updated
(new and old are set).
*/
func (im *IndexManager) updateIndex(key string, newObj map[string]string,
	oldObj map[string]string) error {

	for attr, val := range oldObj {
		if nval, ok := newObj[attr]; ok && nval == val {
			continue
		}

		if err := im.removeIndexHashEntry(key, attr, val); err != nil {
			return &GraphError{ErrIndexError, err.Error()}
		}
	}

	for attr, val := range newObj {
		if oval, ok := oldObj[attr]; ok && oval == val {
			continue
		}

		if err := im.addIndexHashEntry(key, attr, val); err != nil {
			return &GraphError{ErrIndexError, err.Error()}
		}
	}

	return nil
}

/*
addIndexHashEntry adds a hash entry to the index.
*/
func (im *IndexManager) addIndexHashEntry(key string, attr string, value string) error {
	indexkey := im.indexKey(attr, value)

	entry, err := im.readEntry(indexkey)
	if err != nil {
		return err
	}

	if entry == nil {
		entry = &indexEntry{make(map[string]string)}
	}

	entry.Keys[key] = ""

	return im.writeEntry(indexkey, entry)
}

/*
removeIndexHashEntry removes a hash entry from the index.
*/
func (im *IndexManager) removeIndexHashEntry(key string, attr string, value string) error {
	indexkey := im.indexKey(attr, value)

	entry, err := im.readEntry(indexkey)
	if err != nil || entry == nil {
		return err
	}

	delete(entry.Keys, key)

	if len(entry.Keys) == 0 {
		return im.sm.Delete(indexkey)
	}

	return im.writeEntry(indexkey, entry)
}

/*
indexKey returns the storage key of a hash entry. Values are case-sensitive.
*/
func (im *IndexManager) indexKey(attr string, value string) []byte {
	sum := md5.Sum([]byte(value))

	return []byte(PrefixAttrHash + attr + "\x00" + string(sum[:16]))
}

func (im *IndexManager) readEntry(indexkey []byte) (*indexEntry, error) {
	val, err := im.sm.Get(indexkey)
	if err != nil || val == nil {
		return nil, err
	}

	var entry indexEntry

	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (im *IndexManager) writeEntry(indexkey []byte, entry *indexEntry) error {
	var bb bytes.Buffer

	if err := gob.NewEncoder(&bb).Encode(entry); err != nil {
		return err
	}

	return im.sm.Put(indexkey, bb.Bytes())
}

/*
String returns a string representation of this index manager.
*/
func (im *IndexManager) String() string {
	count := 0

	im.sm.Scan([]byte(PrefixAttrHash), func(k, v []byte) bool {
		count++
		return true
	})

	return fmt.Sprintf("IndexManager: %v (%v value entries)", im.sm.Name(), count)
}
