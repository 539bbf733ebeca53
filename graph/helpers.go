/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

// Helper functions for GraphManager
// =================================

/*
checkPartitionName checks if a given partition name is valid.
*/
func (gm *Manager) checkPartitionName(part string) error {
	if !stringutil.IsAlphaNumeric(part) {
		return &util.GraphError{
			Type:   util.ErrInvalidData,
			Detail: fmt.Sprintf("Partition name %v is not alphanumeric - can only contain [a-zA-Z0-9_]", part),
		}
	}

	return nil
}

/*
checkNode checks if a given node can be written to the datastore.
*/
func (gm *Manager) checkNode(node data.Node) error {
	return gm.checkItemGeneral(node, "Node")
}

/*
checkItemGeneral checks the general properties of a given graph item.
*/
func (gm *Manager) checkItemGeneral(node data.Node, name string) error {
	if node.Key() == "" {
		return &util.GraphError{Type: util.ErrInvalidData, Detail: name + " is missing a key value"}
	}

	if node.Kind() == "" {
		return &util.GraphError{Type: util.ErrInvalidData, Detail: name + " is missing a kind value"}
	}

	if !stringutil.IsAlphaNumeric(node.Kind()) {
		return &util.GraphError{
			Type:   util.ErrInvalidData,
			Detail: fmt.Sprintf("%v kind %v is not alphanumeric - can only contain [a-zA-Z0-9_]", name, node.Kind()),
		}
	}

	for attr := range node.Data() {
		if attr == "" {
			return &util.GraphError{Type: util.ErrInvalidData, Detail: name + " contains empty string attribute name"}
		}
	}

	return nil
}

/*
checkEdge checks if a given edge can be written to the datastore.
*/
func (gm *Manager) checkEdge(edge data.Edge) error {
	if err := gm.checkItemGeneral(edge, "Edge"); err != nil {
		return err
	}

	checkEnd := func(end string, key string, kind string, role string) error {
		if key == "" {
			return &util.GraphError{Type: util.ErrInvalidData, Detail: "Edge is missing a key value for " + end}
		}

		if kind == "" {
			return &util.GraphError{Type: util.ErrInvalidData, Detail: "Edge is missing a kind value for " + end}
		}

		if role == "" {
			return &util.GraphError{Type: util.ErrInvalidData, Detail: "Edge is missing a role value for " + end}
		} else if !stringutil.IsAlphaNumeric(role) {
			return &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: fmt.Sprintf("Edge role %v is not alphanumeric - can only contain [a-zA-Z0-9_]", role),
			}
		}

		return nil
	}

	if err := checkEnd("end1", edge.End1Key(), edge.End1Kind(), edge.End1Role()); err != nil {
		return err
	}

	return checkEnd("end2", edge.End2Key(), edge.End2Kind(), edge.End2Role())
}

/*
writeNodeCount writes a new node count for a specific kind to the datastore.
*/
func (gm *Manager) writeNodeCount(kind string, count uint64, flush bool) error {
	numstr := make([]byte, 8)

	binary.LittleEndian.PutUint64(numstr, count)
	gm.gs.MainDB()[MainDBNodeCount+kind] = string(numstr)

	if flush {
		return gm.gs.FlushMain()
	}

	return nil
}

/*
writeEdgeCount writes a new edge count for a specific kind to the datastore.
*/
func (gm *Manager) writeEdgeCount(kind string, count uint64, flush bool) error {
	numstr := make([]byte, 8)

	binary.LittleEndian.PutUint64(numstr, count)
	gm.gs.MainDB()[MainDBEdgeCount+kind] = string(numstr)

	if flush {
		return gm.gs.FlushMain()
	}

	return nil
}

/*
getNodeStorage gets the storage manager which can be used to store nodes.
This function ensures that depending entries in other datastructures do exist.
*/
func (gm *Manager) getNodeStorage(part string, kind string, create bool) (storage.Manager, error) {

	gm.storageMutex.Lock()
	defer gm.storageMutex.Unlock()

	if err := gm.checkPartitionName(part); err != nil {
		return nil, err
	}

	if !stringutil.IsAlphaNumeric(kind) {
		return nil, &util.GraphError{
			Type:   util.ErrInvalidData,
			Detail: fmt.Sprintf("Node kind %v is not alphanumeric - can only contain [a-zA-Z0-9_]", kind),
		}
	}

	sm := gm.gs.StorageManager(part+kind+StorageSuffixNodes, create)
	if sm == nil {
		return nil, nil
	}

	// Make sure all required lookup maps are there

	if gm.getMainDBMap(MainDBNodeKinds) == nil {
		gm.storeMainDBMap(MainDBNodeKinds, make(map[string]string))
	}

	if gm.getMainDBMap(MainDBParts) == nil {
		gm.storeMainDBMap(MainDBParts, make(map[string]string))
	}

	if gm.getMainDBMap(MainDBNodeAttrs+kind) == nil {
		gm.storeMainDBMap(MainDBNodeAttrs+kind, make(map[string]string))
	}

	if gm.getMainDBMap(MainDBNodeEdges+kind) == nil {
		gm.storeMainDBMap(MainDBNodeEdges+kind, make(map[string]string))
	}

	if _, ok := gm.gs.MainDB()[MainDBNodeCount+kind]; !ok {
		gm.gs.MainDB()[MainDBNodeCount+kind] = string(make([]byte, 8))
	}

	return sm, nil
}

/*
getEdgeStorage gets the storage manager which can be used to store edges.
This function ensures that depending entries in other datastructures do exist.
*/
func (gm *Manager) getEdgeStorage(part string, kind string, create bool) (storage.Manager, error) {

	gm.storageMutex.Lock()
	defer gm.storageMutex.Unlock()

	if err := gm.checkPartitionName(part); err != nil {
		return nil, err
	}

	if !stringutil.IsAlphaNumeric(kind) {
		return nil, &util.GraphError{
			Type:   util.ErrInvalidData,
			Detail: fmt.Sprintf("Edge kind %v is not alphanumeric - can only contain [a-zA-Z0-9_]", kind),
		}
	}

	sm := gm.gs.StorageManager(part+kind+StorageSuffixEdges, create)
	if sm == nil {
		return nil, nil
	}

	if gm.getMainDBMap(MainDBEdgeKinds) == nil {
		gm.storeMainDBMap(MainDBEdgeKinds, make(map[string]string))
	}

	if gm.getMainDBMap(MainDBEdgeAttrs+kind) == nil {
		gm.storeMainDBMap(MainDBEdgeAttrs+kind, make(map[string]string))
	}

	if _, ok := gm.gs.MainDB()[MainDBEdgeCount+kind]; !ok {
		gm.gs.MainDB()[MainDBEdgeCount+kind] = string(make([]byte, 8))
	}

	return sm, nil
}

/*
getNodeIndexStorage gets the storage manager which can be used to index nodes.
*/
func (gm *Manager) getNodeIndexStorage(part string, kind string, create bool) (storage.Manager, error) {

	gm.storageMutex.Lock()
	defer gm.storageMutex.Unlock()

	if err := gm.checkPartitionName(part); err != nil {
		return nil, err
	}

	if !stringutil.IsAlphaNumeric(kind) {
		return nil, &util.GraphError{
			Type:   util.ErrInvalidData,
			Detail: fmt.Sprintf("Node kind %v is not alphanumeric - can only contain [a-zA-Z0-9_]", kind),
		}
	}

	return gm.gs.StorageManager(part+kind+StorageSuffixNodesIndex, create), nil
}

/*
rollbackStorage rollbacks a named storage.
*/
func (gm *Manager) rollbackStorage(name string) error {
	if sm := gm.gs.StorageManager(name, false); sm != nil {
		if err := sm.Rollback(); err != nil {
			return &util.GraphError{Type: util.ErrRollback, Detail: err.Error()}
		}
	}
	return nil
}

/*
getMainDBMap gets a map from the main database.
*/
func (gm *Manager) getMainDBMap(key string) map[string]string {

	// First try to cache

	mapval, ok := gm.mapCache[key]
	if ok {
		return mapval
	}

	// Lookup map and decode it

	val, ok := gm.gs.MainDB()[key]
	if ok {
		mapval = stringToMap(val)
		gm.mapCache[key] = mapval
	}

	return mapval
}

/*
storeMainDBMap stores a map in the main database. The map is stored as a gob byte slice.
Once it has been decoded it is cached for read operations.
*/
func (gm *Manager) storeMainDBMap(key string, mapval map[string]string) {
	gm.mapCache[key] = mapval
	gm.gs.MainDB()[key] = mapToString(mapval)
}

/*
resetMainDBCache clears all cached main database maps.
*/
func (gm *Manager) resetMainDBCache() {
	for k := range gm.mapCache {
		delete(gm.mapCache, k)
	}
}

// Static helper functions
// =======================

/*
IsFullSpec is a function to determine if a given spec is a fully specified spec
(i.e. all spec components are specified)
*/
func IsFullSpec(spec string) bool {
	sspec := strings.Split(spec, ":")

	if len(sspec) != 4 || sspec[0] == "" || sspec[1] == "" || sspec[2] == "" || sspec[3] == "" {
		return false
	}

	return true
}

/*
mapToString turns a map of strings into a single string.
*/
func mapToString(stringmap map[string]string) string {
	bb := &bytes.Buffer{}

	gob.NewEncoder(bb).Encode(stringmap)

	return bb.String()
}

/*
stringToMap turns a string into a map of strings.
*/
func stringToMap(mapString string) map[string]string {
	var stringmap map[string]string

	if err := gob.NewDecoder(bytes.NewBufferString(mapString)).Decode(&stringmap); err != nil {
		panic(fmt.Sprint("Cannot decode:", mapString, err))
	}

	return stringmap
}

/*
readValue reads and decodes a gob encoded value from a storage manager. Returns
false if the key does not exist.
*/
func readValue(sm storage.Manager, key string, v interface{}) (bool, error) {
	val, err := sm.Get([]byte(key))
	if err != nil {
		return false, &util.GraphError{Type: util.ErrReading, Detail: err.Error()}
	} else if val == nil {
		return false, nil
	}

	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(v); err != nil {
		return false, &util.GraphError{Type: util.ErrReading, Detail: err.Error()}
	}

	return true, nil
}

/*
writeValue encodes a value with gob and writes it to a storage manager.
*/
func writeValue(sm storage.Manager, key string, v interface{}) error {
	var bb bytes.Buffer

	if err := gob.NewEncoder(&bb).Encode(v); err != nil {
		return &util.GraphError{Type: util.ErrWriting, Detail: err.Error()}
	}

	if err := sm.Put([]byte(key), bb.Bytes()); err != nil {
		return &util.GraphError{Type: util.ErrWriting, Detail: err.Error()}
	}

	return nil
}
