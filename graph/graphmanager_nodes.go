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
	"encoding/binary"
	"encoding/gob"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

func init() {

	// It is possible to store nested structures on nodes

	gob.Register(make(map[string]interface{}))
}

/*
NodeCount returns the node count for a given node kind.
*/
func (gm *Manager) NodeCount(kind string) uint64 {

	if val, ok := gm.gs.MainDB()[MainDBNodeCount+kind]; ok {
		return binary.LittleEndian.Uint64([]byte(val))
	}

	return 0
}

/*
NodeKeyIterator iterates node keys of a certain kind. The iterator works on
a snapshot of the keys which existed when it was created.
*/
func (gm *Manager) NodeKeyIterator(part string, kind string) (*NodeKeyIterator, error) {

	sm, err := gm.getNodeStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, err
	}

	// Take reader lock

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	var keys []string

	err = sm.Scan([]byte(PrefixNSAttrs), func(k, v []byte) bool {
		keys = append(keys, string(k[len(PrefixNSAttrs):]))
		return true
	})

	if err != nil {
		return nil, &util.GraphError{Type: util.ErrReading, Detail: err.Error()}
	}

	return &NodeKeyIterator{gm, keys, 0, nil}, nil
}

/*
FetchNode fetches a single node from a partition of the graph.
*/
func (gm *Manager) FetchNode(part string, key string, kind string) (data.Node, error) {

	sm, err := gm.getNodeStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, err
	}

	// Take reader lock

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	return gm.readNode(key, kind, sm)
}

/*
FetchNodes fetches several nodes of the same kind from a partition of the
graph. Keys which do not exist are skipped.
*/
func (gm *Manager) FetchNodes(part string, keys []string, kind string) ([]data.Node, error) {

	sm, err := gm.getNodeStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, err
	}

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	ret := make([]data.Node, 0, len(keys))

	for _, key := range keys {
		node, err := gm.readNode(key, kind, sm)
		if err != nil {
			return nil, err
		} else if node != nil {
			ret = append(ret, node)
		}
	}

	return ret, nil
}

/*
readNode reads a given node from the datastore. Returns nil if the node
does not exist.
*/
func (gm *Manager) readNode(key string, kind string, sm storage.Manager) (data.Node, error) {
	var attrs map[string]interface{}

	if ok, err := readValue(sm, PrefixNSAttrs+key, &attrs); err != nil || !ok {
		return nil, err
	} else if attrs == nil {
		attrs = make(map[string]interface{})
	}

	node := data.NewGraphNodeFromMap(attrs)

	// Set key and kind attributes

	node.SetAttr(data.NodeKey, key)
	node.SetAttr(data.NodeKind, kind)

	return node, nil
}

/*
writeNode writes a given node to the datastore. It is assumed that the caller
holds the writer lock before calling the functions and that, after the function
returns, the changes are flushed to the storage. Returns the old node if an
update occurred. An attribute filter can be specified to skip specific attributes.
*/
func (gm *Manager) writeNode(node data.Node, sm storage.Manager,
	attFilter func(attr string) bool) (data.Node, error) {

	var oldattrs map[string]interface{}
	var oldnode data.Node

	key := PrefixNSAttrs + node.Key()

	found, err := readValue(sm, key, &oldattrs)
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]interface{})

	if found {
		if oldattrs == nil {
			oldattrs = make(map[string]interface{})
		}
		oldnode = data.NewGraphNodeFromMap(oldattrs)
		oldnode.SetAttr(data.NodeKey, node.Key())
		oldnode.SetAttr(data.NodeKind, node.Kind())
	}

	for attr, val := range node.Data() {

		// Ignore filtered attributes

		if attFilter(attr) {
			continue
		}

		attrs[attr] = val
	}

	if err := writeValue(sm, key, attrs); err != nil {
		return nil, err
	}

	return oldnode, nil
}

/*
nodeAttributeFilter filters out node attributes which should not be stored
as part of the node data.
*/
func nodeAttributeFilter(attr string) bool {
	return attr == data.NodeKey || attr == data.NodeKind
}
