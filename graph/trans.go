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
	"fmt"
	"strings"
	"sync"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
Trans is a transaction object which should be used to group node and edge operations.
*/
type Trans interface {

	/*
	   ID returns a unique transaction ID.
	*/
	ID() string

	/*
	   String returns a string representation of this transatction.
	*/
	String() string

	/*
	   Counts returns the transaction size in terms of objects. Returned values
	   are nodes to store and edges to store.
	*/
	Counts() (int, int)

	/*
	   IsEmpty returns if this transaction is empty.
	*/
	IsEmpty() bool

	/*
	   Commit writes the transaction to the graph database. An automatic rollback is done if
	   any error occurs. Failed transactions cannot be committed again.
	*/
	Commit() error

	/*
	   Rollback discards all pending operations of this transaction.
	*/
	Rollback()

	/*
	   StoreNode stores a single node in a partition of the graph. This function will
	   overwrites any existing node.
	*/
	StoreNode(part string, node data.Node) error

	/*
	   UpdateNode updates a single node in a partition of the graph. This function will
	   only update the given values of the node.
	*/
	UpdateNode(part string, node data.Node) error

	/*
	   StoreEdge stores a single edge in a partition of the graph. This function will
	   overwrites any existing edge.
	*/
	StoreEdge(part string, edge data.Edge) error
}

/*
NewGraphTrans creates a new graph transaction. This object is not thread safe.
*/
func NewGraphTrans(gm *Manager) Trans {
	return newInternalGraphTrans(gm)
}

/*
newInternalGraphTrans is used for internal transactions. The returned object
contains extra fields which are only for internal use.
*/
func newInternalGraphTrans(gm *Manager) *baseTrans {
	idCounterLock.Lock()
	defer idCounterLock.Unlock()

	idCounter++

	return &baseTrans{fmt.Sprint(idCounter), gm, false, make(map[string]data.Node),
		make(map[string]data.Edge), nil}
}

/*
idCounter is a simple counter for ids
*/
var idCounter uint64
var idCounterLock = &sync.Mutex{}

/*
baseTrans is the main data structure for a graph transaction
*/
type baseTrans struct {
	id       string   // Unique transaction ID
	gm       *Manager // Graph manager which created this transaction
	inCommit bool     // Flag if the transaction is currently being committed

	storeNodes map[string]data.Node // Nodes which should be stored
	storeEdges map[string]data.Edge // Edges which should be stored

	order []string // Insertion order of transaction keys
}

/*
ID returns a unique transaction ID.
*/
func (gt *baseTrans) ID() string {
	return gt.id
}

/*
IsEmpty returns if this transaction is empty.
*/
func (gt *baseTrans) IsEmpty() bool {
	sn, se := gt.Counts()

	return sn == 0 && se == 0
}

/*
Counts returns the transaction size in terms of objects. Returned values
are nodes to store and edges to store.
*/
func (gt *baseTrans) Counts() (int, int) {
	return len(gt.storeNodes), len(gt.storeEdges)
}

/*
String returns a string representation of this transatction.
*/
func (gt *baseTrans) String() string {
	sn, se := gt.Counts()

	return fmt.Sprintf("Transaction %v - Nodes: I:%v - Edges: I:%v",
		gt.id, sn, se)
}

/*
Rollback discards all pending operations of this transaction.
*/
func (gt *baseTrans) Rollback() {
	gt.storeNodes = make(map[string]data.Node)
	gt.storeEdges = make(map[string]data.Edge)
	gt.order = nil
}

/*
Commit writes the transaction to the graph database. An automatic rollback is done if
any error occurs. Failed transactions cannot be committed again.
*/
func (gt *baseTrans) Commit() error {

	// Take writer lock

	gt.gm.mutex.Lock()
	defer gt.gm.mutex.Unlock()

	// Return if there is nothing to do

	if gt.IsEmpty() {
		return nil
	}

	gt.inCommit = true
	defer func() {
		gt.inCommit = false
	}()

	nodePartsAndKinds := make(map[string]string)
	edgePartsAndKinds := make(map[string]string)

	doRollback := func() {

		// Rollback main database and forget cached main database maps

		gt.gm.gs.RollbackMain()
		gt.gm.resetMainDBCache()

		// Rollback node storages

		for kkey := range nodePartsAndKinds {
			partAndKind := strings.Split(kkey, "#")

			gt.gm.rollbackStorage(partAndKind[0] + partAndKind[1] + StorageSuffixNodesIndex)
			gt.gm.rollbackStorage(partAndKind[0] + partAndKind[1] + StorageSuffixNodes)
		}

		// Rollback edge storages

		for kkey := range edgePartsAndKinds {
			partAndKind := strings.Split(kkey, "#")

			gt.gm.rollbackStorage(partAndKind[0] + partAndKind[1] + StorageSuffixEdges)
		}

		gt.Rollback()
	}

	// Write nodes and edges until everything has been written. Rules may add
	// further operations to this transaction.

	var committedNodes []data.Node
	var committedEdges []data.Edge

	for !gt.IsEmpty() {

		// Write the nodes first

		nodes, err := gt.commitNodes(nodePartsAndKinds)
		committedNodes = append(committedNodes, nodes...)

		if err != nil {
			doRollback()
			return err
		}

		// After the nodes write the edges

		edges, err := gt.commitEdges(nodePartsAndKinds, edgePartsAndKinds)
		committedEdges = append(committedEdges, edges...)

		if err != nil {
			doRollback()
			return err
		}
	}

	// Write all changed storages together with the main database. A failed
	// write is rolled back completely.

	var smnames []string

	for kkey := range nodePartsAndKinds {
		partAndKind := strings.Split(kkey, "#")

		smnames = append(smnames, partAndKind[0]+partAndKind[1]+StorageSuffixNodesIndex,
			partAndKind[0]+partAndKind[1]+StorageSuffixNodes)
	}

	for kkey := range edgePartsAndKinds {
		partAndKind := strings.Split(kkey, "#")

		smnames = append(smnames, partAndKind[0]+partAndKind[1]+StorageSuffixEdges)
	}

	if err := gt.gm.gs.FlushStorages(smnames); err != nil {
		doRollback()
		return err
	}

	gt.order = nil

	// Notify rules about the finished transaction - the data is already
	// stored so errors of notification rules are not reported

	gt.gm.gr.graphEvent(nil, EventTransCommitted, committedNodes, committedEdges)

	return nil
}

/*
orderedKeys returns all transaction keys of a given map in insertion order.
*/
func (gt *baseTrans) orderedKeys(has func(string) bool) []string {
	var ret []string

	seen := make(map[string]bool)

	for _, k := range gt.order {
		if !seen[k] && has(k) {
			seen[k] = true
			ret = append(ret, k)
		}
	}

	return ret
}

/*
commitNodes tries to commit all transaction nodes.
*/
func (gt *baseTrans) commitNodes(nodePartsAndKinds map[string]string) ([]data.Node, error) {
	var committed []data.Node

	keys := gt.orderedKeys(func(k string) bool {
		_, ok := gt.storeNodes[k]
		return ok
	})

	for _, tkey := range keys {
		node := gt.storeNodes[tkey]

		// Get partition and kind

		partAndKind := strings.Split(tkey, "#")
		nodePartsAndKinds[partAndKind[0]+"#"+partAndKind[1]] = ""

		part := partAndKind[0]

		// Get the storage managers which store the node index and node

		ism, err := gt.gm.getNodeIndexStorage(part, node.Kind(), true)
		if err != nil {
			return committed, err
		}

		sm, err := gt.gm.getNodeStorage(part, node.Kind(), true)
		if err != nil {
			return committed, err
		}

		// Write the node to the datastore

		oldnode, err := gt.gm.writeNode(node, sm, nodeAttributeFilter)
		if err != nil {
			return committed, err
		}

		// Increase node count if the node was inserted and write the changes
		// to the index.

		if oldnode == nil {
			currentCount := gt.gm.NodeCount(node.Kind())
			gt.gm.writeNodeCount(node.Kind(), currentCount+1, false)

			if err := util.NewIndexManager(ism).Index(node.Key(), node.IndexMap()); err != nil {
				return committed, err
			}

		} else {

			err := util.NewIndexManager(ism).Reindex(node.Key(), node.IndexMap(),
				oldnode.IndexMap())

			if err != nil {
				return committed, err
			}
		}

		// Execute rules

		var event int
		if oldnode == nil {
			event = EventNodeCreated
		} else {
			event = EventNodeUpdated
		}

		if err := gt.gm.gr.graphEvent(gt, event, part, node, oldnode); err != nil && err != ErrEventHandled {
			return committed, err
		}

		delete(gt.storeNodes, tkey)

		committed = append(committed, node)
	}

	return committed, nil
}

/*
commitEdges tries to commit all transaction edges.
*/
func (gt *baseTrans) commitEdges(nodePartsAndKinds map[string]string, edgePartsAndKinds map[string]string) ([]data.Edge, error) {
	var committed []data.Edge

	keys := gt.orderedKeys(func(k string) bool {
		_, ok := gt.storeEdges[k]
		return ok
	})

	for _, tkey := range keys {
		edge := gt.storeEdges[tkey]

		// Get partition and kind

		partAndKind := strings.Split(tkey, "#")
		edgePartsAndKinds[partAndKind[0]+"#"+partAndKind[1]] = ""
		nodePartsAndKinds[partAndKind[0]+"#"+edge.End1Kind()] = ""
		nodePartsAndKinds[partAndKind[0]+"#"+edge.End2Kind()] = ""

		part := partAndKind[0]

		// Get the storage manager which stores the edges

		edgesm, err := gt.gm.getEdgeStorage(part, edge.Kind(), true)
		if err != nil {
			return committed, err
		}

		// Get the storage managers which store the edge endpoints and make
		// sure the endpoints do exist

		end1sm, err := gt.gm.getNodeStorage(part, edge.End1Kind(), false)

		if err != nil {
			return committed, err
		} else if end1sm == nil {
			return committed, &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: fmt.Sprintf("Can't store edge to non-existing node kind: %v", edge.End1Kind()),
			}
		} else if end1, err := end1sm.Get([]byte(PrefixNSAttrs + edge.End1Key())); err != nil || end1 == nil {
			return committed, &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: fmt.Sprintf("Can't find edge endpoint: %s (%s)", edge.End1Key(), edge.End1Kind()),
			}
		}

		end2sm, err := gt.gm.getNodeStorage(part, edge.End2Kind(), false)

		if err != nil {
			return committed, err
		} else if end2sm == nil {
			return committed, &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: "Can't store edge to non-existing node kind: " + edge.End2Kind()}
		} else if end2, err := end2sm.Get([]byte(PrefixNSAttrs + edge.End2Key())); err != nil || end2 == nil {
			return committed, &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: fmt.Sprintf("Can't find edge endpoint: %s (%s)", edge.End2Key(), edge.End2Kind()),
			}
		}

		// Write edge to the datastore

		oldedge, err := gt.gm.writeEdge(edge, edgesm, end1sm, end2sm)
		if err != nil {
			return committed, err
		}

		// Increase edge count if the edge was inserted

		var event int
		if oldedge == nil {
			currentCount := gt.gm.EdgeCount(edge.Kind())
			gt.gm.writeEdgeCount(edge.Kind(), currentCount+1, false)

			event = EventEdgeCreated
		} else {
			event = EventEdgeUpdated
		}

		// Execute rules

		if err := gt.gm.gr.graphEvent(gt, event, part, edge, oldedge); err != nil && err != ErrEventHandled {
			return committed, err
		}

		delete(gt.storeEdges, tkey)

		committed = append(committed, edge)
	}

	return committed, nil
}

/*
StoreNode stores a single node in a partition of the graph. This function will
overwrites any existing node.
*/
func (gt *baseTrans) StoreNode(part string, node data.Node) error {
	if err := gt.gm.checkPartitionName(part); err != nil {
		return err
	} else if err := gt.gm.checkNode(node); err != nil {
		return err
	}

	key := gt.createKey(part, node.Key(), node.Kind())

	gt.storeNodes[key] = node
	gt.order = append(gt.order, key)

	return nil
}

/*
UpdateNode updates a single node in a partition of the graph. This function will
only update the given values of the node.
*/
func (gt *baseTrans) UpdateNode(part string, node data.Node) error {
	if err := gt.gm.checkPartitionName(part); err != nil {
		return err
	} else if err := gt.gm.checkNode(node); err != nil {
		return err
	}

	key := gt.createKey(part, node.Key(), node.Kind())

	if storeNode, ok := gt.storeNodes[key]; ok {
		node = data.NodeMerge(storeNode, node)
	} else {

		// Check the actual database if the node exists. Rules add operations
		// while the committing transaction holds the writer lock.

		var storeNode data.Node
		var err error

		if gt.inCommit {
			var sm storage.Manager
			if sm, err = gt.gm.getNodeStorage(part, node.Kind(), false); err == nil && sm != nil {
				storeNode, err = gt.gm.readNode(node.Key(), node.Kind(), sm)
			}
		} else {
			storeNode, err = gt.gm.FetchNode(part, node.Key(), node.Kind())
		}

		if err != nil {
			return err
		} else if storeNode != nil {
			node = data.NodeMerge(storeNode, node)
		}
	}

	gt.storeNodes[key] = node
	gt.order = append(gt.order, key)

	return nil
}

/*
StoreEdge stores a single edge in a partition of the graph. This function will
overwrites any existing edge.
*/
func (gt *baseTrans) StoreEdge(part string, edge data.Edge) error {
	if err := gt.gm.checkPartitionName(part); err != nil {
		return err
	} else if err := gt.gm.checkEdge(edge); err != nil {
		return err
	}

	key := gt.createKey(part, edge.Key(), edge.Kind())

	gt.storeEdges[key] = edge
	gt.order = append(gt.order, key)

	return nil
}

/*
Create a key for the transaction storage.
*/
func (gt *baseTrans) createKey(part string, key string, kind string) string {
	return part + "#" + kind + "#" + key
}
