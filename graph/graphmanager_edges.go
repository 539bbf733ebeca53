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
	"fmt"
	"sort"
	"strings"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
	"github.com/krotik/tracestore/storage"
)

/*
edgeTargetInfo is an internal structure which stores edge information
*/
type edgeTargetInfo struct {
	TargetNodeKey  string // Key of the target node
	TargetNodeKind string // Kind of the target ndoe
}

func init() {

	// Make sure we can use the relevant types in a gob operation

	gob.Register(make(map[string]string))
	gob.Register(make(map[string]*edgeTargetInfo))
	gob.Register(&edgeTargetInfo{})
}

/*
EdgeCount returns the edge count for a given edge kind.
*/
func (gm *Manager) EdgeCount(kind string) uint64 {

	if val, ok := gm.gs.MainDB()[MainDBEdgeCount+kind]; ok {
		return binary.LittleEndian.Uint64([]byte(val))
	}

	return 0
}

/*
fetchNodeEdgeSpecs reads the edge specs of a node. The caller must hold the
reader lock.
*/
func (gm *Manager) fetchNodeEdgeSpecs(key string, sm storage.Manager) ([]string, error) {
	var specsNodeMap map[string]string

	if ok, err := readValue(sm, PrefixNSSpecs+key, &specsNodeMap); err != nil || !ok {
		return nil, err
	}

	specsNode := make([]string, 0, len(specsNodeMap))

	for spec := range specsNodeMap {
		specsNode = append(specsNode, spec)
	}

	// Ensure the output is deterministic

	sort.StringSlice(specsNode).Sort()

	return specsNode, nil
}

/*
TraverseMulti traverses from a given node to other nodes following a given
partial edge spec. Since the edge spec can be partial it is possible to
traverse multiple edge kinds. A spec with the value ":::" would follow
all relationships. The last parameter allData specifies if all data
should be retrieved for the connected nodes and edges. If set to false only
the minimal set of attributes will be populated.
*/
func (gm *Manager) TraverseMulti(part string, key string, kind string,
	spec string, allData bool) ([]data.Node, []data.Edge, error) {

	// Take reader lock

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	return gm.traverseMulti(part, key, kind, spec, allData)
}

/*
traverseMulti is the lock free version of TraverseMulti.
*/
func (gm *Manager) traverseMulti(part string, key string, kind string,
	spec string, allData bool) ([]data.Node, []data.Edge, error) {

	sspec := strings.Split(spec, ":")
	if len(sspec) != 4 {
		return nil, nil, &util.GraphError{Type: util.ErrInvalidData, Detail: "Invalid spec: " + spec}
	} else if IsFullSpec(spec) {
		return gm.traverse(part, key, kind, spec, allData)
	}

	// Get all specs for the given node

	sm, err := gm.getNodeStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, nil, err
	}

	specs, err := gm.fetchNodeEdgeSpecs(key, sm)
	if err != nil || specs == nil {
		return nil, nil, err
	}

	matchSpec := func(spec string) bool {
		mspec := strings.Split(spec, ":")

		// Check spec components

		if (sspec[0] != "" && mspec[0] != sspec[0]) ||
			(sspec[1] != "" && mspec[1] != sspec[1]) ||
			(sspec[2] != "" && mspec[2] != sspec[2]) ||
			(sspec[3] != "" && mspec[3] != sspec[3]) {

			return false
		}

		return true
	}

	// Match specs and collect the results

	var nodes []data.Node
	var edges []data.Edge

	for _, rspec := range specs {
		if spec == ":::" || matchSpec(rspec) {

			sn, se, err := gm.traverse(part, key, kind, rspec, allData)
			if err != nil {
				return nil, nil, err
			}

			nodes = append(nodes, sn...)
			edges = append(edges, se...)
		}
	}

	return nodes, edges, nil
}

/*
Traverse traverses from a given node to other nodes following a given edge spec.
The last parameter allData specifies if all data should be retrieved for
the connected nodes and edges. If set to false only the minimal set of
attributes will be populated.
*/
func (gm *Manager) Traverse(part string, key string, kind string,
	spec string, allData bool) ([]data.Node, []data.Edge, error) {

	// Take reader lock

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	return gm.traverse(part, key, kind, spec, allData)
}

/*
traverse is the lock free version of Traverse. Results are ordered by edge key.
*/
func (gm *Manager) traverse(part string, key string, kind string,
	spec string, allData bool) ([]data.Node, []data.Edge, error) {

	sspec := strings.Split(spec, ":")
	if len(sspec) != 4 {
		return nil, nil, &util.GraphError{Type: util.ErrInvalidData, Detail: "Invalid spec: " + spec}
	} else if !IsFullSpec(spec) {
		return nil, nil, &util.GraphError{Type: util.ErrInvalidData, Detail: "Invalid spec: " + spec +
			" - spec needs to be fully specified for direct traversal"}
	}

	sm, err := gm.getNodeStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, nil, err
	}

	// Lookup the target map containing edgeTargetInfo objects

	var targetMap map[string]*edgeTargetInfo

	if ok, err := readValue(sm, PrefixNSEdge+key+"\x00"+spec, &targetMap); err != nil || !ok {
		return nil, nil, err
	}

	edgeKeys := make([]string, 0, len(targetMap))
	for k := range targetMap {
		edgeKeys = append(edgeKeys, k)
	}
	sort.Strings(edgeKeys)

	nodes := make([]data.Node, 0, len(targetMap))
	edges := make([]data.Edge, 0, len(targetMap))

	if !allData {

		// Populate nodes and edges with the minimal set of attributes
		// no further lookups required

		for _, k := range edgeKeys {
			v := targetMap[k]

			edge := data.NewGraphEdge()

			edge.SetAttr(data.NodeKey, k)
			edge.SetAttr(data.NodeKind, sspec[1])

			edge.SetAttr(data.EdgeEnd1Key, key)
			edge.SetAttr(data.EdgeEnd1Kind, kind)
			edge.SetAttr(data.EdgeEnd1Role, sspec[0])

			edge.SetAttr(data.EdgeEnd2Key, v.TargetNodeKey)
			edge.SetAttr(data.EdgeEnd2Kind, v.TargetNodeKind)
			edge.SetAttr(data.EdgeEnd2Role, sspec[2])

			edges = append(edges, edge)

			node := data.NewGraphNode()

			node.SetAttr(data.NodeKey, v.TargetNodeKey)
			node.SetAttr(data.NodeKind, v.TargetNodeKind)

			nodes = append(nodes, node)
		}

		return nodes, edges, nil
	}

	// Get the storage which stores the edges

	edgesm, err := gm.getEdgeStorage(part, sspec[1], false)
	if err != nil || edgesm == nil {
		return nil, nil, err
	}

	for _, k := range edgeKeys {
		v := targetMap[k]

		// Read the edge from the datastore

		edgenode, err := gm.readNode(k, sspec[1], edgesm)
		if err != nil || edgenode == nil {
			return nil, nil, err
		}
		edge := data.NewGraphEdgeFromNode(edgenode)

		// Exchange ends if necessary

		if edge.End2Key() == key && edge.End2Kind() == kind {
			swap := func(attr1 string, attr2 string) {
				tmp := edge.Attr(attr1)
				edge.SetAttr(attr1, edge.Attr(attr2))
				edge.SetAttr(attr2, tmp)
			}

			swap(data.EdgeEnd1Key, data.EdgeEnd2Key)
			swap(data.EdgeEnd1Kind, data.EdgeEnd2Kind)
			swap(data.EdgeEnd1Role, data.EdgeEnd2Role)
		}

		edges = append(edges, edge)

		// Get the storage which stores the node

		nodesm, err := gm.getNodeStorage(part, v.TargetNodeKind, false)
		if err != nil || nodesm == nil {
			return nil, nil, err
		}

		node, err := gm.readNode(v.TargetNodeKey, v.TargetNodeKind, nodesm)
		if err != nil {
			return nil, nil, err
		}

		nodes = append(nodes, node)
	}

	return nodes, edges, nil
}

/*
writeEdge writes a given edge to the datastore. It is assumed that the caller
holds the writer lock before calling the functions and that, after the function
returns, the changes are flushed to the storage. Returns the old edge if an
update occurred.
*/
func (gm *Manager) writeEdge(edge data.Edge, edgeSM storage.Manager,
	end1SM storage.Manager, end2SM storage.Manager) (data.Edge, error) {

	// Create lookup keys

	spec1 := edge.Spec(edge.End1Key())
	spec2 := fmt.Sprintf("%s:%s:%s:%s", edge.End2Role(), edge.Kind(), edge.End1Role(), edge.End1Kind())

	specsNode1Key := PrefixNSSpecs + edge.End1Key()
	edgeInfo1Key := PrefixNSEdge + edge.End1Key() + "\x00" + spec1

	specsNode2Key := PrefixNSSpecs + edge.End2Key()
	edgeInfo2Key := PrefixNSEdge + edge.End2Key() + "\x00" + spec2

	// Function to insert a new spec into a specs map

	updateSpecMap := func(key string, spec string, sm storage.Manager) error {
		var specsNode map[string]string

		if ok, err := readValue(sm, key, &specsNode); err != nil {
			return err
		} else if !ok || specsNode == nil {
			specsNode = make(map[string]string)
		}

		specsNode[spec] = ""

		return writeValue(sm, key, specsNode)
	}

	// Function to update the edgeTargetInfo entry

	updateTargetInfo := func(key string, endkey string, endkind string, sm storage.Manager) error {
		var targetMap map[string]*edgeTargetInfo

		if ok, err := readValue(sm, key, &targetMap); err != nil {
			return err
		} else if !ok || targetMap == nil {
			targetMap = make(map[string]*edgeTargetInfo)
		}

		targetMap[edge.Key()] = &edgeTargetInfo{endkey, endkind}

		return writeValue(sm, key, targetMap)
	}

	// Write node data for edge - if the data is incorrect we write the old
	// data back later. It is assumed that most of the time the data is correct
	// so we can avoid an extra read lookup

	var oldedge data.Edge

	if oldedgenode, err := gm.writeNode(edge, edgeSM, nodeAttributeFilter); err != nil {
		return nil, err
	} else if oldedgenode != nil {
		oldedge = data.NewGraphEdgeFromNode(oldedgenode)

		// Do a sanity check that the endpoints were not updated.

		if !data.NodeCompare(oldedge, edge, []string{data.EdgeEnd1Key,
			data.EdgeEnd1Kind, data.EdgeEnd1Role, data.EdgeEnd2Key,
			data.EdgeEnd2Kind, data.EdgeEnd2Role}) {

			// If the check fails then write back the old data and return
			// no error checking when writing back

			gm.writeNode(oldedge, edgeSM, nodeAttributeFilter)

			return nil, &util.GraphError{
				Type:   util.ErrInvalidData,
				Detail: "Cannot update endpoints or spec of existing edge: " + edge.Key(),
			}
		}

		return oldedge, nil
	}

	// Create / update specs map on the nodes

	if err := updateSpecMap(specsNode1Key, spec1, end1SM); err != nil {
		return nil, err
	}
	if err := updateSpecMap(specsNode2Key, spec2, end2SM); err != nil {
		return nil, err
	}

	// Create / update the edgeInfo entries

	if err := updateTargetInfo(edgeInfo1Key, edge.End2Key(), edge.End2Kind(), end1SM); err != nil {
		return nil, err
	}

	if err := updateTargetInfo(edgeInfo2Key, edge.End1Key(), edge.End1Kind(), end2SM); err != nil {
		return nil, err
	}

	return nil, nil
}
