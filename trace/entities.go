/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package trace

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/krotik/tracestore/graph/data"
)

/*
handle is a typed view on a graph vertex. A handle is only valid within the
operation which created it and must never be kept beyond it.
*/
type handle interface {

	/*
		ID returns the surrogate id of the vertex.
	*/
	ID() string

	/*
		Kind returns the vertex kind.
	*/
	Kind() string
}

/*
vertex is the common part of all handles.
*/
type vertex struct {
	id   string
	kind string
}

func (v *vertex) ID() string {
	return v.id
}

func (v *vertex) Kind() string {
	return v.kind
}

/*
node returns a minimal graph node which refers to the vertex.
*/
func (v *vertex) node() data.Node {
	return newVertexNode(v.id, v.kind)
}

/*
contextHandle is a handle to an ExecutionContext vertex.
*/
type contextHandle struct {
	vertex
	scriptID string
	modelIDs []string
}

/*
moduleElementHandle is a handle to a ModuleElement vertex.
*/
type moduleElementHandle struct {
	vertex
	moduleID string
}

/*
modelElementHandle is a handle to a ModelElement vertex.
*/
type modelElementHandle struct {
	vertex
	elementID string
}

/*
propertyHandle is a handle to a Property vertex.
*/
type propertyHandle struct {
	vertex
	name string
}

/*
traceHandle is a handle to a Trace vertex.
*/
type traceHandle struct {
	vertex
}

/*
handleConstructors maps vertex kinds to constructors of typed handles.
*/
var handleConstructors = map[string]func(v vertex, node data.Node) (handle, error){

	KindExecutionContext: func(v vertex, node data.Node) (handle, error) {
		scriptID, err := stringAttr(node, AttrScriptID)
		if err != nil {
			return nil, err
		}

		modelIDs, err := stringListAttr(node, AttrModelsIDs)
		if err != nil {
			return nil, err
		}

		return &contextHandle{v, scriptID, modelIDs}, nil
	},

	KindModuleElement: func(v vertex, node data.Node) (handle, error) {
		moduleID, err := stringAttr(node, AttrModuleID)
		return &moduleElementHandle{v, moduleID}, err
	},

	KindModelElement: func(v vertex, node data.Node) (handle, error) {
		elementID, err := stringAttr(node, AttrElementID)
		return &modelElementHandle{v, elementID}, err
	},

	KindProperty: func(v vertex, node data.Node) (handle, error) {
		name, err := stringAttr(node, AttrName)
		return &propertyHandle{v, name}, err
	},

	KindTrace: func(v vertex, node data.Node) (handle, error) {
		return &traceHandle{v}, nil
	},
}

/*
wrapNode adapts a raw graph node into a typed handle. The node must be of
the expected kind and carry all attributes of its kind.
*/
func wrapNode(node data.Node, expectedKind string) (handle, error) {
	if node == nil || node.Key() == "" {
		return nil, newError(ErrHandleAdaptation, "Vertex has no id", nil)
	}

	if node.Kind() != expectedKind {
		return nil, newError(ErrHandleAdaptation,
			fmt.Sprintf("Vertex %v is of kind %v not %v", node.Key(), node.Kind(), expectedKind), nil)
	}

	constructor, ok := handleConstructors[expectedKind]
	if !ok {
		return nil, newError(ErrHandleAdaptation, "Unknown vertex kind: "+expectedKind, nil)
	}

	h, err := constructor(vertex{node.Key(), node.Kind()}, node)
	if err != nil {
		return nil, newError(ErrHandleAdaptation,
			fmt.Sprintf("Vertex %v of kind %v", node.Key(), node.Kind()), err)
	}

	return h, nil
}

func wrapContext(node data.Node) (*contextHandle, error) {
	h, err := wrapNode(node, KindExecutionContext)
	if err != nil {
		return nil, err
	}
	return h.(*contextHandle), nil
}

func wrapModuleElement(node data.Node) (*moduleElementHandle, error) {
	h, err := wrapNode(node, KindModuleElement)
	if err != nil {
		return nil, err
	}
	return h.(*moduleElementHandle), nil
}

func wrapModelElement(node data.Node) (*modelElementHandle, error) {
	h, err := wrapNode(node, KindModelElement)
	if err != nil {
		return nil, err
	}
	return h.(*modelElementHandle), nil
}

func wrapProperty(node data.Node) (*propertyHandle, error) {
	h, err := wrapNode(node, KindProperty)
	if err != nil {
		return nil, err
	}
	return h.(*propertyHandle), nil
}

func wrapTrace(node data.Node) (*traceHandle, error) {
	h, err := wrapNode(node, KindTrace)
	if err != nil {
		return nil, err
	}
	return h.(*traceHandle), nil
}

/*
newVertexNode creates a graph node with a given key and kind.
*/
func newVertexNode(key string, kind string) data.Node {
	node := data.NewGraphNode()
	node.SetAttr(data.NodeKey, key)
	node.SetAttr(data.NodeKind, kind)
	return node
}

/*
newVertex creates a graph node of a given kind with a fresh surrogate id.
*/
func newVertex(kind string) data.Node {
	return newVertexNode(uuid.NewString(), kind)
}

/*
newEdge creates a directed edge with a fresh surrogate id.
*/
func newEdge(kind string, source data.Node, target data.Node) data.Edge {
	return data.NewDirectedEdge(uuid.NewString(), kind, source, target)
}

/*
stringAttr returns a mandatory string attribute of a node.
*/
func stringAttr(node data.Node, attr string) (string, error) {
	val, ok := node.Attr(attr).(string)
	if !ok {
		return "", fmt.Errorf("Attribute %v is missing or not a string: %v", attr, node.Attr(attr))
	}
	return val, nil
}

/*
stringListAttr returns a mandatory string list attribute of a node.
*/
func stringListAttr(node data.Node, attr string) ([]string, error) {
	switch val := node.Attr(attr).(type) {
	case []string:
		return val, nil
	case []interface{}:
		ret := make([]string, 0, len(val))
		for _, v := range val {
			ret = append(ret, fmt.Sprint(v))
		}
		return ret, nil
	}

	return nil, fmt.Errorf("Attribute %v is missing or not a list: %v", attr, node.Attr(attr))
}

/*
normalizeIDs returns a sorted copy of a list of ids without duplicates.
*/
func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	ret := make([]string, 0, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ret = append(ret, id)
		}
	}

	sort.Strings(ret)

	return ret
}
