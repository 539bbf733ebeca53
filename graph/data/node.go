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
Package data contains classes and functions to handle graph data.

Nodes

Nodes are items stored in the graph. The graphNode object is the minimal
implementation of the Node interface and represents a simple node. Setting a
nil value to an attribute is equivalent to removing the attribute. An attribute
value can be any object which can be serialized by gob.

Edges

Edges are items stored in the graph. Edges connect nodes. Every edge has two
ends which have a key, a kind and a role. Directed edges use the role "source"
for the first end and the role "target" for the second end.
*/
package data

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

/*
Node models nodes in the graph
*/
type Node interface {

	/*
	   Key returns a potentially non human-readable unique key for this node.
	*/
	Key() string

	/*
	   Kind returns a human-readable kind for this node.
	*/
	Kind() string

	/*
		Data returns the node data of this node.
	*/
	Data() map[string]interface{}

	/*
		Attr returns an attribute of this node.
	*/
	Attr(attr string) interface{}

	/*
		SetAttr sets an attribute of this node. Setting a nil
		value removes the attribute.
	*/
	SetAttr(attr string, val interface{})

	/*
		IndexMap returns a representation of this node as a string map which
		can be used to provide a value index.
	*/
	IndexMap() map[string]string

	/*
	   String returns a string representation of this node.
	*/
	String() string
}

/*
NodeKey is the key attribute for a node
*/
const NodeKey = "key"

/*
NodeKind is the kind attribute for a node
*/
const NodeKind = "kind"

/*
graphNode data structure.
*/
type graphNode struct {
	data map[string]interface{} // Data which is held by this node
}

/*
NewGraphNode creates a new Node instance.
*/
func NewGraphNode() Node {
	return &graphNode{make(map[string]interface{})}
}

/*
NewGraphNodeFromMap creates a new Node instance.
*/
func NewGraphNodeFromMap(data map[string]interface{}) Node {
	return &graphNode{data}
}

/*
Key returns a potentially non human-readable unique key for this node.
*/
func (gn *graphNode) Key() string {
	return gn.stringAttr(NodeKey)
}

/*
Kind returns a human-readable kind for this node.
*/
func (gn *graphNode) Kind() string {
	return gn.stringAttr(NodeKind)
}

/*
Data returns the node data of this node.
*/
func (gn *graphNode) Data() map[string]interface{} {
	return gn.data
}

/*
Attr returns an attribute of this node.
*/
func (gn *graphNode) Attr(attr string) interface{} {
	return gn.data[attr]
}

/*
SetAttr sets an attribute of this node. Setting a nil
value removes the attribute.
*/
func (gn *graphNode) SetAttr(attr string, val interface{}) {
	if val != nil {
		gn.data[attr] = val
	} else {
		delete(gn.data, attr)
	}
}

/*
stringAttr returns the value of an attribute as a string or an empty string
if it can't be represented as a string.
*/
func (gn *graphNode) stringAttr(attr string) string {
	val, found := gn.data[attr]

	if st, ok := val.(string); found && ok {
		return st
	} else if st, ok := val.(fmt.Stringer); found && ok {
		return st.String()
	}

	return ""
}

/*
IndexMap returns a representation of this node as a string map which
can be used to provide a value index.
*/
func (gn *graphNode) IndexMap() map[string]string {
	return createIndexMap(gn, func(attr string) bool {
		return attr == NodeKey || attr == NodeKind
	})
}

/*
createIndexMap creates a representation of a node as a string map. A filter
function can be specified to filters out specific attributes.
*/
func createIndexMap(gn *graphNode, attFilter func(attr string) bool) map[string]string {
	ret := make(map[string]string)

	for attr, val := range gn.data {

		if attFilter(attr) {
			continue
		}

		// Only plain values are indexed

		switch v := val.(type) {
		case string:
			ret[attr] = v
		case fmt.Stringer:
			ret[attr] = v.String()
		case bool, int, int64, float64:
			ret[attr] = fmt.Sprint(v)
		}
	}

	return ret
}

/*
String returns a string representation of this node.
*/
func (gn *graphNode) String() string {
	return dataToString("GraphNode", gn)
}

/*
dataToString returns a string representation of a data item.
*/
func dataToString(dataType string, gn *graphNode) string {
	var buf bytes.Buffer
	attrlist := make([]string, 0, len(gn.data))
	maxlen := len(NodeKind)

	for attr := range gn.data {
		attrlist = append(attrlist, attr)
		if alen := len(attr); alen > maxlen {
			maxlen = alen
		}
	}

	sort.StringSlice(attrlist).Sort()

	buf.WriteString(dataType + ":\n")

	buf.WriteString(fmt.Sprintf("    %"+
		strconv.Itoa(maxlen)+"v : %v\n", NodeKey, gn.Key()))
	buf.WriteString(fmt.Sprintf("    %"+
		strconv.Itoa(maxlen)+"v : %v\n", NodeKind, gn.Kind()))

	for _, attr := range attrlist {
		if attr == NodeKey || attr == NodeKind {
			continue
		}
		buf.WriteString(fmt.Sprintf("    %"+
			strconv.Itoa(maxlen)+"v : %v\n", attr, gn.data[attr]))
	}

	return buf.String()
}
