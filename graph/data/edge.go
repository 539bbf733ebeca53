/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package data

import "fmt"

/*
Edge models edges in the graph
*/
type Edge interface {
	Node

	/*
		End1Key returns the key of the first end of this edge.
	*/
	End1Key() string

	/*
		End1Kind returns the kind of the first end of this edge.
	*/
	End1Kind() string

	/*
		End1Role returns the role of the first end of this edge.
	*/
	End1Role() string

	/*
		End2Key returns the key of the second end of this edge.
	*/
	End2Key() string

	/*
		End2Kind returns the kind of the second end of this edge.
	*/
	End2Kind() string

	/*
		End2Role returns the role of the second end of this edge.
	*/
	End2Role() string

	/*
		Spec returns the spec for this edge from the view of a specified endpoint.
		A spec is always of the form: <End Role>:<Kind>:<End Role>:<Other node kind>
	*/
	Spec(key string) string

	/*
		OtherEndKey returns the key of the endpoint which is on the other side
		from the given key.
	*/
	OtherEndKey(key string) string

	/*
		OtherEndKind returns the kind of the endpoint which is on the other side
		from the given key.
	*/
	OtherEndKind(key string) string
}

/*
EdgeEnd1Key is the key of the first end
*/
const EdgeEnd1Key = "end1key"

/*
EdgeEnd1Kind is the kind of the first end
*/
const EdgeEnd1Kind = "end1kind"

/*
EdgeEnd1Role is the role of the first end
*/
const EdgeEnd1Role = "end1role"

/*
EdgeEnd2Key is the key of the second end
*/
const EdgeEnd2Key = "end2key"

/*
EdgeEnd2Kind is the kind of the second end
*/
const EdgeEnd2Kind = "end2kind"

/*
EdgeEnd2Role is the role of the second end
*/
const EdgeEnd2Role = "end2role"

/*
RoleSource is the role of the first end of a directed edge
*/
const RoleSource = "source"

/*
RoleTarget is the role of the second end of a directed edge
*/
const RoleTarget = "target"

/*
graphEdge data structure.
*/
type graphEdge struct {
	*graphNode
}

/*
NewGraphEdge creates a new Edge instance.
*/
func NewGraphEdge() Edge {
	return &graphEdge{&graphNode{make(map[string]interface{})}}
}

/*
NewGraphEdgeFromNode creates a new Edge instance.
*/
func NewGraphEdgeFromNode(node Node) Edge {
	if node == nil {
		return nil
	}
	return &graphEdge{&graphNode{node.Data()}}
}

/*
NewDirectedEdge creates a new edge of a given kind which points from a
source node to a target node.
*/
func NewDirectedEdge(key string, kind string, source Node, target Node) Edge {
	edge := NewGraphEdge()

	edge.SetAttr(NodeKey, key)
	edge.SetAttr(NodeKind, kind)

	edge.SetAttr(EdgeEnd1Key, source.Key())
	edge.SetAttr(EdgeEnd1Kind, source.Kind())
	edge.SetAttr(EdgeEnd1Role, RoleSource)

	edge.SetAttr(EdgeEnd2Key, target.Key())
	edge.SetAttr(EdgeEnd2Kind, target.Kind())
	edge.SetAttr(EdgeEnd2Role, RoleTarget)

	return edge
}

/*
End1Key returns the key of the first end of this edge.
*/
func (ge *graphEdge) End1Key() string {
	return ge.stringAttr(EdgeEnd1Key)
}

/*
End1Kind returns the kind of the first end of this edge.
*/
func (ge *graphEdge) End1Kind() string {
	return ge.stringAttr(EdgeEnd1Kind)
}

/*
End1Role returns the role of the first end of this edge.
*/
func (ge *graphEdge) End1Role() string {
	return ge.stringAttr(EdgeEnd1Role)
}

/*
End2Key returns the key of the second end of this edge.
*/
func (ge *graphEdge) End2Key() string {
	return ge.stringAttr(EdgeEnd2Key)
}

/*
End2Kind returns the kind of the second end of this edge.
*/
func (ge *graphEdge) End2Kind() string {
	return ge.stringAttr(EdgeEnd2Kind)
}

/*
End2Role returns the role of the second end of this edge.
*/
func (ge *graphEdge) End2Role() string {
	return ge.stringAttr(EdgeEnd2Role)
}

/*
Spec returns the spec for this edge from the view of a specified endpoint.
A spec is always of the form: <End Role>:<Kind>:<End Role>:<Other node kind>
*/
func (ge *graphEdge) Spec(key string) string {
	if key == ge.End1Key() {
		return fmt.Sprintf("%s:%s:%s:%s", ge.End1Role(), ge.Kind(), ge.End2Role(), ge.End2Kind())
	} else if key == ge.End2Key() {
		return fmt.Sprintf("%s:%s:%s:%s", ge.End2Role(), ge.Kind(), ge.End1Role(), ge.End1Kind())
	}
	return ""
}

/*
OtherEndKey returns the key of the endpoint which is on the other side
from the given key.
*/
func (ge *graphEdge) OtherEndKey(key string) string {
	if key == ge.End1Key() {
		return ge.End2Key()
	} else if key == ge.End2Key() {
		return ge.End1Key()
	}
	return ""
}

/*
OtherEndKind returns the kind of the endpoint which is on the other side
from the given key.
*/
func (ge *graphEdge) OtherEndKind(key string) string {
	if key == ge.End1Key() {
		return ge.End2Kind()
	} else if key == ge.End2Key() {
		return ge.End1Kind()
	}
	return ""
}

/*
IndexMap returns a representation of this edge as a string map which
can be used to provide a value index.
*/
func (ge *graphEdge) IndexMap() map[string]string {
	return createIndexMap(ge.graphNode, func(attr string) bool {
		return attr == NodeKey || attr == NodeKind || attr == EdgeEnd1Key ||
			attr == EdgeEnd1Kind || attr == EdgeEnd1Role ||
			attr == EdgeEnd2Key || attr == EdgeEnd2Kind || attr == EdgeEnd2Role
	})
}

/*
String returns a string representation of this edge.
*/
func (ge *graphEdge) String() string {
	return dataToString("GraphEdge", ge.graphNode)
}
