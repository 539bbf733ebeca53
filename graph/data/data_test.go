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

import (
	"fmt"
	"testing"
)

func TestGraphNode(t *testing.T) {
	node := NewGraphNode()

	node.SetAttr(NodeKey, "123")
	node.SetAttr(NodeKind, "ModelElement")
	node.SetAttr("element_id", "e1")
	node.SetAttr("models_ids", []string{"m1", "m2"})

	if node.Key() != "123" || node.Kind() != "ModelElement" {
		t.Error("Unexpected key or kind:", node.Key(), node.Kind())
		return
	}

	if res := fmt.Sprint(node.IndexMap()); res != "map[element_id:e1]" {
		t.Error("Unexpected index map:", res)
		return
	}

	if node.String() != `GraphNode:
           key : 123
          kind : ModelElement
    element_id : e1
    models_ids : [m1 m2]
` {
		t.Error("Unexpected string output:", node.String())
		return
	}

	node.SetAttr("element_id", nil)

	if node.Attr("element_id") != nil {
		t.Error("Attribute should have been removed")
		return
	}

	same := NewGraphNode()
	for k, v := range node.Data() {
		same.SetAttr(k, v)
	}

	if !NodeCompare(node, same, nil) || !NodeCompare(node, same, []string{NodeKey, "element_id"}) {
		t.Error("Nodes should be equal")
		return
	}

	merged := NodeMerge(node, NewGraphNodeFromMap(map[string]interface{}{"name": "x"}))

	if merged.Attr("name") != "x" || merged.Key() != "123" {
		t.Error("Unexpected merge result:", merged)
		return
	}

	if NodeCompare(node, merged, nil) {
		t.Error("Nodes should differ")
		return
	}
}

func TestDirectedEdge(t *testing.T) {
	src := NewGraphNodeFromMap(map[string]interface{}{NodeKey: "t1", NodeKind: "Trace"})
	dst := NewGraphNodeFromMap(map[string]interface{}{NodeKey: "p1", NodeKind: "Property"})

	edge := NewDirectedEdge("e1", "ACCESSES", src, dst)

	if res := edge.Spec("t1"); res != "source:ACCESSES:target:Property" {
		t.Error("Unexpected spec:", res)
		return
	}

	if res := edge.Spec("p1"); res != "target:ACCESSES:source:Trace" {
		t.Error("Unexpected spec:", res)
		return
	}

	if res := edge.Spec("x"); res != "" {
		t.Error("Unexpected spec:", res)
		return
	}

	if edge.OtherEndKey("t1") != "p1" || edge.OtherEndKind("t1") != "Property" ||
		edge.OtherEndKey("p1") != "t1" || edge.OtherEndKind("p1") != "Trace" ||
		edge.OtherEndKey("x") != "" || edge.OtherEndKind("x") != "" {
		t.Error("Unexpected other end results")
		return
	}

	if len(edge.IndexMap()) != 0 {
		t.Error("Unexpected index map:", edge.IndexMap())
		return
	}

	if NewGraphEdgeFromNode(nil) != nil {
		t.Error("Nil node should give nil edge")
		return
	}
}
