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
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/graphstorage"
	"github.com/krotik/tracestore/graph/util"
)

/*
newGraphManagerNoRules returns a new GraphManager instance without loading rules.
*/
func newGraphManagerNoRules(gs graphstorage.Storage) *Manager {
	return createGraphManager(gs)
}

func newTestNode(key string, kind string, name string) data.Node {
	node := data.NewGraphNode()

	node.SetAttr(data.NodeKey, key)
	node.SetAttr(data.NodeKind, kind)
	node.SetAttr("name", name)

	return node
}

func nodeKeys(nodes []data.Node) string {
	var keys []string
	for _, n := range nodes {
		keys = append(keys, n.Key())
	}
	return fmt.Sprint(keys)
}

func storeNode(gm *Manager, part string, node data.Node) error {
	trans := NewGraphTrans(gm)

	if err := trans.StoreNode(part, node); err != nil {
		return err
	}

	return trans.Commit()
}

func updateNode(gm *Manager, part string, node data.Node) error {
	trans := NewGraphTrans(gm)

	if err := trans.UpdateNode(part, node); err != nil {
		return err
	}

	return trans.Commit()
}

func storeEdge(gm *Manager, part string, edge data.Edge) error {
	trans := NewGraphTrans(gm)

	if err := trans.StoreEdge(part, edge); err != nil {
		return err
	}

	return trans.Commit()
}

func TestNodeOperations(t *testing.T) {
	mgs := graphstorage.NewMemoryGraphStorage("mystorage")
	gm := NewGraphManager(mgs)

	if gm.Name() != "Graph mystorage" {
		t.Error("Unexpected name:", gm.Name())
		return
	}

	if gm.Storage() != mgs {
		t.Error("Unexpected storage")
		return
	}

	if res := fmt.Sprint(gm.GraphRules()); res != "[system.updatenodestats]" {
		t.Error("Unexpected rules:", res)
		return
	}

	if node, err := gm.FetchNode("main", "a", "Person"); node != nil || err != nil {
		t.Error("Unexpected result:", node, err)
		return
	}

	if err := storeNode(gm, "main", newTestNode("a", "Person", "Alice")); err != nil {
		t.Error(err)
		return
	}

	if err := storeNode(gm, "main", newTestNode("b", "Person", "Bob")); err != nil {
		t.Error(err)
		return
	}

	if c := gm.NodeCount("Person"); c != 2 {
		t.Error("Unexpected node count:", c)
		return
	}

	node, err := gm.FetchNode("main", "a", "Person")
	if err != nil || node.Attr("name") != "Alice" || node.Key() != "a" || node.Kind() != "Person" {
		t.Error("Unexpected result:", node, err)
		return
	}

	// Update only adds the given attributes

	upd := data.NewGraphNode()
	upd.SetAttr(data.NodeKey, "a")
	upd.SetAttr(data.NodeKind, "Person")
	upd.SetAttr("age", 42)

	if err := updateNode(gm, "main", upd); err != nil {
		t.Error(err)
		return
	}

	node, _ = gm.FetchNode("main", "a", "Person")
	if node.Attr("name") != "Alice" || fmt.Sprint(node.Attr("age")) != "42" {
		t.Error("Unexpected result:", node)
		return
	}

	if c := gm.NodeCount("Person"); c != 2 {
		t.Error("Unexpected node count:", c)
		return
	}

	// Store replaces the node

	if err := storeNode(gm, "main", newTestNode("a", "Person", "Alicia")); err != nil {
		t.Error(err)
		return
	}

	node, _ = gm.FetchNode("main", "a", "Person")
	if node.Attr("name") != "Alicia" || node.Attr("age") != nil {
		t.Error("Unexpected result:", node)
		return
	}

	nodes, err := gm.FetchNodes("main", []string{"b", "x", "a"}, "Person")
	if err != nil || nodeKeys(nodes) != "[b a]" {
		t.Error("Unexpected result:", nodes, err)
		return
	}

	// Check invalid data

	if err := storeNode(gm, "ma in", newTestNode("c", "Person", "C")); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := storeNode(gm, "main", newTestNode("", "Person", "C")); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := storeNode(gm, "main", newTestNode("c", "Per son", "C")); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	// Check the stats

	if res := fmt.Sprint(gm.NodeKinds()); res != "[Person]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(gm.NodeAttrs("Person")); res != "[age key kind name]" {
		t.Error("Unexpected result:", res)
		return
	}

	// Iterate over all keys

	it, err := gm.NodeKeyIterator("main", "Person")
	if err != nil {
		t.Error(err)
		return
	}

	var keys []string
	for it.HasNext() {
		keys = append(keys, it.Next())
	}

	if res := fmt.Sprint(keys); res != "[a b]" || it.Error() != nil || it.Next() != "" {
		t.Error("Unexpected result:", res, it.Error())
		return
	}

	if it, err := gm.NodeKeyIterator("main", "Animal"); it != nil || err != nil {
		t.Error("Unexpected result:", it, err)
		return
	}

	// Query the index

	iq, err := gm.NodeIndexQuery("main", "Person")
	if err != nil {
		t.Error(err)
		return
	}

	if res, err := iq.LookupValue("name", "Bob"); fmt.Sprint(res) != "[b]" || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := iq.LookupValue("name", "Alice"); len(res) != 0 || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := iq.Count("name", "Alicia"); res != 1 || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if iq, err := gm.NodeIndexQuery("main", "Animal"); iq != nil || err != nil {
		t.Error("Unexpected result:", iq, err)
		return
	}

	// User entries

	if _, ok := gm.UserEntry("owner"); ok {
		t.Error("Entry should not exist")
		return
	}

	if err := gm.SetUserEntry("owner", "tester"); err != nil {
		t.Error(err)
		return
	}

	if val, ok := gm.UserEntry("owner"); !ok || val != "tester" {
		t.Error("Unexpected result:", val, ok)
		return
	}
}

func TestEdgeOperations(t *testing.T) {
	mgs := graphstorage.NewMemoryGraphStorage("mystorage")
	gm := NewGraphManager(mgs)

	a := newTestNode("a", "Person", "Alice")
	b := newTestNode("b", "Person", "Bob")
	c := newTestNode("c", "City", "Berlin")

	for _, n := range []data.Node{a, b} {
		if err := storeNode(gm, "main", n); err != nil {
			t.Error(err)
			return
		}
	}

	// City kind does not exist yet

	if err := storeEdge(gm, "main", data.NewDirectedEdge("e1", "LIVESIN", a, c)); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := storeNode(gm, "main", c); err != nil {
		t.Error(err)
		return
	}

	// Endpoint does not exist

	if err := storeEdge(gm, "main", data.NewDirectedEdge("e1", "LIVESIN", newTestNode("x", "Person", "X"), c)); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := storeEdge(gm, "main", data.NewDirectedEdge("e1", "LIVESIN", a, c)); err != nil {
		t.Error(err)
		return
	}

	if err := storeEdge(gm, "main", data.NewDirectedEdge("e2", "KNOWS", a, b)); err != nil {
		t.Error(err)
		return
	}

	if c := gm.EdgeCount("LIVESIN"); c != 1 {
		t.Error("Unexpected edge count:", c)
		return
	}

	livesIn := func() data.Edge {
		_, edges, err := gm.Traverse("main", "a", "Person", "source:LIVESIN:target:City", false)
		if err != nil || len(edges) != 1 {
			t.Error("Unexpected result:", edges, err)
			return nil
		}
		return edges[0]
	}

	edge := livesIn()
	if edge == nil || edge.Key() != "e1" || edge.End1Key() != "a" || edge.End2Key() != "c" ||
		edge.End1Role() != data.RoleSource {
		t.Error("Unexpected result:", edge)
		return
	}

	// Traverse in both directions

	nodes, edges, err := gm.Traverse("main", "a", "Person", "source:LIVESIN:target:City", true)
	if err != nil || len(nodes) != 1 || nodes[0].Attr("name") != "Berlin" || edges[0].End1Key() != "a" {
		t.Error("Unexpected result:", nodes, edges, err)
		return
	}

	nodes, edges, err = gm.Traverse("main", "c", "City", "target:LIVESIN:source:Person", true)
	if err != nil || len(nodes) != 1 || nodes[0].Attr("name") != "Alice" ||
		edges[0].End1Key() != "c" || edges[0].End1Role() != data.RoleTarget {
		t.Error("Unexpected result:", nodes, edges, err)
		return
	}

	nodes, edges, err = gm.Traverse("main", "c", "City", "target:LIVESIN:source:Person", false)
	if err != nil || nodeKeys(nodes) != "[a]" || nodes[0].Attr("name") != nil || edges[0].Key() != "e1" {
		t.Error("Unexpected result:", nodes, edges, err)
		return
	}

	if _, _, err := gm.Traverse("main", "a", "Person", "source:LIVESIN::", true); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, _, err := gm.TraverseMulti("main", "a", "Person", "source:LIVESIN", true); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if nodes, _, err := gm.TraverseMulti("main", "a", "Person", ":::", false); err != nil || nodeKeys(nodes) != "[b c]" {
		t.Error("Unexpected result:", nodes, err)
		return
	}

	if nodes, _, err := gm.TraverseMulti("main", "a", "Person", "source:KNOWS::", false); err != nil || nodeKeys(nodes) != "[b]" {
		t.Error("Unexpected result:", nodes, err)
		return
	}

	if nodes, _, err := gm.TraverseMulti("main", "a", "Person", "target:::", false); err != nil || len(nodes) != 0 {
		t.Error("Unexpected result:", nodes, err)
		return
	}

	// Edges can be updated but not moved

	e1 := data.NewDirectedEdge("e1", "LIVESIN", a, c)
	e1.SetAttr("since", 2020)

	if err := storeEdge(gm, "main", e1); err != nil {
		t.Error(err)
		return
	}

	if edge := livesIn(); edge == nil || fmt.Sprint(edge.Attr("since")) != "2020" {
		t.Error("Unexpected result:", edge)
		return
	}

	if c := gm.EdgeCount("LIVESIN"); c != 1 {
		t.Error("Unexpected edge count:", c)
		return
	}

	if err := storeEdge(gm, "main", data.NewDirectedEdge("e1", "LIVESIN", b, c)); !errors.Is(err, util.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if edge := livesIn(); edge == nil || edge.End1Key() != "a" {
		t.Error("Unexpected result:", edge)
		return
	}

	// Check the stats

	if res := fmt.Sprint(gm.EdgeKinds()); res != "[KNOWS LIVESIN]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(gm.NodeEdges("Person")); res != "[source:KNOWS:target:Person source:LIVESIN:target:City target:KNOWS:source:Person]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(gm.EdgeAttrs("LIVESIN")); res != "[end1key end1kind end1role end2key end2kind end2role key kind since]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestPersistentGraphManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	gs, err := graphstorage.NewBadgerGraphStorage("test", dir, false)
	if err != nil {
		t.Error(err)
		return
	}

	gm := NewGraphManager(gs)

	a := newTestNode("a", "Person", "Alice")
	c := newTestNode("c", "City", "Berlin")

	trans := NewGraphTrans(gm)
	trans.StoreNode("main", a)
	trans.StoreNode("main", c)
	trans.StoreEdge("main", data.NewDirectedEdge("e1", "LIVESIN", a, c))

	if err := trans.Commit(); err != nil {
		t.Error(err)
		return
	}

	if err := gs.Close(); err != nil {
		t.Error(err)
		return
	}

	// Reopen and check that everything is there

	gs, err = graphstorage.NewBadgerGraphStorage("test", dir, false)
	if err != nil {
		t.Error(err)
		return
	}
	defer gs.Close()

	gm = NewGraphManager(gs)

	if c := gm.NodeCount("Person"); c != 1 {
		t.Error("Unexpected node count:", c)
		return
	}

	nodes, _, err := gm.Traverse("main", "a", "Person", "source:LIVESIN:target:City", true)
	if err != nil || len(nodes) != 1 || nodes[0].Attr("name") != "Berlin" {
		t.Error("Unexpected result:", nodes, err)
		return
	}

	iq, _ := gm.NodeIndexQuery("main", "Person")
	if res, err := iq.LookupValue("name", "Alice"); fmt.Sprint(res) != "[a]" || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}
}
