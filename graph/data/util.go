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
NodeCompare checks if two nodes have the same values for a list of attributes.
Values are compared by their string representation. All attributes are
compared if no list is given.
*/
func NodeCompare(node1 Node, node2 Node, attrs []string) bool {
	if attrs == nil {
		if len(node1.Data()) != len(node2.Data()) {
			return false
		}

		for attr := range node1.Data() {
			attrs = append(attrs, attr)
		}
	}

	for _, attr := range attrs {
		if fmt.Sprint(node1.Attr(attr)) != fmt.Sprint(node2.Attr(attr)) {
			return false
		}
	}

	return true
}

/*
NodeMerge returns a new node with the attributes of node1 overlaid by the
attributes of node2. Values are shared with the given nodes.
*/
func NodeMerge(node1 Node, node2 Node) Node {
	merged := make(map[string]interface{}, len(node1.Data())+len(node2.Data()))

	for _, n := range []Node{node1, node2} {
		for k, v := range n.Data() {
			merged[k] = v
		}
	}

	return &graphNode{merged}
}
