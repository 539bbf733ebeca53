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

	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/data"
)

/*
acquireModuleElement returns the ModuleElement with a given module id of the
context of a session. The vertex and its FOR edge are created if they do not
exist.
*/
func (s *Store) acquireModuleElement(session *Session, moduleID string) (*moduleElementHandle, error) {
	node, err := s.acquireContextChild(session, EdgeFor, KindModuleElement, AttrModuleID, moduleID)
	if err != nil {
		return nil, err
	}

	return wrapModuleElement(node)
}

/*
acquireModelElement returns the ModelElement with a given element id of the
context of a session. The vertex and its INVOLVES edge are created if they do
not exist.
*/
func (s *Store) acquireModelElement(session *Session, elementID string) (*modelElementHandle, error) {
	node, err := s.acquireContextChild(session, EdgeInvolves, KindModelElement, AttrElementID, elementID)
	if err != nil {
		return nil, err
	}

	return wrapModelElement(node)
}

/*
acquireContextChild looks up a vertex which is connected to the context of a
session through an edge of a given kind and has a given natural key. If no
such vertex exists then the vertex and the edge are created in a single
transaction.
*/
func (s *Store) acquireContextChild(session *Session, edgeKind string, kind string,
	attr string, value string) (data.Node, error) {

	node, err := graph.NewPipeline(s.gm, s.part).
		Start(session.ContextID, KindExecutionContext).
		Out(edgeKind).
		Has(attr, value).
		First()

	if err != nil {
		metricAcquire.WithLabelValues(kind, "failed").Inc()
		return nil, newError(ErrConnection, fmt.Sprintf("Could not lookup %v %v", kind, value), err)
	}

	if node != nil {
		metricAcquire.WithLabelValues(kind, "found").Inc()
		return node, nil
	}

	// Create the vertex and link it to the context

	node = newVertex(kind)
	node.SetAttr(attr, value)

	trans := graph.NewGraphTrans(s.gm)

	if err = trans.StoreNode(s.part, node); err == nil {
		err = trans.StoreEdge(s.part, newEdge(edgeKind, s.contextNode(session), node))
	}

	if err != nil {
		trans.Rollback()
		err = newError(ErrStoreWrite, "Could not create "+kind, err)
	} else {
		err = s.commit(trans, kind)
	}

	if err != nil {
		metricAcquire.WithLabelValues(kind, "failed").Inc()
		return nil, err
	}

	metricAcquire.WithLabelValues(kind, "created").Inc()
	LogDebug("Created ", kind, " ", node.Key(), " (", attr, ": ", value, ")")

	return node, nil
}
