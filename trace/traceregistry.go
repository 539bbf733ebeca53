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
	"github.com/krotik/tracestore/graph"
)

/*
getTrace looks up the Trace which links a module element and a model element
in the context of a session. Returns nil if there is no such trace.

The lookup walks from the context to the model element, then against the
REACHES edges to all traces of the model element and keeps the trace whose
TRACES edge points at the module element. Vertices are compared by their
surrogate id.
*/
func (s *Store) getTrace(session *Session, me *moduleElementHandle, el *modelElementHandle) (*traceHandle, error) {

	node, err := graph.NewPipeline(s.gm, s.part).
		Start(session.ContextID, KindExecutionContext).
		Out(EdgeInvolves).
		HasKey(el.ID()).
		In(EdgeReaches).
		FilterPipeline(func(sp *graph.Pipeline) *graph.Pipeline {
			return sp.Out(EdgeTraces).HasKey(me.ID())
		}).
		First()

	if err != nil {
		return nil, newError(ErrConnection, "Could not lookup trace", err)
	} else if node == nil {
		return nil, nil
	}

	return wrapTrace(node)
}

/*
acquireTrace returns the Trace which links a module element and a model element
in the context of a session. If no such trace exists then the trace vertex is
created together with its TRACES, REACHES and CONTAINS edges in a single
transaction.
*/
func (s *Store) acquireTrace(session *Session, me *moduleElementHandle, el *modelElementHandle) (*traceHandle, error) {

	tr, err := s.getTrace(session, me, el)
	if err != nil || tr != nil {
		if err != nil {
			metricAcquire.WithLabelValues(KindTrace, "failed").Inc()
		} else {
			metricAcquire.WithLabelValues(KindTrace, "found").Inc()
		}
		return tr, err
	}

	node := newVertex(KindTrace)

	trans := graph.NewGraphTrans(s.gm)

	if err = trans.StoreNode(s.part, node); err == nil {
		if err = trans.StoreEdge(s.part, newEdge(EdgeTraces, node, me.node())); err == nil {
			if err = trans.StoreEdge(s.part, newEdge(EdgeReaches, node, el.node())); err == nil {
				err = trans.StoreEdge(s.part, newEdge(EdgeContains, s.contextNode(session), node))
			}
		}
	}

	if err != nil {
		trans.Rollback()
		err = newError(ErrStoreWrite, "Could not create "+KindTrace, err)
	} else {
		err = s.commit(trans, KindTrace)
	}

	if err != nil {
		metricAcquire.WithLabelValues(KindTrace, "failed").Inc()
		return nil, err
	}

	metricAcquire.WithLabelValues(KindTrace, "created").Inc()
	LogDebug("Created ", KindTrace, " ", node.Key(), " (", me.moduleID, " -> ", el.elementID, ")")

	return wrapTrace(node)
}
