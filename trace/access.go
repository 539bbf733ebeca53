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
	"errors"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/tracestore/graph"
)

/*
RecordAccess records that a module element read a property of a model element
in the context of a session. Returns true if the access was newly recorded
and false if it was already known.
*/
func (s *Store) RecordAccess(session *Session, moduleID string, elementID string,
	propertyName string) (bool, error) {

	tr, el, err := s.resolveTrace(session, moduleID, elementID)
	if err != nil {
		return false, err
	}

	return s.recordAccess(tr, el, propertyName)
}

/*
RecordAccesses records that a module element read a list of properties of a
model element in the context of a session. The module element, model element
and trace are resolved once. Every property is attempted even if an earlier
one fails. Returns true if all accesses were successfully handled (a property
which was already recorded counts as success). Errors of individual properties
are collected.
*/
func (s *Store) RecordAccesses(session *Session, moduleID string, elementID string,
	propertyNames []string) (bool, error) {

	tr, el, err := s.resolveTrace(session, moduleID, elementID)
	if err != nil {
		return false, err
	}

	var errType error

	ce := errorutil.NewCompositeError()

	for _, name := range propertyNames {
		if _, err := s.recordAccess(tr, el, name); err != nil {
			var terr *Error

			if errType == nil && errors.As(err, &terr) {
				errType = terr.Type
			}

			ce.Add(err)
		}
	}

	if ce.HasErrors() {
		if errType == nil {
			errType = ErrStoreWrite
		}

		return false, newError(errType, "Could not record all accesses", ce)
	}

	return true, nil
}

/*
resolveTrace acquires the module element, the model element and the trace
which links them.
*/
func (s *Store) resolveTrace(session *Session, moduleID string,
	elementID string) (*traceHandle, *modelElementHandle, error) {

	if session == nil || session.ContextID == "" {
		return nil, nil, newError(ErrConfiguration, "No execution context", nil)
	}

	me, err := s.acquireModuleElement(session, moduleID)
	if err != nil {
		return nil, nil, err
	}

	el, err := s.acquireModelElement(session, elementID)
	if err != nil {
		return nil, nil, err
	}

	tr, err := s.acquireTrace(session, me, el)

	return tr, el, err
}

/*
recordAccess records an access of a named property through a trace. A fresh
Property vertex is created for every trace which accesses a property. The
vertex is linked from the trace (ACCESSES) and from the model element (OWNS)
in a single transaction.
*/
func (s *Store) recordAccess(tr *traceHandle, el *modelElementHandle, propertyName string) (bool, error) {

	node, err := graph.NewPipeline(s.gm, s.part).
		Start(tr.ID(), KindTrace).
		Out(EdgeAccesses).
		Has(AttrName, propertyName).
		First()

	if err != nil {
		metricAccess.WithLabelValues("failed").Inc()
		return false, newError(ErrConnection, "Could not lookup property "+propertyName, err)
	}

	if node != nil {
		if _, err = wrapProperty(node); err != nil {
			metricAccess.WithLabelValues("failed").Inc()
			return false, err
		}

		metricAccess.WithLabelValues("known").Inc()
		return false, nil
	}

	node = newVertex(KindProperty)
	node.SetAttr(AttrName, propertyName)

	trans := graph.NewGraphTrans(s.gm)

	if err = trans.StoreNode(s.part, node); err == nil {
		if err = trans.StoreEdge(s.part, newEdge(EdgeAccesses, tr.node(), node)); err == nil {
			err = trans.StoreEdge(s.part, newEdge(EdgeOwns, el.node(), node))
		}
	}

	if err != nil {
		trans.Rollback()
		err = newError(ErrStoreWrite, "Could not create "+KindProperty, err)
	} else {
		err = s.commit(trans, KindProperty)
	}

	if err != nil {
		metricAccess.WithLabelValues("failed").Inc()
		return false, err
	}

	metricAccess.WithLabelValues("recorded").Inc()

	return true, nil
}
