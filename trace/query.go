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
	"time"

	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/data"
)

/*
Trace is a detached query result. It describes that a module element read a
model element and a set of its properties.
*/
type Trace struct {
	ID         string   `json:"id"`         // Surrogate id of the trace vertex
	ModuleID   string   `json:"module_id"`  // Module id of the reading module element
	ElementID  string   `json:"element_id"` // Element id of the read model element
	Properties []string `json:"properties"` // Sorted names of the accessed properties
}

/*
String returns a string representation of this trace.
*/
func (t *Trace) String() string {
	return fmt.Sprintf("Trace %v (%v -> %v %v)", t.ID, t.ModuleID, t.ElementID, t.Properties)
}

/*
FindTraces returns all traces in the context of a session which reach the
model element with a given element id. Returns an empty list if there are no
such traces.
*/
func (s *Store) FindTraces(session *Session, elementID string) ([]*Trace, error) {
	if session == nil || session.ContextID == "" {
		return nil, newError(ErrConfiguration, "No execution context", nil)
	}

	start := time.Now()

	nodes, err := graph.NewPipeline(s.gm, s.part).
		Start(session.ContextID, KindExecutionContext).
		Out(EdgeContains).As("trace").
		Out(EdgeReaches).Has(AttrElementID, elementID).
		Back("trace").
		Dedup().
		All()

	return s.materialize("element", start, nodes, err)
}

/*
FindTracesByProperty returns all traces in the context of a session which
reach the model element with a given element id and accessed a given property.
Returns an empty list if there are no such traces.
*/
func (s *Store) FindTracesByProperty(session *Session, elementID string,
	propertyName string) ([]*Trace, error) {

	if session == nil || session.ContextID == "" {
		return nil, newError(ErrConfiguration, "No execution context", nil)
	}

	start := time.Now()

	nodes, err := graph.NewPipeline(s.gm, s.part).
		Start(session.ContextID, KindExecutionContext).
		Out(EdgeContains).As("trace").
		Out(EdgeReaches).Has(AttrElementID, elementID).
		Back("trace").As("trace2").
		Out(EdgeAccesses).Has(AttrName, propertyName).
		Back("trace2").
		Dedup().
		All()

	return s.materialize("property", start, nodes, err)
}

/*
materialize converts the trace vertices of a query result into detached traces.
*/
func (s *Store) materialize(query string, start time.Time, nodes []data.Node, err error) ([]*Trace, error) {
	if err != nil {
		return nil, newError(ErrConnection, "Could not query traces", err)
	}

	res := make([]*Trace, 0, len(nodes))

	for _, node := range nodes {
		tr, err := wrapTrace(node)
		if err != nil {
			return nil, err
		}

		t, err := s.detach(tr)
		if err != nil {
			return nil, err
		}

		res = append(res, t)
	}

	metricQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	metricQueryResults.WithLabelValues(query).Observe(float64(len(res)))

	return res, nil
}

/*
detach reads the module element, the model element and the accessed
properties of a trace.
*/
func (s *Store) detach(tr *traceHandle) (*Trace, error) {
	ret := &Trace{ID: tr.ID(), Properties: []string{}}

	traverse := func(edgeKind string, kind string) ([]data.Node, error) {
		spec := fmt.Sprintf("%s:%s:%s:%s", data.RoleSource, edgeKind, data.RoleTarget, kind)

		nodes, _, err := s.gm.Traverse(s.part, tr.ID(), KindTrace, spec, true)
		if err != nil {
			return nil, newError(ErrConnection, "Could not read trace "+tr.ID(), err)
		}

		return nodes, nil
	}

	nodes, err := traverse(EdgeTraces, KindModuleElement)
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		me, err := wrapModuleElement(n)
		if err != nil {
			return nil, err
		}
		ret.ModuleID = me.moduleID
	}

	if nodes, err = traverse(EdgeReaches, KindModelElement); err != nil {
		return nil, err
	}

	for _, n := range nodes {
		el, err := wrapModelElement(n)
		if err != nil {
			return nil, err
		}
		ret.ElementID = el.elementID
	}

	if nodes, err = traverse(EdgeAccesses, KindProperty); err != nil {
		return nil, err
	}

	for _, n := range nodes {
		p, err := wrapProperty(n)
		if err != nil {
			return nil, err
		}
		ret.Properties = append(ret.Properties, p.name)
	}

	sort.Strings(ret.Properties)

	return ret, nil
}
