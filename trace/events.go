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
	"strings"

	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/data"
)

/*
Trace store event types
*/
const (
	EventContextCreated       = "context.created"
	EventModuleElementCreated = "module.created"
	EventModelElementCreated  = "element.created"
	EventTraceCreated         = "trace.created"
	EventAccessRecorded       = "access.recorded"
)

/*
Event describes a fact which was recorded in the trace store.
*/
type Event struct {
	Type  string            `json:"type"`  // Type of the event
	ID    string            `json:"id"`    // Surrogate id of the created vertex
	Attrs map[string]string `json:"attrs"` // Natural keys describing the vertex
}

/*
String returns a string representation of this event.
*/
func (e *Event) String() string {
	return fmt.Sprintf("%v %v %v", e.Type, e.ID, e.Attrs)
}

/*
EventListener is notified with all events of a committed graph transaction.
Listeners are called while the graph is locked for writing and must not write
to the trace store themselves.
*/
type EventListener func(events []*Event)

/*
EventRule is a graph rule which derives trace store events from committed
graph transactions and passes them to a listener.
*/
type EventRule struct {
	name     string        // Name of the rule
	part     string        // Partition of the trace graph
	listener EventListener // Listener for events
}

/*
NewEventRule creates a new event rule for a partition of a trace graph.
*/
func NewEventRule(name string, part string, listener EventListener) *EventRule {
	return &EventRule{name, part, listener}
}

/*
Name returns the name of the rule.
*/
func (r *EventRule) Name() string {
	return r.name
}

/*
Handles returns a list of events which are handled by this rule.
*/
func (r *EventRule) Handles() []int {
	return []int{graph.EventTransCommitted}
}

/*
Handle handles an event.
*/
func (r *EventRule) Handle(gm *graph.Manager, trans graph.Trans, event int, ed ...interface{}) error {
	nodes, _ := ed[0].([]data.Node)
	edges, _ := ed[1].([]data.Edge)

	events, err := commitEvents(gm, r.part, nodes, edges)

	if len(events) > 0 {
		r.listener(events)
	}

	return err
}

/*
commitEvents derives trace store events from the nodes and edges of a
committed transaction.
*/
func commitEvents(gm *graph.Manager, part string, nodes []data.Node, edges []data.Edge) ([]*Event, error) {
	var events []*Event

	// Lookup the natural key of a vertex which is connected to a trace

	lookup := func(traceKey string, edgeKind string, kind string, attr string) (string, error) {
		spec := fmt.Sprintf("%s:%s:%s:%s", data.RoleSource, edgeKind, data.RoleTarget, kind)

		res, _, err := gm.Traverse(part, traceKey, KindTrace, spec, true)
		if err != nil || len(res) == 0 {
			return "", err
		}

		return fmt.Sprint(res[0].Attr(attr)), nil
	}

	traceAttrs := func(traceKey string) (map[string]string, error) {
		moduleID, err := lookup(traceKey, EdgeTraces, KindModuleElement, AttrModuleID)
		if err != nil {
			return nil, err
		}

		elementID, err := lookup(traceKey, EdgeReaches, KindModelElement, AttrElementID)
		if err != nil {
			return nil, err
		}

		return map[string]string{AttrModuleID: moduleID, AttrElementID: elementID}, nil
	}

	for _, node := range nodes {
		var ev *Event

		switch node.Kind() {

		case KindExecutionContext:
			modelIDs, _ := stringListAttr(node, AttrModelsIDs)
			ev = &Event{EventContextCreated, node.Key(), map[string]string{
				AttrScriptID:  fmt.Sprint(node.Attr(AttrScriptID)),
				AttrModelsIDs: strings.Join(modelIDs, ","),
			}}

		case KindModuleElement:
			ev = &Event{EventModuleElementCreated, node.Key(), map[string]string{
				AttrModuleID: fmt.Sprint(node.Attr(AttrModuleID)),
			}}

		case KindModelElement:
			ev = &Event{EventModelElementCreated, node.Key(), map[string]string{
				AttrElementID: fmt.Sprint(node.Attr(AttrElementID)),
			}}

		case KindTrace:
			attrs, err := traceAttrs(node.Key())
			if err != nil {
				return events, err
			}
			ev = &Event{EventTraceCreated, node.Key(), attrs}
		}

		if ev != nil {
			events = append(events, ev)
		}
	}

	for _, edge := range edges {
		if edge.Kind() != EdgeAccesses {
			continue
		}

		attrs, err := traceAttrs(edge.End1Key())
		if err != nil {
			return events, err
		}

		prop, err := gm.FetchNode(part, edge.End2Key(), KindProperty)
		if err != nil {
			return events, err
		} else if prop != nil {
			attrs[AttrName] = fmt.Sprint(prop.Attr(AttrName))
		}

		attrs["trace"] = edge.End1Key()

		events = append(events, &Event{EventAccessRecorded, edge.End2Key(), attrs})
	}

	return events, nil
}
