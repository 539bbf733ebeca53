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
Package ecal contains the scripting integration of TraceStore for the event
condition action language (ECAL).

Every fact recorded in the trace store is injected into ECAL as an event:

	Name: TraceStore: <event type>
	Kind: trace.<event type>, e.g. trace.access.recorded
	State: id, type, attrs

Attribute names are given in camel case (e.g. attrs.moduleId) since ECAL
identifiers cannot contain underscores.

Events are added to the ECAL processor without waiting for sinks. A sink may
therefore use the trace store functions itself.
*/
package ecal

import (
	"fmt"
	"strings"

	"github.com/krotik/ecal/engine"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/ecal/util"
	"github.com/krotik/tracestore/trace"
)

/*
EventKindPrefix is the first kind component of all trace store events in ECAL
*/
const EventKindPrefix = "trace"

/*
EventBridge forwards trace store events to ECAL.
*/
type EventBridge struct {
	Processor engine.Processor
	Logger    util.Logger
}

/*
Name returns the name of the bridge.
*/
func (eb *EventBridge) Name() string {
	return "ecal.eventbridge"
}

/*
EventName returns the ECAL event name and kind of a trace store event type.
*/
func EventName(eventType string) (string, []string) {
	return fmt.Sprintf("TraceStore: %v", eventType),
		append([]string{EventKindPrefix}, strings.Split(eventType, ".")...)
}

/*
Handle injects a list of trace store events into ECAL.
*/
func (eb *EventBridge) Handle(events []*trace.Event) {
	for _, ev := range events {
		name, kind := EventName(ev.Type)

		// Construct an event which can be used to check if any rule will trigger.
		// This avoids the state construction for events which would not
		// trigger any rules.

		if !eb.Processor.IsTriggering(engine.NewEvent(name, kind, nil)) {
			continue
		}

		attrs := make(map[string]interface{}, len(ev.Attrs))
		for k, v := range ev.Attrs {
			attrs[camelCase(k)] = v
		}

		state := map[interface{}]interface{}{
			"id":    ev.ID,
			"type":  ev.Type,
			"attrs": scope.ConvertJSONToECALObject(attrs),
		}

		if _, err := eb.Processor.AddEvent(engine.NewEvent(name, kind, state), nil); err != nil {
			eb.Logger.LogDebug(fmt.Sprintf("TraceStore event %v could not be added to ECAL: %v", ev.Type, err))
		}
	}
}

/*
camelCase converts a snake case attribute name into an ECAL identifier.
*/
func camelCase(name string) string {
	parts := strings.Split(name, "_")

	for i := 1; i < len(parts); i++ {
		if p := parts[i]; p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}

	return strings.Join(parts, "")
}
