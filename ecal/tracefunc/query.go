/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package tracefunc

import (
	"fmt"

	"github.com/krotik/ecal/parser"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/tracestore/trace"
)

/*
FindTracesFunc finds all traces of the current run which reach a model element.
*/
type FindTracesFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *FindTracesFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var traces []*trace.Trace
	var err error

	if arglen := len(args); arglen != 1 && arglen != 2 {
		return nil, fmt.Errorf("Function requires 1 or 2 parameters: element id and optionally a property name")
	}

	if len(args) == 2 {
		traces, err = f.TM.FindTracesByProperty(fmt.Sprint(args[0]), fmt.Sprint(args[1]))
	} else {
		traces, err = f.TM.FindTraces(fmt.Sprint(args[0]))
	}

	if err != nil {
		return nil, err
	}

	return tracesToECAL(traces), nil
}

/*
DocString returns a descriptive string.
*/
func (f *FindTracesFunc) DocString() (string, error) {
	return "Finds all traces of the current run which reach a model element (and optionally accessed a property).", nil
}

/*
SessionFunc returns the active session.
*/
type SessionFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *SessionFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	return sessionToECAL(f.TM.Session()), nil
}

/*
DocString returns a descriptive string.
*/
func (f *SessionFunc) DocString() (string, error) {
	return "Returns the active session or null if no execution context was set.", nil
}

/*
InfoFunc returns statistics of the open trace store.
*/
type InfoFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *InfoFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	info, err := f.TM.Info()
	if err != nil {
		return nil, err
	}

	nodeCounts := make(map[string]interface{})
	for k, v := range info.NodeCounts {
		nodeCounts[k] = float64(v)
	}

	edgeCounts := make(map[string]interface{})
	for k, v := range info.EdgeCounts {
		edgeCounts[k] = float64(v)
	}

	return scope.ConvertJSONToECALObject(map[string]interface{}{
		"backend":    info.Backend,
		"partition":  info.Partition,
		"nodeCounts": nodeCounts,
		"edgeCounts": edgeCounts,
	}), nil
}

/*
DocString returns a descriptive string.
*/
func (f *InfoFunc) DocString() (string, error) {
	return "Returns statistics of the open trace store.", nil
}
