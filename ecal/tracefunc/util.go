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
Package tracefunc contains TraceStore specific functions for the event
condition action language (ECAL).
*/
package tracefunc

import (
	"fmt"

	"github.com/krotik/ecal/scope"
	"github.com/krotik/tracestore/trace"
)

/*
stringList converts an ECAL list into a list of strings.
*/
func stringList(obj interface{}) ([]string, bool) {
	list, ok := obj.([]interface{})
	if !ok {
		return nil, false
	}

	ret := make([]string, 0, len(list))
	for _, v := range list {
		ret = append(ret, fmt.Sprint(v))
	}

	return ret, true
}

/*
tracesToECAL converts a list of traces into an ECAL list of maps.
*/
func tracesToECAL(traces []*trace.Trace) interface{} {
	ret := make([]interface{}, 0, len(traces))

	for _, t := range traces {
		props := make([]interface{}, 0, len(t.Properties))
		for _, p := range t.Properties {
			props = append(props, p)
		}

		ret = append(ret, map[string]interface{}{
			"id":         t.ID,
			"moduleId":   t.ModuleID,
			"elementId":  t.ElementID,
			"properties": props,
		})
	}

	return scope.ConvertJSONToECALObject(ret)
}

/*
sessionToECAL converts a session into an ECAL map.
*/
func sessionToECAL(s *trace.Session) interface{} {
	if s == nil {
		return nil
	}

	modelIDs := make([]interface{}, 0, len(s.ModelIDs))
	for _, id := range s.ModelIDs {
		modelIDs = append(modelIDs, id)
	}

	return scope.ConvertJSONToECALObject(map[string]interface{}{
		"contextId": s.ContextID,
		"scriptId":  s.ScriptID,
		"modelsIds": modelIDs,
		"created":   s.Created,
		"started":   s.Started,
	})
}
