/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/krotik/tracestore/api"
	"github.com/krotik/tracestore/trace"
)

/*
EndpointTraces is the traces endpoint URL (rooted). Handles everything under traces/...
*/
const EndpointTraces = api.APIRoot + APIv1 + "/traces/"

/*
TracesEndpointInst creates a new endpoint handler.
*/
func TracesEndpointInst() api.RestEndpointHandler {
	return &tracesEndpoint{}
}

/*
Handler object for trace queries.
*/
type tracesEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a trace query REST call.
*/
func (te *tracesEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	var traces []*trace.Trace
	var err error

	// The element id is the rest of the path and may contain slashes

	if !checkResources(w, resources, 1, len(resources), "Need an element id") || !checkManager(w) {
		return
	}

	elementID := strings.Join(resources, "/")

	if prop := r.URL.Query().Get("property"); prop != "" {
		traces, err = api.TM.FindTracesByProperty(elementID, prop)
	} else {
		traces, err = api.TM.FindTraces(elementID)
	}

	if err != nil {
		writeTraceError(w, err)
		return
	}

	if traces == nil {
		traces = []*trace.Trace{}
	}

	w.Header().Add(HTTPHeaderTotalCount, fmt.Sprint(len(traces)))

	writeJSON(w, traces)
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (te *tracesEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/traces/{element}"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Find traces of a model element.",
			"description": "Returns all traces of the current run which reach a model element. An unknown element yields an empty list.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "element",
					"in":          "path",
					"description": "Element id of the model element. The id may contain slashes.",
					"required":    true,
					"type":        "string",
				},
				{
					"name":        "property",
					"in":          "query",
					"description": "Only return traces which accessed this property.",
					"required":    false,
					"type":        "string",
				},
			},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "A list of traces.",
					"schema": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"$ref": "#/definitions/Trace",
						},
					},
				},
				"default": errorResponse,
			},
		},
	}

	s["definitions"].(map[string]interface{})["Trace"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":         map[string]interface{}{"type": "string"},
			"module_id":  map[string]interface{}{"type": "string"},
			"element_id": map[string]interface{}{"type": "string"},
			"properties": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
	}

	addErrorDef(s)
}
