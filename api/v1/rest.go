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
Package v1 contains TraceStore REST API Version 1.

Context endpoint

/tracestore/v1/context

The context endpoint resolves the execution context of the current run (PUT)
and returns the active session (GET).

Access endpoint

/tracestore/v1/access

The access endpoint records that a module element read one or more properties
of a model element (POST).

Traces endpoint

/tracestore/v1/traces/<element id>?property=<name>

The traces endpoint returns all traces of the current run which reach a model
element. The optional property parameter restricts the result to traces which
accessed the property.

Info endpoint

/tracestore/v1/info

The info endpoint returns statistics of the open trace store.

Feed endpoint

/tracestore/v1/feed

The feed endpoint is a websocket which receives all facts recorded in the
trace store.

Log endpoint

/tracestore/v1/log

The log endpoint returns the most recent operation log messages.
*/
package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/krotik/tracestore/api"
	"github.com/krotik/tracestore/trace"
)

/*
APIv1 is the directory for version 1 of the API
*/
const APIv1 = "/v1"

/*
HTTPHeaderTotalCount is a special header value containing the total count of objects.
*/
const HTTPHeaderTotalCount = "X-Total-Count"

/*
V1EndpointMap is a map of urls to endpoints for version 1 of the API
*/
var V1EndpointMap = map[string]api.RestEndpointInst{
	EndpointContext: ContextEndpointInst,
	EndpointAccess:  AccessEndpointInst,
	EndpointTraces:  TracesEndpointInst,
	EndpointInfo:    InfoEndpointInst,
	EndpointFeed:    FeedEndpointInst,
	EndpointLog:     LogEndpointInst,
}

// Helper functions
// ================

/*
checkResources check given resources for a GET request.
*/
func checkResources(w http.ResponseWriter, resources []string, requiredMin int, requiredMax int, errorMsg string) bool {
	if len(resources) < requiredMin {
		http.Error(w, errorMsg, http.StatusBadRequest)
		return false
	} else if len(resources) > requiredMax {
		http.Error(w, "Invalid resource specification: "+strings.Join(resources[1:], "/"), http.StatusBadRequest)
		return false
	}

	return true
}

/*
checkManager checks that a trace store manager is available.
*/
func checkManager(w http.ResponseWriter) bool {
	if api.TM == nil {
		http.Error(w, "Trace store is not available", http.StatusServiceUnavailable)
		return false
	}

	return true
}

/*
writeTraceError writes a trace store error with a matching status code.
*/
func writeTraceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	if errors.Is(err, trace.ErrConfiguration) {
		status = http.StatusBadRequest
	} else if errors.Is(err, trace.ErrConnection) {
		status = http.StatusServiceUnavailable
	}

	http.Error(w, err.Error(), status)
}

/*
decodeBody decodes the JSON body of a request. Writes an error and returns
false if the body could not be decoded.
*/
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		http.Error(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

/*
writeJSON writes a JSON response.
*/
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("content-type", "application/json; charset=utf-8")

	ret := json.NewEncoder(w)
	ret.Encode(data)
}

/*
addErrorDef adds the generic error object to a swagger definition.
*/
func addErrorDef(s map[string]interface{}) {
	s["definitions"].(map[string]interface{})["Error"] = map[string]interface{}{
		"description": "A human readable error mesage.",
		"type":        "string",
	}
}

/*
errorResponse is the swagger definition of an error response.
*/
var errorResponse = api.ErrorResponse
