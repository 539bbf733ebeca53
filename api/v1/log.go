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
	"net/http"

	"github.com/krotik/tracestore/api"
)

/*
EndpointLog is the log endpoint URL (rooted). Handles everything under log/...
*/
const EndpointLog = api.APIRoot + APIv1 + "/log/"

/*
LogEndpointInst creates a new endpoint handler.
*/
func LogEndpointInst() api.RestEndpointHandler {
	return &logEndpoint{}
}

/*
Handler object for operation log queries.
*/
type logEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET returns the operation log.
*/
func (le *logEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	if !checkResources(w, resources, 0, 0, "") {
		return
	}

	lines := []string{}

	if api.OpLog != nil {
		lines = api.OpLog.StringSlice()
	}

	writeJSON(w, lines)
}

/*
HandleDELETE clears the operation log.
*/
func (le *logEndpoint) HandleDELETE(w http.ResponseWriter, r *http.Request, resources []string) {
	if !checkResources(w, resources, 0, 0, "") {
		return
	}

	if api.OpLog != nil {
		api.OpLog.Reset()
	}
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (le *logEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/log"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return the operation log.",
			"description": "Returns the most recent operation log messages of the trace store.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "A list of log messages.",
					"schema": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "string",
						},
					},
				},
				"default": errorResponse,
			},
		},
		"delete": map[string]interface{}{
			"summary":     "Clear the operation log.",
			"description": "Removes all messages from the operation log.",
			"produces": []string{
				"text/plain",
			},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "Log was cleared.",
				},
				"default": errorResponse,
			},
		},
	}

	addErrorDef(s)
}
