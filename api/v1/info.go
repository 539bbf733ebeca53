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
EndpointInfo is the info endpoint URL (rooted). Handles everything under info/...
*/
const EndpointInfo = api.APIRoot + APIv1 + "/info/"

/*
InfoEndpointInst creates a new endpoint handler.
*/
func InfoEndpointInst() api.RestEndpointHandler {
	return &infoEndpoint{}
}

/*
Handler object for info queries.
*/
type infoEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a info query REST call.
*/
func (ie *infoEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	if !checkResources(w, resources, 0, 0, "") || !checkManager(w) {
		return
	}

	info, err := api.TM.Info()
	if err != nil {
		writeTraceError(w, err)
		return
	}

	writeJSON(w, info)
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ie *infoEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/info"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return general trace store information.",
			"description": "The info endpoint returns the backend, the partition, the active session and vertex and edge counts by kind.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "A key-value map.",
				},
				"default": errorResponse,
			},
		},
	}

	addErrorDef(s)
}
