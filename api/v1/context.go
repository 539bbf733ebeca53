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
EndpointContext is the context endpoint URL (rooted). Handles everything under context/...
*/
const EndpointContext = api.APIRoot + APIv1 + "/context/"

/*
ContextEndpointInst creates a new endpoint handler.
*/
func ContextEndpointInst() api.RestEndpointHandler {
	return &contextEndpoint{}
}

/*
Handler object for execution context operations.
*/
type contextEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
contextRequest is the body of a context request.
*/
type contextRequest struct {
	ScriptID string   `json:"script_id"`
	ModelIDs []string `json:"models_ids"`
}

/*
HandleGET returns the active session.
*/
func (ce *contextEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	if !checkResources(w, resources, 0, 0, "") || !checkManager(w) {
		return
	}

	session := api.TM.Session()

	if session == nil {
		http.Error(w, "No execution context", http.StatusNotFound)
		return
	}

	writeJSON(w, session)
}

/*
HandlePUT resolves the execution context of the current run.
*/
func (ce *contextEndpoint) HandlePUT(w http.ResponseWriter, r *http.Request, resources []string) {
	var req contextRequest

	if !checkResources(w, resources, 0, 0, "") || !checkManager(w) || !decodeBody(w, r, &req) {
		return
	}

	if req.ScriptID == "" {
		http.Error(w, "Missing script_id", http.StatusBadRequest)
		return
	}

	if err := api.TM.SetExecutionContext(req.ScriptID, req.ModelIDs); err != nil {
		writeTraceError(w, err)
		return
	}

	writeJSON(w, api.TM.Session())
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ce *contextEndpoint) SwaggerDefs(s map[string]interface{}) {

	session := map[string]interface{}{
		"description": "The active session.",
		"schema": map[string]interface{}{
			"$ref": "#/definitions/Session",
		},
	}

	s["paths"].(map[string]interface{})["/v1/context"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return the active session.",
			"description": "Returns the execution context of the current run.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": map[string]interface{}{
				"200":     session,
				"default": errorResponse,
			},
		},
		"put": map[string]interface{}{
			"summary":     "Resolve the execution context of the current run.",
			"description": "The context is matched by script id and by the exact set of model ids. It is created if no stored context matches.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "context",
					"in":          "body",
					"description": "Script id and model ids of the run.",
					"required":    true,
					"schema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"script_id": map[string]interface{}{
								"type": "string",
							},
							"models_ids": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "string",
								},
							},
						},
					},
				},
			},
			"responses": map[string]interface{}{
				"200":     session,
				"default": errorResponse,
			},
		},
	}

	s["definitions"].(map[string]interface{})["Session"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"context_id": map[string]interface{}{"type": "string"},
			"script_id":  map[string]interface{}{"type": "string"},
			"models_ids": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"created": map[string]interface{}{"type": "boolean"},
			"started": map[string]interface{}{"type": "string"},
		},
	}

	addErrorDef(s)
}
