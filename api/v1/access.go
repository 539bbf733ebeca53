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
EndpointAccess is the access endpoint URL (rooted). Handles everything under access/...
*/
const EndpointAccess = api.APIRoot + APIv1 + "/access/"

/*
AccessEndpointInst creates a new endpoint handler.
*/
func AccessEndpointInst() api.RestEndpointHandler {
	return &accessEndpoint{}
}

/*
Handler object for access recording.
*/
type accessEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
accessRequest is the body of an access request. Either a single property or
a list of properties can be given.
*/
type accessRequest struct {
	ModuleID   string   `json:"module_id"`
	ElementID  string   `json:"element_id"`
	Property   string   `json:"property"`
	Properties []string `json:"properties"`
}

/*
HandlePOST records an access of a module element to properties of a model element.
*/
func (ae *accessEndpoint) HandlePOST(w http.ResponseWriter, r *http.Request, resources []string) {
	var req accessRequest
	var recorded bool
	var err error

	if !checkResources(w, resources, 0, 0, "") || !checkManager(w) || !decodeBody(w, r, &req) {
		return
	}

	if req.ModuleID == "" || req.ElementID == "" {
		http.Error(w, "Need module_id and element_id", http.StatusBadRequest)
		return
	}

	if req.Property != "" && req.Properties == nil {
		recorded, err = api.TM.RecordAccess(req.ModuleID, req.ElementID, req.Property)

	} else if req.Property == "" && len(req.Properties) > 0 {
		recorded, err = api.TM.RecordAccesses(req.ModuleID, req.ElementID, req.Properties)

	} else {
		http.Error(w, "Need either property or properties", http.StatusBadRequest)
		return
	}

	if err != nil {
		writeTraceError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"recorded": recorded,
	})
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ae *accessEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/access"] = map[string]interface{}{
		"post": map[string]interface{}{
			"summary":     "Record property accesses.",
			"description": "Records that a module element read one or more properties of a model element. For a single property the result is true if the access is new. For a list of properties the result is true if all accesses were handled.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "access",
					"in":          "body",
					"description": "Module id, element id and the accessed property or properties.",
					"required":    true,
					"schema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"module_id": map[string]interface{}{
								"type": "string",
							},
							"element_id": map[string]interface{}{
								"type": "string",
							},
							"property": map[string]interface{}{
								"type": "string",
							},
							"properties": map[string]interface{}{
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
				"200": map[string]interface{}{
					"description": "Recording result.",
					"schema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"recorded": map[string]interface{}{
								"type": "boolean",
							},
						},
					},
				},
				"default": errorResponse,
			},
		},
	}

	addErrorDef(s)
}
