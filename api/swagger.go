/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package api

import (
	"encoding/json"
	"net/http"
)

/*
EndpointSwagger is the swagger endpoint URL (rooted). Handles swagger.json/
*/
const EndpointSwagger = APIRoot + "/swagger.json/"

/*
ErrorResponse is the swagger response object of all failed requests. Errors
are returned as plain text.
*/
var ErrorResponse = map[string]interface{}{
	"description": "Error response",
	"schema": map[string]interface{}{
		"$ref": "#/definitions/Error",
	},
}

/*
SwaggerEndpointInst creates a new endpoint handler.
*/
func SwaggerEndpointInst() RestEndpointHandler {
	return &swaggerEndpoint{}
}

/*
Handler object for swagger operations.
*/
type swaggerEndpoint struct {
	*DefaultEndpointHandler
}

/*
HandleGET returns the swagger definition of all registered endpoints.
*/
func (a *swaggerEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	doc := map[string]interface{}{
		"swagger":  "2.0",
		"host":     APIHost,
		"schemes":  APISchemes,
		"basePath": APIRoot,
		"produces": []string{"application/json"},
		"paths":    map[string]interface{}{},
		"definitions": map[string]interface{}{
			"Error": map[string]interface{}{
				"description": "A human readable error message.",
				"type":        "string",
			},
		},
	}

	a.SwaggerDefs(doc)

	for _, inst := range registered {
		inst().SwaggerDefs(doc)
	}

	w.Header().Set("content-type", "application/json; charset=utf-8")

	json.NewEncoder(w).Encode(doc)
}

/*
SwaggerDefs adds the general API information.
*/
func (a *swaggerEndpoint) SwaggerDefs(s map[string]interface{}) {
	s["info"] = map[string]interface{}{
		"title":       "TraceStore API",
		"description": "Record and query dependency traces of model transformations.",
		"version":     APIVersion,
	}
}
