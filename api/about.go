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
Package api contains general REST API definitions.

The REST API provides an interface to TraceStore. It allows recording and
querying of dependency traces. The API responds to GET, POST, PUT and DELETE
requests in JSON if the request was successful (Return code 200 OK) and plain
text in all other cases.

Common API definitions

/about

Endpoint which returns an object with version information.

	api_versions : List of available API versions e.g. [ "v1" ]
	product      : Name of the API provider (TraceStore)
	version      : Version of the API provider
	store_open   : Flag if a trace store session is active

/swagger.json

Dynamically generated swagger definition file. See: http://swagger.io
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/krotik/tracestore/config"
)

/*
EndpointAbout is the about endpoint URL (rooted). Handles about/
*/
const EndpointAbout = APIRoot + "/about/"

/*
AboutEndpointInst creates a new endpoint handler.
*/
func AboutEndpointInst() RestEndpointHandler {
	return &aboutEndpoint{}
}

/*
Handler object for about operations.
*/
type aboutEndpoint struct {
	*DefaultEndpointHandler
}

/*
HandleGET returns version information and the state of the trace store.
*/
func (a *aboutEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"api_versions": []string{"v1"},
		"product":      "TraceStore",
		"version":      config.ProductVersion,
		"store_open":   TM != nil && TM.Store() != nil,
	})
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (a *aboutEndpoint) SwaggerDefs(s map[string]interface{}) {
	prop := func(typ string, desc string) map[string]interface{} {
		return map[string]interface{}{"type": typ, "description": desc}
	}

	versions := prop("array", "List of available API versions.")
	versions["items"] = prop("string", "Available API version.")

	s["definitions"].(map[string]interface{})["About"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"api_versions": versions,
			"product":      prop("string", "Product name of the REST API provider."),
			"version":      prop("string", "Version of the REST API provider."),
			"store_open":   prop("boolean", "Flag if a trace store session is active."),
		},
	}

	s["paths"].(map[string]interface{})["/about"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return information about the REST API provider.",
			"description": "Returns available API versions, product name, product version and if the trace store is open.",
			"produces":    []string{"text/plain", "application/json"},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "About info object",
					"schema":      map[string]interface{}{"$ref": "#/definitions/About"},
				},
				"default": ErrorResponse,
			},
		},
	}
}
