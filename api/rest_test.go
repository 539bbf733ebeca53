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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/krotik/common/httputil"
	"github.com/krotik/tracestore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const TESTPORT = ":9190"

var lastRes []string

type testEndpoint struct {
	*DefaultEndpointHandler
}

/*
HandleGET records the requested resources.
*/
func (te *testEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	lastRes = resources
	te.DefaultEndpointHandler.HandleGET(w, r, resources)
}

func (te *testEndpoint) SwaggerDefs(s map[string]interface{}) {
}

var testEndpointMap = map[string]RestEndpointInst{
	"/": func() RestEndpointHandler {
		return &testEndpoint{}
	},
}

func TestEndpointHandling(t *testing.T) {

	hs, wg := startServer()
	if hs == nil {
		return
	}
	defer func() {
		stopServer(hs, wg)
	}()

	queryURL := "http://localhost" + TESTPORT

	RegisterRestEndpoints(testEndpointMap)
	RegisterRestEndpoints(GeneralEndpointMap)

	lastRes = nil

	if res := sendTestRequest(queryURL, "GET", nil); res != "Method Not Allowed" {
		t.Error("Unexpected response:", res)
		return
	}

	if lastRes != nil {
		t.Error("Unexpected lastRes:", lastRes)
	}

	lastRes = nil

	if res := sendTestRequest(queryURL+"/foo/bar", "GET", nil); res != "Method Not Allowed" {
		t.Error("Unexpected response:", res)
		return
	}

	if fmt.Sprint(lastRes) != "[foo bar]" {
		t.Error("Unexpected lastRes:", lastRes)
	}

	lastRes = nil

	if res := sendTestRequest(queryURL+"/foo/bar/", "GET", nil); res != "Method Not Allowed" {
		t.Error("Unexpected response:", res)
		return
	}

	if fmt.Sprint(lastRes) != "[foo bar]" {
		t.Error("Unexpected lastRes:", lastRes)
	}

	for _, method := range []string{"POST", "PUT", "DELETE", "UPDATE"} {
		if res := sendTestRequest(queryURL, method, nil); res != "Method Not Allowed" {
			t.Error("Unexpected response:", method, res)
			return
		}
	}

	// Test about endpoints

	if res := sendTestRequest(queryURL+"/tracestore/about", "GET", nil); res != fmt.Sprintf(`
{
  "api_versions": [
    "v1"
  ],
  "product": "TraceStore",
  "store_open": false,
  "version": "%v"
}`[1:], config.ProductVersion) {
		t.Error("Unexpected response:", res)
		return
	}

	// Test swagger definition

	var swagger map[string]interface{}

	res := sendTestRequest(queryURL+"/tracestore/swagger.json", "GET", nil)
	require.NoError(t, json.Unmarshal([]byte(res), &swagger))

	assert.Equal(t, "2.0", swagger["swagger"])
	assert.Equal(t, APIRoot, swagger["basePath"])
	assert.Equal(t, APIHost, swagger["host"])
	assert.Equal(t, "TraceStore API", swagger["info"].(map[string]interface{})["title"])
	assert.Contains(t, swagger["paths"], "/about")
	assert.Contains(t, swagger["definitions"], "Error")
}

/*
Send a request to a HTTP test server
*/
func sendTestRequest(url string, method string, content []byte) string {
	body, _ := sendTestRequestResponse(url, method, content)
	return body
}

/*
Send a request to a HTTP test server
*/
func sendTestRequestResponse(url string, method string, content []byte) (string, *http.Response) {
	var req *http.Request
	var err error

	if content != nil {
		req, err = http.NewRequest(method, url, bytes.NewBuffer(content))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}

	if err != nil {
		panic(err)
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	bodyStr := strings.Trim(string(body), " \n")

	// Try json decoding first

	out := bytes.Buffer{}
	err = json.Indent(&out, []byte(bodyStr), "", "  ")
	if err == nil {
		return out.String(), resp
	}

	// Just return the body

	return bodyStr, resp
}

/*
Start a HTTP test server.
*/
func startServer() (*httputil.HTTPServer, *sync.WaitGroup) {
	hs := &httputil.HTTPServer{}

	var wg sync.WaitGroup
	wg.Add(1)

	go hs.RunHTTPServer(TESTPORT, &wg)

	wg.Wait()

	// Server is started

	if hs.LastError != nil {
		panic(hs.LastError)
	}

	return hs, &wg
}

/*
Stop a started HTTP test server.
*/
func stopServer(hs *httputil.HTTPServer, wg *sync.WaitGroup) {

	if hs.Running == true {

		wg.Add(1)

		// Server is shut down

		hs.Shutdown()

		wg.Wait()

	} else {

		panic("Server was not running as expected")
	}
}
