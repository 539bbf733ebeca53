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
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/krotik/common/httputil"
	"github.com/krotik/tracestore/api"
	"github.com/krotik/tracestore/config"
	"github.com/krotik/tracestore/trace"
)

const TESTPORT = ":9192"

const testURL = "http://localhost" + TESTPORT

func TestMain(m *testing.M) {
	flag.Parse()

	config.LoadDefaultConfig()

	trace.LogInfo = trace.LogNull

	// Setup a trace store on a memory backend

	tm := trace.NewManager("")

	if err := tm.Configure("memory:v1test", "", "", false); err != nil {
		panic(err)
	}

	if err := tm.SessionStart(); err != nil {
		panic(err)
	}

	api.TM = tm

	Feed = NewFeedHub(2, 100)
	tm.AddListener("api.feed", Feed.Publish)

	hs, wg := startServer()
	if hs == nil {
		return
	}

	// Register endpoints

	api.RegisterRestEndpoints(V1EndpointMap)
	api.RegisterRestEndpoints(api.GeneralEndpointMap)

	// Run the tests

	res := m.Run()

	// Teardown

	stopServer(hs, wg)

	Feed.Close()
	tm.SessionEnd()

	os.Exit(res)
}

/*
Send a request to a HTTP test server
*/
func sendTestRequest(url string, method string, content []byte) (string, http.Header, string) {
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
		return resp.Status, resp.Header, out.String()
	}

	// Just return the body

	return resp.Status, resp.Header, bodyStr
}

/*
decodeTestResult decodes a JSON response.
*/
func decodeTestResult(res string, v interface{}) {
	if err := json.Unmarshal([]byte(res), v); err != nil {
		panic(fmt.Sprint("Could not decode: ", res, " ", err))
	}
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
