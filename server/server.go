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
Package server contains the code for the TraceStore server.
*/
package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/krotik/common/datautil"
	"github.com/krotik/common/fileutil"
	"github.com/krotik/common/httputil"
	"github.com/krotik/common/lockutil"
	"github.com/krotik/common/timeutil"
	"github.com/krotik/tracestore/api"
	v1 "github.com/krotik/tracestore/api/v1"
	"github.com/krotik/tracestore/config"
	"github.com/krotik/tracestore/ecal"
	"github.com/krotik/tracestore/trace"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/*
Using custom consolelogger type so we can test log.Fatal calls with unit tests. Overwrite
these if the server should not call os.Exit on a fatal error.
*/
type consolelogger func(v ...interface{})

var fatal = consolelogger(log.Fatal)
var print = consolelogger(log.Print)

/*
Base path for all file (used by unit tests)
*/
var basepath = ""

/*
Incremental starts the server on the data of an earlier run.
*/
var Incremental = false

/*
EndpointMetrics is the URL of the metrics endpoint.
*/
const EndpointMetrics = "/metrics"

/*
feedQueueSize is the number of event batches which are buffered for feed clients.
*/
const feedQueueSize = 1000

/*
StartServer runs the TraceStore server. The server uses config.Config for all its configuration
parameters.
*/
func StartServer() {
	StartServerWithSingleOp(nil)
}

/*
StartServerWithSingleOp runs the TraceStore server. If the singleOperation function is
not nil then the server executes the function and exists if the function returns true.
*/
func StartServerWithSingleOp(singleOperation func(*trace.Manager) bool) {
	var err error

	print(fmt.Sprintf("TraceStore %v", config.ProductVersion))

	// Ensure we have a configuration - use the default configuration if nothing was set

	if config.Config == nil {
		config.LoadDefaultConfig()
	}

	// Setup the operation log

	api.OpLog = datautil.NewRingBuffer(int(config.Int(config.OpLogHistory)))

	trace.LogInfo = func(v ...interface{}) {
		print(v...)
		api.OpLog.Log(timeutil.MakeTimestamp(), " ", fmt.Sprint(v...))
	}
	trace.BadgerSyncWrites = config.Bool(config.BadgerSyncWrites)

	// Create the trace store manager

	backend := backendURL(config.Str(config.BackendURL))

	print("Opening trace store ", backend)

	tm := trace.NewManager(config.Str(config.Partition))

	if err = tm.Configure(backend, config.Str(config.BackendUser),
		config.Str(config.BackendPassword), config.Bool(config.CreateSchema)); err == nil {

		if Incremental {
			err = tm.IncrementalSessionStart()
		} else {
			err = tm.SessionStart()
		}
	}

	if err != nil {
		fatal("Failed to open trace store:", err)
		return
	}

	api.TM = tm

	defer func() {

		print("Closing trace store")

		api.TM = nil

		if err := tm.SessionEnd(); err != nil {
			fatal(err)
			return
		}

		os.RemoveAll(filepath.Join(basepath, config.Str(config.LockFile)))
	}()

	// Handle single operation - these are operations which work on the trace
	// store and then exit.

	if singleOperation != nil && singleOperation(tm) {
		return
	}

	api.APIHost = config.Str(config.HTTPHost) + ":" + config.Str(config.HTTPPort)

	// Register REST endpoints

	api.RegisterRestEndpoints(api.GeneralEndpointMap)
	api.RegisterRestEndpoints(v1.V1EndpointMap)

	if config.Bool(config.EnableMetrics) {
		print("Enabling metrics endpoint: ", EndpointMetrics)

		api.HandleFunc(EndpointMetrics, promhttp.Handler().ServeHTTP)
	}

	if config.Bool(config.EnableFeed) {
		max := int(config.Int(config.FeedConnections))

		print(fmt.Sprintf("Starting event feed (max connections: %v)", max))

		v1.Feed = v1.NewFeedHub(max, feedQueueSize)
		tm.AddListener("api.feed", v1.Feed.Publish)

		defer func() {
			v1.Feed.Close()
			v1.Feed = nil
		}()
	}

	// Start the scripting interpreter

	if config.Bool(config.EnableECAL) {
		scriptFolder := filepath.Join(basepath, config.Str(config.ECALScriptFolder))

		print("Loading ECAL scripts in ", scriptFolder)

		ensurePath(scriptFolder)

		api.SI = ecal.NewScriptingInterpreter(scriptFolder, tm)

		defer func() {
			api.SI = nil
		}()

		if err := api.SI.Run(); err != nil {
			fatal("Failed to start ECAL scripting interpreter:", err)
			return
		}
	}

	// Start the garbage collection of persistent badger backends

	stopGC := make(chan bool)
	defer close(stopGC)

	if strings.HasPrefix(backend, trace.SchemePLocal+":") {
		interval := time.Duration(config.Int(config.BadgerGCIntervalSeconds)) * time.Second

		print("Running storage garbage collection every ", interval)

		go runGC(tm, interval, stopGC)
	}

	// Start HTTP server and enable REST API

	hs := &httputil.HTTPServer{}

	var wg sync.WaitGroup
	wg.Add(1)

	port := config.Str(config.HTTPPort)

	print("Starting server on: ", api.APIHost)

	go hs.RunHTTPServer(":"+port, &wg)

	// Wait until the server has started

	wg.Wait()

	// HTTP Server has started

	if hs.LastError != nil {
		fatal(hs.LastError)
		return
	}

	// Create a lockfile so the server can be shut down

	lf := lockutil.NewLockFile(basepath+config.Str(config.LockFile), time.Duration(2)*time.Second)

	lf.Start()

	go func() {

		// Check if the lockfile watcher is running and
		// call shutdown once it has finished

		for lf.WatcherRunning() {
			time.Sleep(time.Duration(1) * time.Second)
		}

		print("Lockfile was modified")

		hs.Shutdown()
	}()

	// Add to the wait group so we can wait for the shutdown

	wg.Add(1)

	print("Waiting for shutdown")
	wg.Wait()

	print("Shutting down")
}

/*
backendURL places the location of file based backends under the base path.
*/
func backendURL(url string) string {
	ss := strings.SplitN(url, ":", 2)

	if len(ss) == 2 && basepath != "" &&
		(ss[0] == trace.SchemePLocal || ss[0] == trace.SchemeSQLite) {

		return ss[0] + ":" + filepath.Join(basepath, ss[1])
	}

	return url
}

/*
runGC runs the storage garbage collection in regular intervals until the stop
channel is closed.
*/
func runGC(tm *trace.Manager, interval time.Duration, stop chan bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := tm.RunGC(); err != nil {
				trace.LogDebug("Storage garbage collection: ", err)
			}
		}
	}
}

/*
ensurePath ensures that a given relative path exists.
*/
func ensurePath(path string) {
	if res, _ := fileutil.PathExists(path); !res {
		if err := os.Mkdir(path, 0770); err != nil {
			fatal("Could not create directory:", err.Error())
			return
		}
	}
}
