/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ecal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/krotik/common/datautil"
	"github.com/krotik/common/fileutil"
	"github.com/krotik/common/stringutil"
	"github.com/krotik/ecal/cli/tool"
	"github.com/krotik/ecal/engine"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/ecal/stdlib"
	"github.com/krotik/ecal/util"
	"github.com/krotik/tracestore/config"
	"github.com/krotik/tracestore/ecal/tracefunc"
	"github.com/krotik/tracestore/trace"
)

/*
ScriptingInterpreter models a ECAL script interpreter instance.
*/
type ScriptingInterpreter struct {
	TM          *trace.Manager       // Trace store manager for the interpreter
	Interpreter *tool.CLIInterpreter // ECAL Interpreter object

	Dir       string // Root dir for interpreter
	EntryFile string // Entry file for the program
	LogLevel  string // Log level string (Debug, Info, Error)
	LogFile   string // Logfile (blank for stdout)

	WebsocketConnections *datautil.MapCache
}

/*
NewScriptingInterpreter returns a new ECAL scripting interpreter.
*/
func NewScriptingInterpreter(scriptFolder string, tm *trace.Manager) *ScriptingInterpreter {
	return &ScriptingInterpreter{
		TM:                   tm,
		Dir:                  scriptFolder,
		EntryFile:            filepath.Join(scriptFolder, config.Str(config.ECALEntryScript)),
		LogLevel:             config.Str(config.ECALLogLevel),
		LogFile:              config.Str(config.ECALLogFile),
		WebsocketConnections: datautil.NewMapCache(uint64(config.Int(config.FeedConnections)), 0),
	}
}

/*
dummyEntryFile is a small valid ECAL which does not do anything. It is used
as the default entry file if no entry file exists.
*/
const dummyEntryFile = `0 # Write your ECAL code here
`

/*
Run runs the ECAL scripting interpreter.

After this function completes:
- EntryScript in config and all related scripts in the interpreter root dir have been executed
- ECAL Interpreter object is fully initialized
- ECAL's event processor has been started
- Trace store events are being forwarded to ECAL
*/
func (si *ScriptingInterpreter) Run() error {
	var err error

	// Ensure we have a dummy entry point

	if ok, _ := fileutil.PathExists(si.EntryFile); !ok {
		err = os.WriteFile(si.EntryFile, []byte(dummyEntryFile), 0600)
	}

	if err == nil {
		i := tool.NewCLIInterpreter()
		si.Interpreter = i

		i.Dir = &si.Dir
		i.LogFile = &si.LogFile
		i.LogLevel = &si.LogLevel

		i.EntryFile = si.EntryFile
		i.LoadPlugins = false

		i.CreateRuntimeProvider("tracestore-runtime")

		// Adding functions

		AddTraceStoreStdlibFunctions(si.TM)

		// Adding rules

		sockRule := &engine.Rule{
			Name:            "TraceStore-websocket-communication-rule", // Name
			Desc:            "Handles a websocket communication",       // Description
			KindMatch:       []string{"web.sock.msg"},                  // Kind match
			ScopeMatch:      []string{},
			StateMatch:      nil,
			Priority:        0,
			SuppressionList: nil,
			Action:          si.HandleECALSockEvent,
		}

		si.Interpreter.CustomRules = append(si.Interpreter.CustomRules, sockRule)

		if err = i.Interpret(false); err == nil {

			// Trace store events are now forwarded to ECAL via the eventbridge

			eb := &EventBridge{
				Processor: i.RuntimeProvider.Processor,
				Logger:    i.RuntimeProvider.Logger,
			}

			si.TM.AddListener(eb.Name(), eb.Handle)
		}
	}

	// Include a traceback if possible

	if ss, ok := err.(util.TraceableRuntimeError); ok {
		err = fmt.Errorf("%v\n  %v", err.Error(), strings.Join(ss.GetTraceString(), "\n  "))
	}

	return err
}

/*
RegisterECALSock registers a websocket which should be connected to ECAL events.
*/
func (si *ScriptingInterpreter) RegisterECALSock(conn *WebsocketConnection) {
	si.WebsocketConnections.Put(conn.CommID, conn)
}

/*
DeregisterECALSock removes a registered websocket.
*/
func (si *ScriptingInterpreter) DeregisterECALSock(conn *WebsocketConnection) {
	si.WebsocketConnections.Remove(conn.CommID)
}

/*
HandleECALSockEvent handles websocket events from the ECAL interpreter (web.sock.msg events).
*/
func (si *ScriptingInterpreter) HandleECALSockEvent(p engine.Processor, m engine.Monitor, e *engine.Event, tid uint64) error {
	state := e.State()
	payload := scope.ConvertECALToJSONObject(state["payload"])
	shouldClose := stringutil.IsTrueValue(fmt.Sprint(state["close"]))

	id := "null"
	if commID, ok := state["commID"]; ok {
		id = fmt.Sprint(commID)
	}

	err := fmt.Errorf("Could not send data to unknown websocket - commID: %v", id)

	if conn, ok := si.WebsocketConnections.Get(id); ok {
		err = nil
		wconn := conn.(*WebsocketConnection)
		wconn.WriteData(map[string]interface{}{
			"commID":  id,
			"payload": payload,
			"close":   shouldClose,
		})

		if shouldClose {
			wconn.Close("")
		}
	}

	return err
}

/*
AddTraceStoreStdlibFunctions adds TraceStore related ECAL stdlib functions.
*/
func AddTraceStoreStdlibFunctions(tm *trace.Manager) {
	stdlib.AddStdlibPkg("trace", "TraceStore related functions")

	stdlib.AddStdlibFunc("trace", "setExecutionContext", &tracefunc.SetExecutionContextFunc{TM: tm})
	stdlib.AddStdlibFunc("trace", "recordAccess", &tracefunc.RecordAccessFunc{TM: tm})
	stdlib.AddStdlibFunc("trace", "recordAccesses", &tracefunc.RecordAccessesFunc{TM: tm})
	stdlib.AddStdlibFunc("trace", "findTraces", &tracefunc.FindTracesFunc{TM: tm})
	stdlib.AddStdlibFunc("trace", "session", &tracefunc.SessionFunc{TM: tm})
	stdlib.AddStdlibFunc("trace", "info", &tracefunc.InfoFunc{TM: tm})
}
