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
Package trace contains the dependency trace store of an incremental execution
engine.

The store records as a typed graph which module elements (computation units)
read which model elements (data elements) and which of their properties during
an execution. The records are later queried to decide what must be recomputed
when inputs change.

Graph schema

Vertices:

	ExecutionContext  script_id, models_ids
	ModuleElement     module_id
	ModelElement      element_id
	Property          name
	Trace             -

Edges (source -> target):

	ExecutionContext -FOR->      ModuleElement
	ExecutionContext -INVOLVES-> ModelElement
	ExecutionContext -CONTAINS-> Trace
	Trace            -TRACES->   ModuleElement
	Trace            -REACHES->  ModelElement
	Trace            -ACCESSES-> Property
	ModelElement     -OWNS->     Property

Every entity is acquired (found or created) before it is used. An acquire is a
lookup followed by a separate create. Two writers acquiring the same key at the
same time may both miss the lookup and create a duplicate. The store is only
safe under a single writer which drives the whole incremental run.

Every composite mutation (a vertex together with its edges) is written in a
single graph transaction. A Trace is never visible without its TRACES, REACHES
and CONTAINS edges.
*/
package trace

import "log"

/*
Vertex kinds
*/
const (
	KindExecutionContext = "ExecutionContext"
	KindModuleElement    = "ModuleElement"
	KindModelElement     = "ModelElement"
	KindProperty         = "Property"
	KindTrace            = "Trace"
)

/*
Edge kinds
*/
const (
	EdgeFor      = "FOR"
	EdgeInvolves = "INVOLVES"
	EdgeContains = "CONTAINS"
	EdgeTraces   = "TRACES"
	EdgeReaches  = "REACHES"
	EdgeAccesses = "ACCESSES"
	EdgeOwns     = "OWNS"
)

/*
Vertex attributes
*/
const (
	AttrScriptID  = "script_id"
	AttrModelsIDs = "models_ids"
	AttrModuleID  = "module_id"
	AttrElementID = "element_id"
	AttrName      = "name"
)

/*
DefaultPartition is the graph partition which holds all trace data.
*/
const DefaultPartition = "main"

/*
SchemaVersion is the version of the trace schema which is recorded in the
graph storage.
*/
const SchemaVersion = "1"

/*
User entries of the graph main database which describe the trace schema
*/
const (
	UserEntrySchema = "tracestore.schema"
	UserEntryOwner  = "tracestore.owner"
	UserEntrySalt   = "tracestore.salt"
	UserEntrySecret = "tracestore.secret"
)

/*
BadgerSyncWrites controls if persistent (plocal) backends sync every write to disk.
*/
var BadgerSyncWrites = true

/*
Logger is a function which processes log messages from the trace store.
*/
type Logger func(v ...interface{})

/*
LogInfo is called if an info message is logged in the trace store code.
*/
var LogInfo = Logger(log.Print)

/*
LogDebug is called if a debug message is logged in the trace store code.
*/
var LogDebug = Logger(LogNull)

/*
LogNull is a discarding logger to be used for disabling loggers.
*/
var LogNull = func(v ...interface{}) {
}
