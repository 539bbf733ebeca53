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
TraceStore records dependency traces of model transformations in a graph.

A host execution engine reports which module element read which property of
which model element. TraceStore keeps one trace per module element and model
element within an execution context and answers which traces reach a given
model element.

Available commands:

    server    Start the TraceStore server with the REST API
    record    Record property accesses
    find      Find the traces which reach a model element
    info      Show statistics of the trace store
*/
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
