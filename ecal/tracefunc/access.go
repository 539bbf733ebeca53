/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package tracefunc

import (
	"fmt"

	"github.com/krotik/ecal/parser"
	"github.com/krotik/tracestore/trace"
)

/*
SetExecutionContextFunc resolves the execution context of the current run.
*/
type SetExecutionContextFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *SetExecutionContextFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var err error

	if arglen := len(args); arglen != 2 {
		err = fmt.Errorf("Function requires 2 parameters: script id and list of model ids")
	}

	if err == nil {
		modelIDs, ok := stringList(args[1])

		if !ok {
			err = fmt.Errorf("Second parameter must be a list")
		}

		if err == nil {
			err = f.TM.SetExecutionContext(fmt.Sprint(args[0]), modelIDs)
		}
	}

	return nil, err
}

/*
DocString returns a descriptive string.
*/
func (f *SetExecutionContextFunc) DocString() (string, error) {
	return "Resolves the execution context of the current run from a script id and a set of model ids.", nil
}

/*
RecordAccessFunc records that a module element read a property of a model element.
*/
type RecordAccessFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *RecordAccessFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	if arglen := len(args); arglen != 3 {
		return nil, fmt.Errorf("Function requires 3 parameters: module id, element id and property name")
	}

	return f.TM.RecordAccess(fmt.Sprint(args[0]), fmt.Sprint(args[1]), fmt.Sprint(args[2]))
}

/*
DocString returns a descriptive string.
*/
func (f *RecordAccessFunc) DocString() (string, error) {
	return "Records that a module element read a property of a model element. Returns true if the access is new.", nil
}

/*
RecordAccessesFunc records that a module element read a list of properties of
a model element.
*/
type RecordAccessesFunc struct {
	TM *trace.Manager
}

/*
Run executes the ECAL function.
*/
func (f *RecordAccessesFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	if arglen := len(args); arglen != 3 {
		return nil, fmt.Errorf("Function requires 3 parameters: module id, element id and list of property names")
	}

	names, ok := stringList(args[2])
	if !ok {
		return nil, fmt.Errorf("Third parameter must be a list")
	}

	return f.TM.RecordAccesses(fmt.Sprint(args[0]), fmt.Sprint(args[1]), names)
}

/*
DocString returns a descriptive string.
*/
func (f *RecordAccessesFunc) DocString() (string, error) {
	return "Records that a module element read a list of properties of a model element.", nil
}
