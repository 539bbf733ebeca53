/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package trace

import (
	"errors"
	"fmt"
)

/*
Error is the single failure kind of the trace store. It carries the error
type, a detail message and the original cause.
*/
type Error struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
	Cause  error  // Original cause (may be nil)
}

/*
Error returns a human-readable string representation of this error.
*/
func (e *Error) Error() string {
	ret := fmt.Sprintf("TraceStore error: %v", e.Type)

	if e.Detail != "" {
		ret = fmt.Sprintf("%v (%v)", ret, e.Detail)
	}

	if e.Cause != nil {
		ret = fmt.Sprintf("%v: %v", ret, e.Cause)
	}

	return ret
}

/*
Unwrap returns the error type and the cause of this error.
*/
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Type, e.Cause}
	}
	return []error{e.Type}
}

/*
Trace store error types
*/
var (
	ErrConfiguration    = errors.New("Configuration error")
	ErrConnection       = errors.New("Connection error")
	ErrStoreWrite       = errors.New("Could not write to the store")
	ErrHandleAdaptation = errors.New("Could not adapt vertex")
)

/*
newError creates a new trace store error.
*/
func newError(errType error, detail string, cause error) *Error {
	return &Error{errType, detail, cause}
}
