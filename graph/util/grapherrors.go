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
Package util contains utility classes for the graph storage.

GraphError

Models a graph related error. Low-level errors should be wrapped in a GraphError
before they are returned to a client.

IndexManager

Manages the attribute value index of a node or edge kind. Each attribute value
is converted into a MD5 sum which makes exact value lookups efficient:

PrefixAttrHash + attr + hash (md5) -> keys
*/
package util

import (
	"errors"
	"fmt"
)

/*
GraphError is a graph related error
*/
type GraphError struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (ge *GraphError) Error() string {
	if ge.Detail != "" {
		return fmt.Sprintf("GraphError: %v (%v)", ge.Type, ge.Detail)
	}

	return fmt.Sprintf("GraphError: %v", ge.Type)
}

/*
Unwrap returns the error type of this error.
*/
func (ge *GraphError) Unwrap() error {
	return ge.Type
}

/*
Graph storage related error types
*/
var (
	ErrOpening  = errors.New("Failed to open graph storage")
	ErrFlushing = errors.New("Failed to flush changes")
	ErrRollback = errors.New("Failed to rollback changes")
	ErrClosing  = errors.New("Failed to close graph storage")
)

/*
Graph related error types
*/
var (
	ErrInvalidData = errors.New("Invalid data")
	ErrIndexError  = errors.New("Index error")
	ErrReading     = errors.New("Could not read graph information")
	ErrWriting     = errors.New("Could not write graph information")
	ErrRule        = errors.New("Graph rule error")
)
