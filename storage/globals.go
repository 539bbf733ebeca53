/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package storage

import (
	"errors"
	"fmt"
)

/*
Common storage manager related errors.
*/
var (
	ErrReading = errors.New("Could not read from storage")
	ErrWriting = errors.New("Could not write to storage")
	ErrFlush   = errors.New("Could not flush changes")
	ErrClosed  = errors.New("Storage manager is closed")
)

/*
ManagerError is a storage manager related error.
*/
type ManagerError struct {
	Type        error
	Detail      string
	Managername string
}

/*
NewStorageManagerError returns a new StorageManager specific error.
*/
func NewStorageManagerError(smeType error, smeDetail string, smeManagername string) *ManagerError {
	return &ManagerError{smeType, smeDetail, smeManagername}
}

/*
Error returns a string representation of the error.
*/
func (e *ManagerError) Error() string {
	return fmt.Sprintf("%s (%s - %s)", e.Type.Error(), e.Managername, e.Detail)
}

/*
Unwrap returns the error type so errors.Is can be used on manager errors.
*/
func (e *ManagerError) Unwrap() error {
	return e.Type
}
