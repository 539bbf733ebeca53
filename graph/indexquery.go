/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import "github.com/krotik/tracestore/graph/util"

/*
IndexQuery models the interface to the value index.
*/
type IndexQuery interface {

	/*
		LookupValue finds all nodes where an attribute has a certain value.
		This call returns a list of node keys.
	*/
	LookupValue(attr, value string) ([]string, error)

	/*
		Count returns the number of nodes where an attribute has a certain value.
	*/
	Count(attr, value string) (int, error)
}

/*
lockedIndexQuery runs index queries under the reader lock of a graph manager.
*/
type lockedIndexQuery struct {
	gm *Manager
	im *util.IndexManager
}

/*
LookupValue finds all nodes where an attribute has a certain value.
*/
func (iq *lockedIndexQuery) LookupValue(attr, value string) ([]string, error) {
	iq.gm.mutex.RLock()
	defer iq.gm.mutex.RUnlock()

	return iq.im.LookupValue(attr, value)
}

/*
Count returns the number of nodes where an attribute has a certain value.
*/
func (iq *lockedIndexQuery) Count(attr, value string) (int, error) {
	iq.gm.mutex.RLock()
	defer iq.gm.mutex.RUnlock()

	return iq.im.Count(attr, value)
}
