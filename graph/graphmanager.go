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

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/krotik/tracestore/graph/graphstorage"
	"github.com/krotik/tracestore/graph/util"
)

/*
Manager data structure
*/
type Manager struct {
	gs           graphstorage.Storage         // Graph storage of this graph manager
	gr           *graphRulesManager           // Manager for graph rules
	mapCache     map[string]map[string]string // Cache which caches maps stored in the main database
	mutex        *sync.RWMutex                // Mutex to protect atomic graph operations
	storageMutex *sync.Mutex                  // Mutex to protect storage manager and main database lookups
}

/*
NewGraphManager returns a new GraphManager instance.
*/
func NewGraphManager(gs graphstorage.Storage) *Manager {
	gm := createGraphManager(gs)

	gm.SetGraphRule(&SystemRuleUpdateNodeStats{})

	return gm
}

/*
createGraphManager creates a new GraphManager instance.
*/
func createGraphManager(gs graphstorage.Storage) *Manager {

	mdb := gs.MainDB()

	// Check version

	if version, ok := mdb[MainDBVersion]; !ok {

		mdb[MainDBVersion] = strconv.Itoa(VERSION)
		gs.FlushMain()

	} else {

		if v, _ := strconv.Atoi(version); v > VERSION {

			panic(fmt.Sprintf("Cannot open graph storage of version: %v - "+
				"max supported version: %v", version, VERSION))

		} else if v < VERSION {

			// Update the version if it is older

			mdb[MainDBVersion] = strconv.Itoa(VERSION)
			gs.FlushMain()
		}
	}

	gm := &Manager{gs, &graphRulesManager{nil, make(map[string]Rule),
		make(map[int]map[string]Rule)}, make(map[string]map[string]string),
		&sync.RWMutex{}, &sync.Mutex{}}

	gm.gr.gm = gm

	return gm
}

/*
Name returns the name of this graph manager.
*/
func (gm *Manager) Name() string {
	return fmt.Sprint("Graph ", gm.gs.Name())
}

/*
Storage returns the graph storage of this graph manager.
*/
func (gm *Manager) Storage() graphstorage.Storage {
	return gm.gs
}

/*
SetGraphRule sets a GraphRule.
*/
func (gm *Manager) SetGraphRule(rule Rule) {
	gm.gr.SetGraphRule(rule)
}

/*
GraphRules returns a list of all available graph rules.
*/
func (gm *Manager) GraphRules() []string {
	return gm.gr.GraphRules()
}

/*
NodeIndexQuery returns an object to query the value index for nodes. Returns
nil if no node of the given kind was ever stored.
*/
func (gm *Manager) NodeIndexQuery(part string, kind string) (IndexQuery, error) {
	sm, err := gm.getNodeIndexStorage(part, kind, false)
	if err != nil || sm == nil {
		return nil, err
	}

	return &lockedIndexQuery{gm, util.NewIndexManager(sm)}, nil
}

/*
NodeKinds returns all possible node kinds.
*/
func (gm *Manager) NodeKinds() []string {
	return gm.mainStringList(MainDBNodeKinds)
}

/*
EdgeKinds returns all possible edge kinds.
*/
func (gm *Manager) EdgeKinds() []string {
	return gm.mainStringList(MainDBEdgeKinds)
}

/*
NodeAttrs returns all possible node attributes for a given node kind.
*/
func (gm *Manager) NodeAttrs(kind string) []string {
	return gm.mainStringList(MainDBNodeAttrs + kind)
}

/*
NodeEdges returns all possible node edge specs for a given node kind.
*/
func (gm *Manager) NodeEdges(kind string) []string {
	return gm.mainStringList(MainDBNodeEdges + kind)
}

/*
EdgeAttrs returns all possible edge attributes for a given edge kind.
*/
func (gm *Manager) EdgeAttrs(kind string) []string {
	return gm.mainStringList(MainDBEdgeAttrs + kind)
}

/*
UserEntry returns an application specific entry of the main database.
*/
func (gm *Manager) UserEntry(key string) (string, bool) {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	val, ok := gm.gs.MainDB()[MainDBUserEntryPrefix+key]

	return val, ok
}

/*
SetUserEntry writes an application specific entry to the main database.
*/
func (gm *Manager) SetUserEntry(key string, value string) error {
	gm.mutex.Lock()
	defer gm.mutex.Unlock()

	gm.gs.MainDB()[MainDBUserEntryPrefix+key] = value

	if err := gm.gs.FlushMain(); err != nil {
		return &util.GraphError{Type: util.ErrFlushing, Detail: err.Error()}
	}

	return nil
}

/*
mainStringList returns a list from the MainDB.
*/
func (gm *Manager) mainStringList(name string) []string {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	gm.storageMutex.Lock()
	defer gm.storageMutex.Unlock()

	items := gm.getMainDBMap(name)

	var ret []string

	if items != nil {
		for item := range items {
			ret = append(ret, item)
		}
	}

	sort.StringSlice(ret).Sort()

	return ret
}
