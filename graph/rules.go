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
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
)

/*
ErrEventHandled is a special error which an event handler can return to
notify the GraphManager that no further action is necessary. No error will
be returned by the GraphManager operation.
*/
var ErrEventHandled = errors.New("Graph event handled")

/*
GraphRulesManager data structure
*/
type graphRulesManager struct {
	gm       *Manager                // GraphManager which provides events
	rules    map[string]Rule         // Map of graph rules
	eventMap map[int]map[string]Rule // Map of events to graph rules
}

/*
Rule models a graph rule.
*/
type Rule interface {

	/*
	   Name returns the name of the rule.
	*/
	Name() string

	/*
		Handles returns a list of events which are handled by this rule.
	*/
	Handles() []int

	/*
		Handle handles an event. The function should write all changes to the
		given transaction. The given graph manager must only be used for queries.
	*/
	Handle(gm *Manager, trans Trans, event int, data ...interface{}) error
}

/*
graphEvent main event handler which receives all graph related events.
*/
func (gr *graphRulesManager) graphEvent(trans Trans, event int, data ...interface{}) error {
	var result error
	var errs []string

	rules, ok := gr.eventMap[event]

	// Rules are executed in a stable order

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	handled := false // Flag to return a special handled error if no other error occured

	if ok {

		for _, name := range names {
			rule := rules[name]

			// Create a GraphManager clone which can be used for queries only

			gmclone := gr.cloneGraphManager()

			// Handle the event

			err := rule.Handle(gmclone, trans, event, data...)

			if err != nil {
				if err == ErrEventHandled {
					handled = true
				} else {
					errs = append(errs, err.Error())
				}
			}
		}
	}

	if errs != nil {
		return &util.GraphError{Type: util.ErrRule, Detail: strings.Join(errs, ";")}
	}

	if handled {
		result = ErrEventHandled
	}

	return result
}

/*
Clone a given graph manager and insert a new RWMutex.
*/
func (gr *graphRulesManager) cloneGraphManager() *Manager {
	return &Manager{gr.gm.gs, gr, gr.gm.mapCache, &sync.RWMutex{}, &sync.Mutex{}}
}

/*
SetGraphRule sets a GraphRule.
*/
func (gr *graphRulesManager) SetGraphRule(rule Rule) {
	gr.rules[rule.Name()] = rule

	for _, handledEvent := range rule.Handles() {

		rules, ok := gr.eventMap[handledEvent]
		if !ok {
			rules = make(map[string]Rule)
			gr.eventMap[handledEvent] = rules
		}

		rules[rule.Name()] = rule
	}
}

/*
GraphRules returns a list of all available graph rules.
*/
func (gr *graphRulesManager) GraphRules() []string {
	ret := make([]string, 0, len(gr.rules))

	for rule := range gr.rules {
		ret = append(ret, rule)
	}

	sort.StringSlice(ret).Sort()

	return ret
}

// System rule SystemRuleUpdateNodeStats
// =====================================

/*
SystemRuleUpdateNodeStats is a system rule to update info entries such as
known node or edge kinds in the MainDB.
*/
type SystemRuleUpdateNodeStats struct {
}

/*
Name returns the name of the rule.
*/
func (r *SystemRuleUpdateNodeStats) Name() string {
	return "system.updatenodestats"
}

/*
Handles returns a list of events which are handled by this rule.
*/
func (r *SystemRuleUpdateNodeStats) Handles() []int {
	return []int{EventNodeCreated, EventNodeUpdated,
		EventEdgeCreated, EventEdgeUpdated}
}

/*
Handle handles an event.
*/
func (r *SystemRuleUpdateNodeStats) Handle(gm *Manager, trans Trans, event int, ed ...interface{}) error {
	attrMap := MainDBNodeAttrs

	if event == EventEdgeUpdated {
		attrMap = MainDBEdgeAttrs

	} else if event == EventEdgeCreated {
		edge := ed[1].(data.Edge)

		updateNodeRels := func(key string, kind string) {
			spec := edge.Spec(key)
			specs := gm.getMainDBMap(MainDBNodeEdges + kind)

			if specs != nil {
				if _, ok := specs[spec]; !ok {
					specs[spec] = ""
					gm.storeMainDBMap(MainDBNodeEdges+kind, specs)
				}
			}
		}

		// Update stored relationships for both ends

		updateNodeRels(edge.End1Key(), edge.End1Kind())
		updateNodeRels(edge.End2Key(), edge.End2Kind())

		attrMap = MainDBEdgeAttrs
	}

	node := ed[1].(data.Node)
	kind := node.Kind()

	// Check if a new partition or kind was used

	if event == EventNodeCreated || event == EventEdgeCreated {
		part := ed[0].(string)

		updateMainDB := func(entry string, val string) {
			vals := gm.getMainDBMap(entry)
			if _, ok := vals[val]; !ok {
				vals[val] = ""
				gm.storeMainDBMap(entry, vals)
			}
		}

		updateMainDB(MainDBParts, part)

		if event == EventNodeCreated {
			updateMainDB(MainDBNodeKinds, kind)
		} else {
			updateMainDB(MainDBEdgeKinds, kind)
		}
	}

	storeAttrs := false

	attrs := gm.getMainDBMap(attrMap + kind)

	if attrs != nil {

		// Update stored node attributes

		for attr := range node.Data() {
			if _, ok := attrs[attr]; !ok {
				attrs[attr] = ""
				storeAttrs = true
			}
		}

		// Store attribute map if something was changed

		if storeAttrs {
			gm.storeMainDBMap(attrMap+kind, attrs)
		}
	}

	return nil
}
