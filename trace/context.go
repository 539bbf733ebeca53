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
	"fmt"

	"github.com/krotik/tracestore/graph"
)

/*
acquireContext returns the ExecutionContext with a given script id and set of
model ids. Candidates are looked up through the script id index. A candidate
matches only if its model ids are exactly the requested set (order and
duplicates do not matter). A new context is created if no candidate matches.
The second return value is true if the context was created.
*/
func (s *Store) acquireContext(scriptID string, modelIDs []string) (*contextHandle, bool, error) {
	modelIDs = normalizeIDs(modelIDs)

	ctx, err := s.lookupContext(scriptID, modelIDs)
	if err != nil {
		metricAcquire.WithLabelValues(KindExecutionContext, "failed").Inc()
		return nil, false, err
	} else if ctx != nil {
		metricAcquire.WithLabelValues(KindExecutionContext, "found").Inc()
		return ctx, false, nil
	}

	node := newVertex(KindExecutionContext)
	node.SetAttr(AttrScriptID, scriptID)
	node.SetAttr(AttrModelsIDs, modelIDs)

	trans := graph.NewGraphTrans(s.gm)

	if err = trans.StoreNode(s.part, node); err != nil {
		trans.Rollback()
		err = newError(ErrStoreWrite, "Could not create "+KindExecutionContext, err)
	} else {
		err = s.commit(trans, KindExecutionContext)
	}

	if err != nil {
		metricAcquire.WithLabelValues(KindExecutionContext, "failed").Inc()
		return nil, false, err
	}

	metricAcquire.WithLabelValues(KindExecutionContext, "created").Inc()
	LogInfo("Created ", KindExecutionContext, " ", node.Key(), " (script: ", scriptID, " models: ", modelIDs, ")")

	ctx, err = wrapContext(node)

	return ctx, true, err
}

/*
lookupContext looks up a stored ExecutionContext. The given model ids must be
normalized. Returns nil if no stored context matches.
*/
func (s *Store) lookupContext(scriptID string, modelIDs []string) (*contextHandle, error) {

	iq, err := s.gm.NodeIndexQuery(s.part, KindExecutionContext)
	if err != nil {
		return nil, newError(ErrConnection, "Could not access context index", err)
	} else if iq == nil {
		return nil, nil
	}

	keys, err := iq.LookupValue(AttrScriptID, scriptID)
	if err != nil {
		return nil, newError(ErrConnection, "Could not lookup context "+scriptID, err)
	}

	nodes, err := s.gm.FetchNodes(s.part, keys, KindExecutionContext)
	if err != nil {
		return nil, newError(ErrConnection, "Could not fetch context "+scriptID, err)
	}

	for _, node := range nodes {
		ctx, err := wrapContext(node)
		if err != nil {
			return nil, err
		}

		if ctx.scriptID != scriptID {
			return nil, newError(ErrHandleAdaptation,
				fmt.Sprintf("Context %v has unexpected script id %v", ctx.ID(), ctx.scriptID), nil)
		}

		if sameIDSet(ctx.modelIDs, modelIDs) {
			return ctx, nil
		}
	}

	return nil, nil
}

/*
sameIDSet checks if two lists of ids contain the same set of ids. The
symmetric difference of both sets must be empty.
*/
func sameIDSet(ids1 []string, ids2 []string) bool {
	set1 := make(map[string]bool, len(ids1))
	set2 := make(map[string]bool, len(ids2))

	for _, id := range ids1 {
		set1[id] = true
	}

	for _, id := range ids2 {
		if !set1[id] {
			return false
		}
		set2[id] = true
	}

	for id := range set1 {
		if !set2[id] {
			return false
		}
	}

	return true
}
