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
	"time"

	"github.com/krotik/common/timeutil"
	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/data"
)

/*
Session is the state of one incremental run. It holds the surrogate id of the
active ExecutionContext. No other vertex reference lives longer than a single
operation.
*/
type Session struct {
	ContextID string   `json:"context_id"` // Surrogate id of the ExecutionContext vertex
	ScriptID  string   `json:"script_id"`  // Script id of the ExecutionContext
	ModelIDs  []string `json:"models_ids"` // Sorted model ids of the ExecutionContext
	Created   bool     `json:"created"`    // Flag if the ExecutionContext was created for this session
	Started   string   `json:"started"`    // Timestamp when the session was resolved
}

/*
String returns a string representation of this session.
*/
func (s *Session) String() string {
	return fmt.Sprintf("Session %v (script: %v models: %v)", s.ContextID, s.ScriptID, s.ModelIDs)
}

/*
Store implements the core trace operations on top of a graph manager. All
operations take an explicit session. A store does not hold any state besides
the graph manager and the partition.

The acquire operations of a store are check-then-act: a lookup followed by a
separate create. A store must only be driven by a single writer.
*/
type Store struct {
	gm   *graph.Manager // Graph manager holding the trace graph
	part string         // Partition of the trace graph
}

/*
NewStore creates a new trace store on a given graph manager and partition.
*/
func NewStore(gm *graph.Manager, part string) *Store {
	return &Store{gm, part}
}

/*
GraphManager returns the graph manager of this store.
*/
func (s *Store) GraphManager() *graph.Manager {
	return s.gm
}

/*
Partition returns the graph partition of this store.
*/
func (s *Store) Partition() string {
	return s.part
}

/*
AcquireSession resolves the ExecutionContext for a given script id and set of
model ids and returns a new session for it. The context is created if no
stored context matches.
*/
func (s *Store) AcquireSession(scriptID string, modelIDs []string) (*Session, error) {
	ctx, created, err := s.acquireContext(scriptID, modelIDs)
	if err != nil {
		return nil, err
	}

	return &Session{
		ContextID: ctx.ID(),
		ScriptID:  ctx.scriptID,
		ModelIDs:  ctx.modelIDs,
		Created:   created,
		Started:   timeutil.MakeTimestamp(),
	}, nil
}

/*
contextNode returns a node which refers to the ExecutionContext of a session.
*/
func (s *Store) contextNode(session *Session) data.Node {
	return newVertexNode(session.ContextID, KindExecutionContext)
}

/*
commit commits a given transaction and converts errors into store write failures.
*/
func (s *Store) commit(trans graph.Trans, what string) error {
	start := time.Now()

	if err := trans.Commit(); err != nil {
		metricCommits.WithLabelValues("failed").Inc()
		return newError(ErrStoreWrite, "Could not create "+what, err)
	}

	metricCommits.WithLabelValues("ok").Inc()
	metricCommitDuration.Observe(time.Since(start).Seconds())

	return nil
}
