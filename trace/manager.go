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
	"sync"

	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/graphstorage"
)

/*
Manager is the service surface of the trace store for a host execution engine.
It owns the backend connection and the active session.

Operations hold a reader lock for their whole duration. Lifecycle calls and
SetExecutionContext take the writer lock so the active context is never
replaced under a running operation. The manager does not make concurrent
writers safe: all recording must be driven by a single writer.
*/
type Manager struct {
	mutex       *sync.RWMutex                                // Mutex protecting the manager state
	part        string                                       // Partition of the trace graph
	config      *backendConfig                               // Backend configuration
	gs          graphstorage.Storage                         // Graph storage of the open backend
	store       *Store                                       // Store of the open backend
	session     *Session                                     // Active session
	rules       []graph.Rule                                 // Graph rules for every opened graph
	memStorages map[string]*graphstorage.MemoryGraphStorage // Memory backends by name
}

/*
Info contains statistics of an open trace store.
*/
type Info struct {
	Backend    string            `json:"backend"`           // Backend URL
	Partition  string            `json:"partition"`         // Graph partition
	Session    *Session          `json:"session,omitempty"` // Active session
	NodeCounts map[string]uint64 `json:"node_counts"`       // Vertex counts by kind
	EdgeCounts map[string]uint64 `json:"edge_counts"`       // Edge counts by kind
}

/*
NewManager creates a new unconfigured trace store manager. An empty partition
name selects the default partition.
*/
func NewManager(part string) *Manager {
	if part == "" {
		part = DefaultPartition
	}

	return &Manager{&sync.RWMutex{}, part, nil, nil, nil, nil, nil,
		make(map[string]*graphstorage.MemoryGraphStorage)}
}

/*
AddRule adds a graph rule which is attached to every graph opened by this
manager (including the currently open one). A rule replaces an earlier rule
with the same name.
*/
func (m *Manager) AddRule(rule graph.Rule) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	rules := make([]graph.Rule, 0, len(m.rules)+1)
	for _, r := range m.rules {
		if r.Name() != rule.Name() {
			rules = append(rules, r)
		}
	}

	m.rules = append(rules, rule)

	if m.store != nil {
		m.store.gm.SetGraphRule(rule)
	}
}

/*
AddListener adds a named listener for trace store events.
*/
func (m *Manager) AddListener(name string, listener EventListener) {
	m.AddRule(NewEventRule(name, m.part, listener))
}

/*
Configure sets the backend of the trace store. The backend URL has the form
<scheme>:<location> with the schemes memory, plocal (badger directory) and
sqlite (database file). The createSchema flag controls if a missing schema is
provisioned when a session starts. Memory backends always provision the schema.
*/
func (m *Manager) Configure(backendURL string, user string, password string, createSchema bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.gs != nil {
		return newError(ErrConfiguration, "Cannot configure while a session is active", nil)
	}

	config, err := newBackendConfig(backendURL, user, password, createSchema)
	if err != nil {
		return err
	}

	m.config = config

	return nil
}

/*
SessionStart opens the backend for a new run.
*/
func (m *Manager) SessionStart() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.openSession(false)
}

/*
IncrementalSessionStart opens the backend for an incremental run. The schema
is never provisioned: the backend must contain the data of an earlier run.
*/
func (m *Manager) IncrementalSessionStart() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.openSession(true)
}

/*
openSession opens the configured backend. The caller must hold the writer lock.
*/
func (m *Manager) openSession(incremental bool) error {
	var gs graphstorage.Storage
	var err error

	if m.config == nil {
		return newError(ErrConfiguration, "Trace store is not configured", nil)
	} else if m.gs != nil {
		return newError(ErrConfiguration, "Session already started", nil)
	}

	provision := !incremental && (m.config.createSchema || !m.config.persistent())

	if !m.config.persistent() {
		mgs, ok := m.memStorages[m.config.location]

		if incremental {
			if !ok {
				return newError(ErrConnection, "No earlier run in "+m.config.url, nil)
			}
		} else {
			mgs = graphstorage.NewMemoryGraphStorage(m.config.location)
			m.memStorages[m.config.location] = mgs
		}

		gs = mgs

	} else if gs, err = m.config.openStorage(); err != nil {
		return err
	}

	gm := graph.NewGraphManager(gs)

	for _, rule := range m.rules {
		gm.SetGraphRule(rule)
	}

	if err = m.config.checkSchema(gm, provision); err != nil {
		gs.Close()
		return err
	}

	m.gs = gs
	m.store = NewStore(gm, m.part)
	m.session = nil

	LogInfo("Opened trace store ", m.config.url, " (incremental: ", incremental, ")")

	return nil
}

/*
SessionEnd closes the backend of the current run.
*/
func (m *Manager) SessionEnd() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.gs == nil {
		return newError(ErrConfiguration, "No active session", nil)
	}

	err := m.gs.Close()

	m.gs = nil
	m.store = nil
	m.session = nil

	if err != nil {
		return newError(ErrConnection, "Could not close backend "+m.config.url, err)
	}

	LogInfo("Closed trace store ", m.config.url)

	return nil
}

/*
SetExecutionContext resolves the ExecutionContext of the current run. The
context is matched by script id and by the exact set of model ids.
*/
func (m *Manager) SetExecutionContext(scriptID string, modelIDs []string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.config == nil {
		return newError(ErrConfiguration, "Trace store is not configured", nil)
	} else if m.store == nil {
		return newError(ErrConfiguration, "No active session", nil)
	}

	session, err := m.store.AcquireSession(scriptID, modelIDs)
	if err != nil {
		return err
	}

	m.session = session

	LogDebug("Execution context: ", session)

	return nil
}

/*
RecordAccess records that a module element read a property of a model element.
Returns true if the access was newly recorded and false if it was already known.
*/
func (m *Manager) RecordAccess(moduleID string, elementID string, propertyName string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	store, session, err := m.activeSession()
	if err != nil {
		return false, err
	}

	return store.RecordAccess(session, moduleID, elementID, propertyName)
}

/*
RecordAccesses records that a module element read a list of properties of a
model element. Returns true if all accesses were successfully handled.
*/
func (m *Manager) RecordAccesses(moduleID string, elementID string, propertyNames []string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	store, session, err := m.activeSession()
	if err != nil {
		return false, err
	}

	return store.RecordAccesses(session, moduleID, elementID, propertyNames)
}

/*
FindTraces returns all traces of the current run which reach a given model element.
*/
func (m *Manager) FindTraces(elementID string) ([]*Trace, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	store, session, err := m.activeSession()
	if err != nil {
		return nil, err
	}

	return store.FindTraces(session, elementID)
}

/*
FindTracesByProperty returns all traces of the current run which reach a given
model element and accessed a given property.
*/
func (m *Manager) FindTracesByProperty(elementID string, propertyName string) ([]*Trace, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	store, session, err := m.activeSession()
	if err != nil {
		return nil, err
	}

	return store.FindTracesByProperty(session, elementID, propertyName)
}

/*
Session returns a copy of the active session or nil if no execution context
was set.
*/
func (m *Manager) Session() *Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.session == nil {
		return nil
	}

	s := *m.session
	s.ModelIDs = append([]string(nil), m.session.ModelIDs...)

	return &s
}

/*
Store returns the store of the open backend or nil if no session was started.
*/
func (m *Manager) Store() *Store {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.store
}

/*
Info returns statistics of the open backend.
*/
func (m *Manager) Info() (*Info, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.store == nil {
		return nil, newError(ErrConfiguration, "No active session", nil)
	}

	gm := m.store.gm

	info := &Info{
		Backend:    m.config.url,
		Partition:  m.part,
		NodeCounts: make(map[string]uint64),
		EdgeCounts: make(map[string]uint64),
	}

	if m.session != nil {
		s := *m.session
		info.Session = &s
	}

	for _, kind := range gm.NodeKinds() {
		info.NodeCounts[kind] = gm.NodeCount(kind)
	}

	for _, kind := range gm.EdgeKinds() {
		info.EdgeCounts[kind] = gm.EdgeCount(kind)
	}

	return info, nil
}

/*
RunGC runs the garbage collection of a persistent badger backend. Other
backends are not affected.
*/
func (m *Manager) RunGC() error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if bgs, ok := m.gs.(*graphstorage.BadgerGraphStorage); ok {
		return bgs.RunGC()
	}

	return nil
}

/*
activeSession returns the store and the session of the current run. The
caller must hold the reader lock.
*/
func (m *Manager) activeSession() (*Store, *Session, error) {
	if m.config == nil {
		return nil, nil, newError(ErrConfiguration, "Trace store is not configured", nil)
	} else if m.store == nil {
		return nil, nil, newError(ErrConfiguration, "No active session", nil)
	} else if m.session == nil {
		return nil, nil, newError(ErrConfiguration, "No execution context", nil)
	}

	return m.store, m.session, nil
}
