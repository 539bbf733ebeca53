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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	var mutex sync.Mutex
	var events []*Event

	LogInfo = LogNull

	m := NewManager("")

	m.AddListener("test.listener", func(evs []*Event) {
		mutex.Lock()
		defer mutex.Unlock()
		events = append(events, evs...)
	})

	require.NoError(t, m.Configure("memory:"+t.Name(), "", "", false))
	require.NoError(t, m.SessionStart())
	defer m.SessionEnd()

	require.NoError(t, m.SetExecutionContext("S", []string{"B", "A"}))

	ok, err := m.RecordAccess("M1", "E1", "p")
	require.NoError(t, err)
	require.True(t, ok)

	// Known accesses produce no events

	ok, err = m.RecordAccess("M1", "E1", "p")
	require.NoError(t, err)
	require.False(t, ok)

	mutex.Lock()
	defer mutex.Unlock()

	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
	}

	assert.Equal(t, []string{
		EventContextCreated,
		EventModuleElementCreated,
		EventModelElementCreated,
		EventTraceCreated,
		EventAccessRecorded,
	}, types)

	assert.Equal(t, map[string]string{AttrScriptID: "S", AttrModelsIDs: "A,B"}, events[0].Attrs)
	assert.Equal(t, m.Session().ContextID, events[0].ID)
	assert.Equal(t, map[string]string{AttrModuleID: "M1"}, events[1].Attrs)
	assert.Equal(t, map[string]string{AttrElementID: "E1"}, events[2].Attrs)
	assert.Equal(t, map[string]string{AttrModuleID: "M1", AttrElementID: "E1"}, events[3].Attrs)

	assert.Equal(t, map[string]string{
		AttrModuleID:  "M1",
		AttrElementID: "E1",
		AttrName:      "p",
		"trace":       events[3].ID,
	}, events[4].Attrs)

	assert.Contains(t, events[4].String(), EventAccessRecorded)

	// Listeners are replaced by name

	m.AddListener("test.listener", func(evs []*Event) {})
	assert.Len(t, m.rules, 1)
}
