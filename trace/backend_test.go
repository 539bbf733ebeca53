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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
checkPersistentBackend runs two runs against a persistent backend URL.
*/
func checkPersistentBackend(t *testing.T, url string) {
	LogInfo = LogNull

	m := NewManager("")

	// A missing schema is an error if it should not be created

	require.NoError(t, m.Configure(url, "admin", "secret", false))

	err := m.SessionStart()
	assert.True(t, errors.Is(err, ErrConnection), "Unexpected error: %v", err)

	// First run provisions the schema

	require.NoError(t, m.Configure(url, "admin", "secret", true))
	require.NoError(t, m.SessionStart())
	require.NoError(t, m.SetExecutionContext("S", []string{"A", "B"}))

	ok, err := m.RecordAccesses("M1", "E1", []string{"p", "q"})
	require.NoError(t, err)
	assert.True(t, ok)

	ctxID := m.Session().ContextID

	// Only a salted hash of the credentials is stored

	gm := m.Store().GraphManager()

	salt, ok := gm.UserEntry(UserEntrySalt)
	require.True(t, ok)
	assert.Len(t, salt, 64)

	secret, _ := gm.UserEntry(UserEntrySecret)
	assert.Equal(t, m.config.secret(salt), secret)
	assert.NotContains(t, secret, "secret")

	require.NoError(t, m.SessionEnd())

	// Wrong credentials

	require.NoError(t, m.Configure(url, "admin", "wrong", false))

	err = m.IncrementalSessionStart()
	assert.True(t, errors.Is(err, ErrConnection), "Unexpected error: %v", err)

	require.NoError(t, m.Configure(url, "other", "secret", false))

	err = m.SessionStart()
	assert.True(t, errors.Is(err, ErrConnection), "Unexpected error: %v", err)

	// Incremental run finds the earlier data

	require.NoError(t, m.Configure(url, "admin", "secret", false))
	require.NoError(t, m.IncrementalSessionStart())
	require.NoError(t, m.SetExecutionContext("S", []string{"B", "A"}))

	assert.Equal(t, ctxID, m.Session().ContextID)

	traces, err := m.FindTracesByProperty("E1", "q")
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "M1", traces[0].ModuleID)
	assert.Equal(t, []string{"p", "q"}, traces[0].Properties)

	ok, err = m.RecordAccess("M1", "E1", "p")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.RunGC())
	require.NoError(t, m.SessionEnd())
}

func TestBadgerBackend(t *testing.T) {
	checkPersistentBackend(t, "plocal:"+filepath.Join(t.TempDir(), "db"))
}

func TestSQLiteBackend(t *testing.T) {
	checkPersistentBackend(t, "sqlite:"+filepath.Join(t.TempDir(), "traces.db"))
}

func TestBackendConfig(t *testing.T) {
	bc, err := newBackendConfig("plocal:/tmp/db:x", "admin", "secret", true)
	require.NoError(t, err)

	assert.Equal(t, SchemePLocal, bc.scheme)
	assert.Equal(t, "/tmp/db:x", bc.location)
	assert.True(t, bc.persistent())
	assert.Len(t, bc.secret("s1"), 64)
	assert.Equal(t, bc.secret("s1"), bc.secret("s1"))
	assert.NotEqual(t, bc.secret("s1"), bc.secret("s2"))

	other, err := newBackendConfig("plocal:/tmp/db", "admin", "secret2", true)
	require.NoError(t, err)
	assert.NotEqual(t, bc.secret("s1"), other.secret("s1"))

	salt1, err := newSalt()
	require.NoError(t, err)
	salt2, err := newSalt()
	require.NoError(t, err)

	assert.Len(t, salt1, 64)
	assert.NotEqual(t, salt1, salt2)

	bc, err = newBackendConfig("memory:test", "", "", false)
	require.NoError(t, err)
	assert.False(t, bc.persistent())
}
