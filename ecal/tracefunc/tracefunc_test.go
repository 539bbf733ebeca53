/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package tracefunc

import (
	"errors"
	"testing"

	"github.com/krotik/tracestore/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *trace.Manager {
	trace.LogInfo = trace.LogNull

	tm := trace.NewManager("")
	require.NoError(t, tm.Configure("memory:"+t.Name(), "", "", false))
	require.NoError(t, tm.SessionStart())

	t.Cleanup(func() {
		tm.SessionEnd()
	})

	return tm
}

func TestSetExecutionContext(t *testing.T) {
	tm := newTestManager(t)

	f := &SetExecutionContextFunc{tm}

	if _, err := f.DocString(); err != nil {
		t.Error(err)
		return
	}

	if _, err := f.Run("", nil, nil, 0, []interface{}{"S"}); err == nil ||
		err.Error() != "Function requires 2 parameters: script id and list of model ids" {
		t.Error(err)
		return
	}

	if _, err := f.Run("", nil, nil, 0, []interface{}{"S", "A"}); err == nil ||
		err.Error() != "Second parameter must be a list" {
		t.Error(err)
		return
	}

	sf := &SessionFunc{tm}

	if res, _ := sf.Run("", nil, nil, 0, nil); res != nil {
		t.Error("Unexpected result:", res)
		return
	}

	if _, err := f.Run("", nil, nil, 0, []interface{}{"S", []interface{}{"B", "A"}}); err != nil {
		t.Error(err)
		return
	}

	res, err := sf.Run("", nil, nil, 0, nil)
	require.NoError(t, err)

	session := res.(map[interface{}]interface{})
	assert.Equal(t, "S", session["scriptId"])
	assert.Equal(t, []interface{}{"A", "B"}, session["modelsIds"])
	assert.Equal(t, true, session["created"])
	assert.Equal(t, tm.Session().ContextID, session["contextId"])

	_, err = sf.DocString()
	assert.NoError(t, err)
}

func TestRecordAndFind(t *testing.T) {
	tm := newTestManager(t)

	ra := &RecordAccessFunc{tm}
	ras := &RecordAccessesFunc{tm}
	ft := &FindTracesFunc{tm}

	for _, f := range []interface{ DocString() (string, error) }{ra, ras, ft} {
		if _, err := f.DocString(); err != nil {
			t.Error(err)
			return
		}
	}

	// Recording without execution context is a configuration error

	_, err := ra.Run("", nil, nil, 0, []interface{}{"M1", "E1", "p"})
	assert.True(t, errors.Is(err, trace.ErrConfiguration), "Unexpected error: %v", err)

	require.NoError(t, tm.SetExecutionContext("S", []string{"A"}))

	if _, err := ra.Run("", nil, nil, 0, []interface{}{"M1", "E1"}); err == nil ||
		err.Error() != "Function requires 3 parameters: module id, element id and property name" {
		t.Error(err)
		return
	}

	res, err := ra.Run("", nil, nil, 0, []interface{}{"M1", "E1", "p"})
	require.NoError(t, err)
	assert.Equal(t, true, res)

	res, err = ra.Run("", nil, nil, 0, []interface{}{"M1", "E1", "p"})
	require.NoError(t, err)
	assert.Equal(t, false, res)

	if _, err := ras.Run("", nil, nil, 0, []interface{}{"M1", "E1", "q"}); err == nil ||
		err.Error() != "Third parameter must be a list" {
		t.Error(err)
		return
	}

	if _, err := ras.Run("", nil, nil, 0, []interface{}{"M1"}); err == nil ||
		err.Error() != "Function requires 3 parameters: module id, element id and list of property names" {
		t.Error(err)
		return
	}

	res, err = ras.Run("", nil, nil, 0, []interface{}{"M2", "E1", []interface{}{"q", "r"}})
	require.NoError(t, err)
	assert.Equal(t, true, res)

	if _, err := ft.Run("", nil, nil, 0, nil); err == nil ||
		err.Error() != "Function requires 1 or 2 parameters: element id and optionally a property name" {
		t.Error(err)
		return
	}

	res, err = ft.Run("", nil, nil, 0, []interface{}{"E1"})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = ft.Run("", nil, nil, 0, []interface{}{"E1", "r"})
	require.NoError(t, err)

	traces := res.([]interface{})
	require.Len(t, traces, 1)

	tr := traces[0].(map[interface{}]interface{})
	assert.Equal(t, "M2", tr["moduleId"])
	assert.Equal(t, "E1", tr["elementId"])
	assert.Equal(t, []interface{}{"q", "r"}, tr["properties"])

	// Unknown elements are an empty result

	res, err = ft.Run("", nil, nil, 0, []interface{}{"E9"})
	require.NoError(t, err)
	assert.Len(t, res, 0)
}

func TestInfo(t *testing.T) {
	tm := newTestManager(t)

	require.NoError(t, tm.SetExecutionContext("S", []string{"A"}))
	_, err := tm.RecordAccess("M1", "E1", "p")
	require.NoError(t, err)

	f := &InfoFunc{tm}

	_, err = f.DocString()
	assert.NoError(t, err)

	res, err := f.Run("", nil, nil, 0, nil)
	require.NoError(t, err)

	info := res.(map[interface{}]interface{})
	assert.Equal(t, "memory:"+t.Name(), info["backend"])
	assert.Equal(t, trace.DefaultPartition, info["partition"])

	nodeCounts := info["nodeCounts"].(map[interface{}]interface{})
	assert.Equal(t, float64(1), nodeCounts[trace.KindTrace])
	assert.Equal(t, float64(1), nodeCounts[trace.KindProperty])

	require.NoError(t, tm.SessionEnd())

	_, err = f.Run("", nil, nil, 0, nil)
	assert.True(t, errors.Is(err, trace.ErrConfiguration))

	tm.SessionStart()
}
