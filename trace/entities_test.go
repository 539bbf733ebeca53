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
	"testing"

	"github.com/krotik/tracestore/graph/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNode(t *testing.T) {
	node := newVertexNode("123", KindModuleElement)
	node.SetAttr(AttrModuleID, "M1")

	me, err := wrapModuleElement(node)
	require.NoError(t, err)
	assert.Equal(t, "123", me.ID())
	assert.Equal(t, KindModuleElement, me.Kind())
	assert.Equal(t, "M1", me.moduleID)

	ref := me.node()
	assert.Equal(t, "123", ref.Key())
	assert.Equal(t, KindModuleElement, ref.Kind())

	// Wrong kind

	_, err = wrapModelElement(node)
	assert.True(t, errors.Is(err, ErrHandleAdaptation))
	assert.Equal(t, "TraceStore error: Could not adapt vertex (Vertex 123 is of kind ModuleElement not ModelElement)",
		err.Error())

	// Missing attribute

	_, err = wrapProperty(newVertexNode("456", KindProperty))
	assert.True(t, errors.Is(err, ErrHandleAdaptation))

	// Missing key

	_, err = wrapTrace(data.NewGraphNode())
	assert.True(t, errors.Is(err, ErrHandleAdaptation))

	_, err = wrapNode(newVertexNode("789", "Foo"), "Foo")
	assert.True(t, errors.Is(err, ErrHandleAdaptation))

	tr, err := wrapTrace(newVertexNode("789", KindTrace))
	require.NoError(t, err)
	assert.Equal(t, "789", tr.ID())

	// Context model ids can be stored as generic lists

	ctx := newVertexNode("1", KindExecutionContext)
	ctx.SetAttr(AttrScriptID, "S")
	ctx.SetAttr(AttrModelsIDs, []interface{}{"A", 1})

	ch, err := wrapContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "S", ch.scriptID)
	assert.Equal(t, []string{"A", "1"}, ch.modelIDs)

	ctx.SetAttr(AttrModelsIDs, nil)
	_, err = wrapContext(ctx)
	assert.True(t, errors.Is(err, ErrHandleAdaptation))

	el := newVertexNode("2", KindModelElement)
	el.SetAttr(AttrElementID, 5)
	_, err = wrapModelElement(el)
	assert.True(t, errors.Is(err, ErrHandleAdaptation))
}

func TestIDSets(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, normalizeIDs([]string{"C", "A", "B", "A"}))
	assert.Equal(t, []string{}, normalizeIDs(nil))

	assert.True(t, sameIDSet([]string{"A", "B"}, []string{"B", "A"}))
	assert.True(t, sameIDSet([]string{"A", "B"}, []string{"B", "A", "B"}))
	assert.True(t, sameIDSet(nil, []string{}))
	assert.False(t, sameIDSet([]string{"A", "B"}, []string{"A"}))
	assert.False(t, sameIDSet([]string{"A"}, []string{"A", "B"}))
	assert.False(t, sameIDSet([]string{"A", "C"}, []string{"A", "B"}))
}

func TestError(t *testing.T) {
	cause := errors.New("testerror")

	err := newError(ErrStoreWrite, "Could not create Trace", cause)

	assert.Equal(t, "TraceStore error: Could not write to the store (Could not create Trace): testerror", err.Error())
	assert.True(t, errors.Is(err, ErrStoreWrite))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrConnection))

	err = newError(ErrConfiguration, "", nil)
	assert.Equal(t, "TraceStore error: Configuration error", err.Error())
	assert.Equal(t, []error{ErrConfiguration}, err.Unwrap())
}
