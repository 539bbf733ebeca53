/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/krotik/tracestore/storage"
)

func TestIndexManager(t *testing.T) {
	sm := storage.NewMemoryStorageManager("testindex")
	im := NewIndexManager(sm)

	if err := im.Index("1", map[string]string{"script_id": "s1", "name": "x"}); err != nil {
		t.Error(err)
		return
	}

	if err := im.Index("2", map[string]string{"script_id": "s1"}); err != nil {
		t.Error(err)
		return
	}

	if res, err := im.LookupValue("script_id", "s1"); err != nil || fmt.Sprint(res) != "[1 2]" {
		t.Error("Unexpected result:", res, err)
		return
	}

	// Lookups are case-sensitive

	if res, err := im.LookupValue("script_id", "S1"); err != nil || res != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := im.Count("name", "x"); err != nil || res != 1 {
		t.Error("Unexpected result:", res, err)
		return
	}

	if err := im.Reindex("1", map[string]string{"script_id": "s2", "name": "x"},
		map[string]string{"script_id": "s1", "name": "x"}); err != nil {
		t.Error(err)
		return
	}

	if res, _ := im.LookupValue("script_id", "s1"); fmt.Sprint(res) != "[2]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := im.LookupValue("script_id", "s2"); fmt.Sprint(res) != "[1]" {
		t.Error("Unexpected result:", res)
		return
	}

	if err := im.Deindex("2", map[string]string{"script_id": "s1"}); err != nil {
		t.Error(err)
		return
	}

	if res, _ := im.Count("script_id", "s1"); res != 0 {
		t.Error("Unexpected result:", res)
		return
	}

	if im.String() != "IndexManager: testindex (2 value entries)" {
		t.Error("Unexpected string output:", im.String())
		return
	}

	// Simulate storage errors

	sm.AccessMap[PrefixAttrHash] = storage.AccessGetError

	if _, err := im.LookupValue("script_id", "s2"); !errors.Is(err, ErrIndexError) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := im.Count("script_id", "s2"); !errors.Is(err, ErrIndexError) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := im.Index("3", map[string]string{"a": "b"}); !errors.Is(err, ErrIndexError) {
		t.Error("Unexpected result:", err)
		return
	}
}
