/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestMemoryStorageManager(t *testing.T) {
	msm := NewMemoryStorageManager("test")

	if msm.Name() != "test" {
		t.Error("Unexpected name:", msm.Name())
		return
	}

	if err := msm.Put([]byte("a1"), []byte("v1")); err != nil {
		t.Error(err)
		return
	}

	// Pending changes are visible

	if res, err := msm.Get([]byte("a1")); err != nil || string(res) != "v1" {
		t.Error("Unexpected result:", string(res), err)
		return
	}

	if msm.Size() != 0 {
		t.Error("Nothing should be committed yet")
		return
	}

	// Rollback discards pending changes

	msm.Rollback()

	if res, err := msm.Get([]byte("a1")); err != nil || res != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	msm.Put([]byte("a1"), []byte("v1"))
	msm.Put([]byte("a2"), []byte("v2"))
	msm.Put([]byte("b1"), []byte("v3"))

	if err := msm.Flush(); err != nil {
		t.Error(err)
		return
	}

	if msm.Size() != 3 {
		t.Error("Unexpected size:", msm.Size())
		return
	}

	msm.Delete([]byte("a2"))
	msm.Put([]byte("a0"), []byte("v0"))

	var res []string

	msm.Scan([]byte("a"), func(k, v []byte) bool {
		res = append(res, fmt.Sprintf("%s=%s", k, v))
		return true
	})

	if fmt.Sprint(res) != "[a0=v0 a1=v1]" {
		t.Error("Unexpected scan result:", res)
		return
	}

	// Stop iteration early

	res = nil

	msm.Scan([]byte(""), func(k, v []byte) bool {
		res = append(res, string(k))
		return len(res) < 2
	})

	if fmt.Sprint(res) != "[a0 a1]" {
		t.Error("Unexpected scan result:", res)
		return
	}

	msm.Rollback()

	if res, _ := msm.Get([]byte("a2")); string(res) != "v2" {
		t.Error("Unexpected result:", string(res))
		return
	}

	if msm.String() != "MemoryStorageManager test - 3 committed entries, 0 pending changes" {
		t.Error("Unexpected string output:", msm.String())
		return
	}
}

func TestMemoryStorageManagerErrors(t *testing.T) {
	msm := NewMemoryStorageManager("test")

	msm.AccessMap["x"] = AccessPutError
	msm.AccessMap["y"] = AccessGetError
	msm.AccessMap["z"] = AccessScanError
	msm.AccessMap["w"] = AccessDeleteError

	if err := msm.Put([]byte("x1"), []byte("v")); !errors.Is(err, ErrWriting) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := msm.Put([]byte("y1"), []byte("v")); err != nil {
		t.Error(err)
		return
	}

	if _, err := msm.Get([]byte("y1")); err == nil || err.Error() !=
		`Could not read from storage (test - Key: "y1")` {
		t.Error("Unexpected result:", err)
		return
	}

	if err := msm.Scan([]byte("z"), func(k, v []byte) bool { return true }); !errors.Is(err, ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := msm.Delete([]byte("w1")); !errors.Is(err, ErrWriting) {
		t.Error("Unexpected result:", err)
		return
	}

	MsmRetFlush = errors.New("testerror")

	if err := msm.Flush(); err != MsmRetFlush {
		t.Error("Unexpected result:", err)
		return
	}

	MsmRetFlush = nil

	if err := msm.Flush(); err != nil {
		t.Error(err)
		return
	}

	if err := msm.Close(); err != nil {
		t.Error(err)
		return
	}
}
