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
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/tracestore/graph"
	"github.com/krotik/tracestore/graph/graphstorage"
)

/*
Backend URL schemes
*/
const (
	SchemeMemory = "memory"
	SchemePLocal = "plocal"
	SchemeSQLite = "sqlite"
)

/*
backendConfig is the connection configuration of a trace store backend.
*/
type backendConfig struct {
	url          string // Full backend URL
	scheme       string // Scheme of the backend URL
	location     string // Location part of the backend URL
	user         string // User which owns the schema
	password     string // Password of the owner
	createSchema bool   // Flag if the schema should be created
}

/*
newBackendConfig parses and checks a backend connection configuration. Backend
URLs have the form <scheme>:<location>. Persistent backends (plocal, sqlite)
require a user and a password.
*/
func newBackendConfig(url string, user string, password string, createSchema bool) (*backendConfig, error) {

	if url == "" {
		return nil, newError(ErrConfiguration, "Backend URL is missing", nil)
	}

	ss := strings.SplitN(url, ":", 2)

	if len(ss) != 2 || ss[1] == "" {
		return nil, newError(ErrConfiguration,
			"Backend URL must be of the form <scheme>:<location>: "+url, nil)
	}

	scheme, location := ss[0], ss[1]

	switch scheme {
	case SchemeMemory:

	case SchemePLocal, SchemeSQLite:
		if user == "" {
			return nil, newError(ErrConfiguration, "User is missing", nil)
		} else if password == "" {
			return nil, newError(ErrConfiguration, "Password is missing", nil)
		}

	default:
		return nil, newError(ErrConfiguration, "Unsupported backend scheme: "+scheme, nil)
	}

	return &backendConfig{url, scheme, location, user, password, createSchema}, nil
}

/*
persistent returns true if the backend keeps its data between processes.
*/
func (bc *backendConfig) persistent() bool {
	return bc.scheme != SchemeMemory
}

/*
openStorage opens the graph storage of the backend.
*/
func (bc *backendConfig) openStorage() (graphstorage.Storage, error) {
	var gs graphstorage.Storage
	var err error

	switch bc.scheme {
	case SchemePLocal:
		gs, err = graphstorage.NewBadgerGraphStorage("tracestore", bc.location, BadgerSyncWrites)
	case SchemeSQLite:
		gs, err = graphstorage.NewSQLiteGraphStorage("tracestore", bc.location)
	default:
		gs = graphstorage.NewMemoryGraphStorage(bc.location)
	}

	if err != nil {
		return nil, newError(ErrConnection, "Could not open backend "+bc.url, err)
	}

	return gs, nil
}

/*
checkSchema checks the trace schema of a graph. The schema is provisioned if
it is missing and provisioning is requested. The owner of an existing schema
must match the configured user and password.
*/
func (bc *backendConfig) checkSchema(gm *graph.Manager, provision bool) error {

	version, ok := gm.UserEntry(UserEntrySchema)

	if !ok {
		if !provision {
			return newError(ErrConnection, "Trace schema does not exist in "+bc.url, nil)
		}

		salt, err := newSalt()
		if err != nil {
			return newError(ErrConnection, "Could not provision trace schema", err)
		}

		for _, entry := range [][2]string{
			{UserEntryOwner, bc.user},
			{UserEntrySalt, salt},
			{UserEntrySecret, bc.secret(salt)},
			{UserEntrySchema, SchemaVersion},
		} {
			if err := gm.SetUserEntry(entry[0], entry[1]); err != nil {
				return newError(ErrConnection, "Could not provision trace schema", err)
			}
		}

		LogInfo("Provisioned trace schema version ", SchemaVersion, " in ", bc.url)

		return nil
	}

	if v, _ := strconv.Atoi(version); v > mustAtoi(SchemaVersion) {
		return newError(ErrConnection,
			fmt.Sprintf("Cannot open trace schema of version %v - max supported version: %v",
				version, SchemaVersion), nil)
	}

	if bc.persistent() {
		owner, _ := gm.UserEntry(UserEntryOwner)
		salt, _ := gm.UserEntry(UserEntrySalt)
		secret, _ := gm.UserEntry(UserEntrySecret)

		if owner != bc.user || !stringutil.LengthConstantEquals([]byte(secret), []byte(bc.secret(salt))) {
			return newError(ErrConnection, "Invalid credentials for "+bc.url, nil)
		}
	}

	return nil
}

/*
secret returns the salted password hash of the owner. The hash is built the
same way as the password hashes of krotik/common's user database.
*/
func (bc *backendConfig) secret(salt string) string {
	sum := sha256.Sum256([]byte(salt + bc.user + ":" + bc.password))
	return hex.EncodeToString(sum[:])
}

/*
newSalt returns a new random salt for the owner secret.
*/
func newSalt() (string, error) {
	salt := make([]byte, sha256.Size)

	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	return hex.EncodeToString(salt), nil
}

func mustAtoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
