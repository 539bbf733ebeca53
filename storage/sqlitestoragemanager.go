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
	"bytes"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

/*
SQLiteSchema is the table layout used by SQLite storage managers.
*/
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	sm    TEXT NOT NULL,
	key   BLOB NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (sm, key)
);
`

/*
OpenSQLiteDB opens a sqlite database file and makes sure the storage table
exists.
*/
func OpenSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

/*
SQLiteStorageManager data structure
*/
type SQLiteStorageManager struct {
	name    string      // Name of the storage manager
	db      *sql.DB     // Shared sqlite database
	pending *changeSet  // Pending changes
	mutex   *sync.Mutex // Mutex to protect pending changes
}

/*
NewSQLiteStorageManager creates a new storage manager which stores its data
in the kv table of a given sqlite database.
*/
func NewSQLiteStorageManager(name string, db *sql.DB) *SQLiteStorageManager {
	return &SQLiteStorageManager{name, db, newChangeSet(), &sync.Mutex{}}
}

/*
Name returns the name of the StorageManager instance.
*/
func (ssm *SQLiteStorageManager) Name() string {
	return ssm.name
}

/*
Get returns the value of a given key.
*/
func (ssm *SQLiteStorageManager) Get(key []byte) ([]byte, error) {
	ssm.mutex.Lock()
	v, ok := ssm.pending.get(key)
	ssm.mutex.Unlock()

	if ok {
		return v, nil
	}

	var ret []byte

	err := ssm.db.QueryRow("SELECT value FROM kv WHERE sm = ? AND key = ?",
		ssm.name, key).Scan(&ret)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, NewStorageManagerError(ErrReading, err.Error(), ssm.name)
	}

	return ret, nil
}

/*
Put stores a value under a given key.
*/
func (ssm *SQLiteStorageManager) Put(key []byte, value []byte) error {
	ssm.mutex.Lock()
	defer ssm.mutex.Unlock()

	ssm.pending.put(key, value)

	return nil
}

/*
Delete removes a given key.
*/
func (ssm *SQLiteStorageManager) Delete(key []byte) error {
	ssm.mutex.Lock()
	defer ssm.mutex.Unlock()

	ssm.pending.delete(key)

	return nil
}

/*
Scan calls a given function for every key with a given prefix.
*/
func (ssm *SQLiteStorageManager) Scan(prefix []byte, fn func(key []byte, value []byte) bool) error {
	ssm.mutex.Lock()
	pending := newChangeSet()
	for k, v := range ssm.pending.puts {
		pending.puts[k] = v
	}
	for k := range ssm.pending.dels {
		pending.dels[k] = struct{}{}
	}
	ssm.mutex.Unlock()

	err := scanMerged(prefix, func(add func(k, v []byte)) error {
		var rows *sql.Rows
		var err error

		if len(prefix) == 0 {
			rows, err = ssm.db.Query("SELECT key, value FROM kv WHERE sm = ? ORDER BY key", ssm.name)
		} else {
			rows, err = ssm.db.Query("SELECT key, value FROM kv WHERE sm = ? AND key >= ? ORDER BY key",
				ssm.name, prefix)
		}

		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var k, v []byte

			if err := rows.Scan(&k, &v); err != nil {
				return err
			}

			if !bytes.HasPrefix(k, prefix) {
				break
			}

			add(k, v)
		}

		return rows.Err()
	}, pending, fn)

	if err != nil {
		return NewStorageManagerError(ErrReading, err.Error(), ssm.name)
	}

	return nil
}

/*
Flush writes all pending changes in a single sqlite transaction.
*/
func (ssm *SQLiteStorageManager) Flush() error {
	return FlushSQLiteManagers(ssm.db, []Manager{ssm})
}

/*
FlushSQLiteManagers writes the pending changes of several storage managers
of one sqlite database in a single transaction. Either all changes are
written or none.
*/
func FlushSQLiteManagers(db *sql.DB, sms []Manager) error {
	var ssms []*SQLiteStorageManager

	empty := true

	for _, sm := range distinctManagers(sms) {
		ssm, ok := unwrapManager(sm).(*SQLiteStorageManager)

		if !ok || ssm.db != db {
			return NewStorageManagerError(ErrFlush, "Not a manager of this database", sm.Name())
		}

		ssms = append(ssms, ssm)
	}

	for _, ssm := range ssms {
		ssm.mutex.Lock()
		defer ssm.mutex.Unlock()

		empty = empty && ssm.pending.isEmpty()
	}

	if empty {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return NewStorageManagerError(ErrFlush, err.Error(), managerNames(sms))
	}

	for _, ssm := range ssms {
		if err = ssm.writePending(tx); err != nil {
			tx.Rollback()
			return NewStorageManagerError(ErrFlush, err.Error(), managerNames(sms))
		}
	}

	if err = tx.Commit(); err != nil {
		return NewStorageManagerError(ErrFlush, err.Error(), managerNames(sms))
	}

	for _, ssm := range ssms {
		ssm.pending.reset()
	}

	return nil
}

/*
writePending adds all pending changes to a sqlite transaction. The caller
must hold the lock of the storage manager.
*/
func (ssm *SQLiteStorageManager) writePending(tx *sql.Tx) error {
	for k, v := range ssm.pending.puts {
		if _, err := tx.Exec("INSERT OR REPLACE INTO kv (sm, key, value) VALUES (?, ?, ?)",
			ssm.name, []byte(k), v); err != nil {
			return err
		}
	}

	for k := range ssm.pending.dels {
		if _, err := tx.Exec("DELETE FROM kv WHERE sm = ? AND key = ?",
			ssm.name, []byte(k)); err != nil {
			return err
		}
	}

	return nil
}

/*
Rollback discards all pending changes.
*/
func (ssm *SQLiteStorageManager) Rollback() error {
	ssm.mutex.Lock()
	defer ssm.mutex.Unlock()

	ssm.pending.reset()

	return nil
}

/*
Close closes the StorageManager. The shared database is closed by its owner.
*/
func (ssm *SQLiteStorageManager) Close() error {
	ssm.mutex.Lock()
	defer ssm.mutex.Unlock()

	ssm.pending.reset()

	return nil
}
