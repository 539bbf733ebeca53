/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package graph contains the main API to the graph datastore which holds the
dependency traces.

Manager API

The main API is provided by a Manager object which can be created with the
NewGraphManager() constructor function. The manager provides store and fetch
functions for nodes and edges. It also provides the basic traversal
functionality which allows the traversal from one node to other nodes.

Node iterator

All available node keys in a partition of a given kind can be iterated by using
a NodeKeyIterator. The manager can produce these with the NodeKeyIterator()
function.

Value index

All string attributes of nodes are indexed. The index can be queried using an
IndexQuery object. The manager can produce these with the NodeIndexQuery()
function.

Transactions

A transaction is used to build up multiple store tasks for the graph database.
Nothing is written to the database before calling commit(). A transaction
commit does an automatic rollback if an error occurs. All storages which
were changed by a transaction are flushed together so a failed flush leaves
nothing behind. Readers never see a partially committed transaction.

A trans object can be created with the NewGraphTrans() function.

Pipelines

A Pipeline describes a multi step traversal starting from a single node. Steps
follow edges in or against their direction, filter the current nodes or jump
back to nodes which were marked earlier. A pipeline is evaluated under a single
reader lock.

Rules

Graph rules provide automatic operations which are triggered on global graph
events. The rule SystemRuleUpdateNodeStats is automatically loaded when a new
Manager is created.

Graph databases

A graph manager handles the graph storage and provides the API for
the graph database. The storage is divided into several databases:

Main database

MainDB stores various meta information such as known node/edge kinds, attributes
or version information.

Nodes database

Each node kind database stores:

	PrefixNSAttrs + node key -> { ATTRS }
	(the attributes of a certain node)

	PrefixNSSpecs + node key -> map[spec]<empty string>
	(a lookup for available specs for a certain node)

	PrefixNSEdge + node key + 0x00 + spec -> map[edge key]edgeinfo{other node key, other node kind}
	(connection from one node to another via a spec)

Edges database

Each edge kind database stores:

	PrefixNSAttrs + edge key -> { ATTRS }
	(the attributes of a certain edge)

Index database

The value index managed by util/indexmanager.go.
*/
package graph

/*
VERSION of the GraphManager
*/
const VERSION = 1

/*
MainDBEntryPrefix is the prefix for entries stored in the main database
*/
const MainDBEntryPrefix = "\x02"

// MainDB entries
// ==============

/*
MainDBVersion is the MainDB entry key for version information
*/
const MainDBVersion = MainDBEntryPrefix + "ver"

/*
MainDBNodeKinds is the MainDB entry key for node kind information
*/
const MainDBNodeKinds = MainDBEntryPrefix + "nodekind"

/*
MainDBEdgeKinds is the MainDB entry key for edge kind information
*/
const MainDBEdgeKinds = MainDBEntryPrefix + "edgekind"

/*
MainDBParts is the MainDB entry key for partition information
*/
const MainDBParts = MainDBEntryPrefix + "part"

/*
MainDBNodeAttrs is the MainDB entry key for a list of node attributes
*/
const MainDBNodeAttrs = MainDBEntryPrefix + "natt"

/*
MainDBNodeEdges is the MainDB entry key for a list of node relationships
*/
const MainDBNodeEdges = MainDBEntryPrefix + "nrel"

/*
MainDBNodeCount is the MainDB entry key for a node count
*/
const MainDBNodeCount = MainDBEntryPrefix + "ncnt"

/*
MainDBEdgeAttrs is the MainDB entry key for a list of edge attributes
*/
const MainDBEdgeAttrs = MainDBEntryPrefix + "eatt"

/*
MainDBEdgeCount is the MainDB entry key for an edge count
*/
const MainDBEdgeCount = MainDBEntryPrefix + "ecnt"

/*
MainDBUserEntryPrefix is the prefix for entries which are written by
applications using the graph
*/
const MainDBUserEntryPrefix = "\x03"

// Suffixes for StorageManagers
// ============================

/*
StorageSuffixNodes is the suffix for a node storage
*/
const StorageSuffixNodes = ".nodes"

/*
StorageSuffixNodesIndex is the suffix for a node index
*/
const StorageSuffixNodesIndex = ".nodeidx"

/*
StorageSuffixEdges is the suffix for an edge storage
*/
const StorageSuffixEdges = ".edges"

// PREFIXES for Node storage
// =========================

// Prefixes are only one byte. They should be followed by the node key so
// similar entries are stored near each other.
//

/*
PrefixNSAttrs is the prefix for storing attributes of a node
*/
const PrefixNSAttrs = "\x01"

/*
PrefixNSSpecs is the prefix for storing specs of edges related to a node
*/
const PrefixNSSpecs = "\x03"

/*
PrefixNSEdge is the prefix for storing a link from a node (and a spec) to an edge
*/
const PrefixNSEdge = "\x04"

// Graph events
//=============

/*
EventNodeCreated is thrown when a node gets created.

Parameters: partition of created node, created node
*/
const EventNodeCreated = 0x01

/*
EventNodeUpdated is thrown when a node gets updated.

Parameters: partition of updated node, updated node, old node
*/
const EventNodeUpdated = 0x02

/*
EventEdgeCreated is thrown when an edge gets created.

Parameters: partition of created edge, created edge
*/
const EventEdgeCreated = 0x04

/*
EventEdgeUpdated is thrown when an edge gets updated.

Parameters: partition of updated edge, updated edge, old edge
*/
const EventEdgeUpdated = 0x05

/*
EventTransCommitted is thrown after a transaction was successfully flushed.
Rules handling this event receive no transaction and their errors are
not reported to the committing caller.

Parameters: list of stored nodes, list of stored edges
*/
const EventTransCommitted = 0x10
