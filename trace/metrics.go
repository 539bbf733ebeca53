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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricAcquire counts acquire operations by vertex kind and outcome
	metricAcquire = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracestore_acquire_total",
		Help: "Total acquire operations by vertex kind and outcome (found, created, failed)",
	}, []string{"kind", "outcome"})

	// metricAccess counts recorded property accesses by outcome
	metricAccess = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracestore_access_total",
		Help: "Total property access recordings by outcome (recorded, known, failed)",
	}, []string{"outcome"})

	// metricCommits counts graph transaction commits by result
	metricCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracestore_commit_total",
		Help: "Total graph transaction commits by result",
	}, []string{"result"})

	// metricCommitDuration tracks the latency of successful commits
	metricCommitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracestore_commit_duration_seconds",
		Help:    "Duration of successful graph transaction commits",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	// metricQueryDuration tracks the latency of trace queries
	metricQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracestore_query_duration_seconds",
		Help:    "Duration of trace queries by query type",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"query"})

	// metricQueryResults tracks the number of traces returned by queries
	metricQueryResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracestore_query_results",
		Help:    "Number of traces returned by trace queries",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
	}, []string{"query"})
)
