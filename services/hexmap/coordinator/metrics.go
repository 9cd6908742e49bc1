// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hexmap_mutations_total",
		Help: "Total mutation operations by kind and outcome",
	}, []string{"kind", "outcome"})

	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hexmap_mutation_duration_seconds",
		Help:    "Mutation duration from slot acquisition to settlement",
		Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind"})

	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexmap_rollbacks_total",
		Help: "Total tracked changes undone by rollback",
	})

	concurrentRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexmap_concurrent_rejections_total",
		Help: "Total mutations rejected because the tile had a pending operation",
	})

	pendingOperations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hexmap_pending_operations",
		Help: "Coordinates currently holding a pending operation",
	})
)
