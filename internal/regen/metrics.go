// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// regenTotal counts regeneration outcomes by model and status.
	regenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecraft_regenerations_total",
		Help: "Regeneration attempts by model and outcome",
	}, []string{"model", "status"})

	// providerLatency observes generator call durations.
	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagecraft_provider_latency_seconds",
		Help:    "Content generator call latency",
		Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"model"})

	// queueJobsTotal counts queued jobs by result.
	queueJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecraft_queue_jobs_total",
		Help: "Queued regeneration jobs by result",
	}, []string{"result"})
)
