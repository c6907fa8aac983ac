// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "schemacouncil"
	pipelineSubsys   = "pipeline"
)

// Metrics holds the Prometheus instruments for pipeline runs.
//
// Register once per process via NewMetrics; tests pass their own
// registry to avoid duplicate-registration panics.
type Metrics struct {
	// PersonaCalls counts gateway calls by persona and outcome.
	// Labels: persona, outcome (ok, error)
	PersonaCalls *prometheus.CounterVec

	// PersonaRetries counts the single-shot retries taken after a
	// JSON contract failure. Labels: persona
	PersonaRetries *prometheus.CounterVec

	// CandidateEvictions counts candidates dropped from the working
	// set after a sub-pipeline failure.
	CandidateEvictions prometheus.Counter

	// RunDuration measures wall time of whole runs in seconds.
	RunDuration prometheus.Histogram

	// ActiveRuns tracks currently executing runs.
	ActiveRuns prometheus.Gauge
}

// NewMetrics creates and registers the pipeline metrics. A nil
// registerer uses a private registry, which keeps the instruments
// functional without exposing them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		PersonaCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsys,
			Name:      "persona_calls_total",
			Help:      "Number of chat transport calls by persona and outcome.",
		}, []string{"persona", "outcome"}),

		PersonaRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsys,
			Name:      "persona_retries_total",
			Help:      "Number of retry calls taken after invalid JSON output.",
		}, []string{"persona"}),

		CandidateEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsys,
			Name:      "candidate_evictions_total",
			Help:      "Number of candidates evicted after sub-pipeline failures.",
		}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsys,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		ActiveRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsys,
			Name:      "active_runs",
			Help:      "Number of currently executing pipeline runs.",
		}),
	}
}
