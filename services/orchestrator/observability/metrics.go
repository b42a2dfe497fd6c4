// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability holds the Prometheus metrics for the scan
// orchestrator. Everything is registered on the default registry and
// exposed through the /metrics endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scanBatches counts completed scan batches.
	// Labels: status (success, failed)
	scanBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privmon",
		Subsystem: "scan",
		Name:      "batches_total",
		Help:      "Total scan batches by final status",
	}, []string{"status"})

	// scanBatchDuration measures end-to-end batch duration, discovery
	// through results file write.
	scanBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "privmon",
		Subsystem: "scan",
		Name:      "batch_duration_seconds",
		Help:      "End-to-end scan batch duration in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	// datasetOutcomes counts per-dataset results within batches.
	// Labels: outcome (success, skipped, failed)
	datasetOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privmon",
		Subsystem: "scan",
		Name:      "dataset_outcomes_total",
		Help:      "Per-dataset scan outcomes",
	}, []string{"outcome"})

	// agentCallDuration measures external agent invocations.
	// Labels: agent (classifier, validator, narrator), status (success, error)
	agentCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "privmon",
		Subsystem: "agent",
		Name:      "call_duration_seconds",
		Help:      "External agent call duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"agent", "status"})

	// narratives counts generated explanation reports.
	// Labels: mode (dataset, folder), status (success, error)
	narratives = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privmon",
		Subsystem: "summary",
		Name:      "narratives_total",
		Help:      "Explanation report generation attempts",
	}, []string{"mode", "status"})
)

// RecordScanBatch records a finished batch.
//
// Inputs:
//
//	status - "success" or "failed".
//	durationSec - Batch duration in seconds.
func RecordScanBatch(status string, durationSec float64) {
	scanBatches.WithLabelValues(status).Inc()
	scanBatchDuration.Observe(durationSec)
}

// RecordDatasetOutcome records one dataset's outcome within a batch.
func RecordDatasetOutcome(outcome string) {
	datasetOutcomes.WithLabelValues(outcome).Inc()
}

// RecordAgentCall records an external agent invocation.
//
// Inputs:
//
//	agent - "classifier", "validator", or "narrator".
//	durationSec - Call duration in seconds.
//	err - The call error, nil on success.
func RecordAgentCall(agent string, durationSec float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	agentCallDuration.WithLabelValues(agent, status).Observe(durationSec)
}

// RecordNarrative records an explanation report generation attempt.
//
// Inputs:
//
//	mode - "dataset" or "folder".
//	err - The generation error, nil on success.
func RecordNarrative(mode string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	narratives.WithLabelValues(mode, status).Inc()
}
