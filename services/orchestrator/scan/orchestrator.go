// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scan drives the end-to-end scan workflow: discover datasets,
// classify column roles, derive thresholds, run the validation engine, and
// persist the batch artifact. Datasets are isolated from each other; one
// failing dataset never aborts the batch.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oselund/privmon/services/orchestrator/agents"
	"github.com/oselund/privmon/services/orchestrator/catalog"
	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/observability"
	"github.com/oselund/privmon/services/orchestrator/risk"
	"github.com/oselund/privmon/services/orchestrator/scanlog"
)

// ResultsFileName is the batch artifact written once per scan folder.
const ResultsFileName = "scan_results.json"

const (
	defaultLMethod     = "distinct"
	defaultNumericBins = 15
)

// FolderName derives a filesystem-safe scan folder name from a timestamp.
// RFC 3339 with nanoseconds keeps folders sortable; ":" and "." are replaced
// because they are hostile to downstream tooling and some filesystems.
func FolderName(t time.Time) string {
	s := t.UTC().Format(time.RFC3339Nano)
	s = strings.ReplaceAll(s, ":", "-")
	return strings.ReplaceAll(s, ".", "-")
}

// Orchestrator runs scan batches. All fields are set once at construction;
// Run may be called repeatedly but batches must not run concurrently against
// the same ResultsRoot. Pipeline enforces that for its callers.
type Orchestrator struct {
	DataRoot    string
	ResultsRoot string
	Classifier  agents.Classifier
	Validator   agents.Validator

	// LMethod and NumericBins are passed through to the validation engine.
	// Zero values fall back to the engine's conventional defaults.
	LMethod     string
	NumericBins int

	// Events receives workflow events in addition to the per-folder log.txt.
	Events scanlog.Sink
}

// Run executes one scan batch. folderName overrides the timestamp-derived
// scan folder name when non-empty. The returned batch is also persisted as
// scan_results.json inside the folder; a batch whose every dataset failed is
// still a successful batch with an empty results list.
func (o *Orchestrator) Run(ctx context.Context, folderName string) (datatypes.ScanBatch, error) {
	start := time.Now()
	batch := datatypes.ScanBatch{Timestamp: start.UTC().Format(time.RFC3339)}

	datasets, err := catalog.FindDatasets(o.DataRoot)
	if err != nil {
		observability.RecordScanBatch("failed", time.Since(start).Seconds())
		return batch, err
	}

	if folderName == "" {
		folderName = FolderName(start)
	}
	folder := filepath.Join(o.ResultsRoot, folderName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		observability.RecordScanBatch("failed", time.Since(start).Seconds())
		return batch, fmt.Errorf("creating scan folder: %w", err)
	}
	batch.Folder = folder

	fileLog, err := scanlog.NewFileSink(folder)
	if err != nil {
		observability.RecordScanBatch("failed", time.Since(start).Seconds())
		return batch, err
	}
	defer fileLog.Close()
	events := scanlog.Tee{fileLog, o.Events}

	events.Event("scan started: %d dataset(s) under %s", len(datasets), o.DataRoot)
	slog.Info("scan started", "datasets", len(datasets), "folder", folder)

	usedKeys := make(map[string]bool)
	for _, ds := range datasets {
		result, outcome := o.scanDataset(ctx, ds, folder, usedKeys, events)
		batch.Outcomes = append(batch.Outcomes, outcome)
		observability.RecordDatasetOutcome(string(outcome.Status))
		if result != nil {
			batch.Results = append(batch.Results, *result)
		}
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		observability.RecordScanBatch("failed", time.Since(start).Seconds())
		return batch, fmt.Errorf("encoding scan results: %w", err)
	}
	resultsPath := filepath.Join(folder, ResultsFileName)
	if err := os.WriteFile(resultsPath, data, 0o644); err != nil {
		observability.RecordScanBatch("failed", time.Since(start).Seconds())
		return batch, fmt.Errorf("writing scan results: %w", err)
	}

	events.Event("scan finished: %d scanned, %d total", len(batch.Results), len(datasets))
	slog.Info("scan finished", "scanned", len(batch.Results), "total", len(datasets), "results", resultsPath)
	observability.RecordScanBatch("success", time.Since(start).Seconds())
	return batch, nil
}

// scanDataset runs the per-dataset state machine. It returns a nil result
// for skipped and failed datasets; the outcome always explains why.
func (o *Orchestrator) scanDataset(ctx context.Context, ds datatypes.Dataset, folder string, usedKeys map[string]bool, events scanlog.Sink) (*datatypes.ScanResult, datatypes.DatasetOutcome) {
	events.Event("dataset %s: scanning", ds.Name)

	var (
		headers []string
		rows    int
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		headers, err = catalog.Header(ds.Path)
		return err
	})
	g.Go(func() (err error) {
		rows, err = catalog.RowCount(ds.Path)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, o.failed(ds, events, fmt.Errorf("reading dataset: %w", err))
	}

	if rows == 0 {
		return nil, o.skipped(ds, events, "no data rows")
	}
	if len(headers) == 0 {
		return nil, o.skipped(ds, events, "no header row")
	}

	classifyStart := time.Now()
	roles, err := o.Classifier.ClassifyColumns(ctx, headers)
	observability.RecordAgentCall("classifier", time.Since(classifyStart).Seconds(), err)
	if err != nil {
		return nil, o.failed(ds, events, fmt.Errorf("classifying columns: %w", err))
	}
	// The validation engine requires both roles; a partial assignment is a
	// skip, not a validator call.
	if len(roles.QuasiIdentifiers) == 0 {
		return nil, o.skipped(ds, events, "classifier assigned no quasi-identifiers")
	}
	if roles.Sensitive == "" {
		return nil, o.skipped(ds, events, "classifier assigned no sensitive column")
	}

	aux := catalog.AuxiliaryPath(ds.Path)
	thresholds := risk.AdaptiveThresholds(rows, aux != "")
	key := uniqueKey(ds, usedKeys)
	outFile := filepath.Join(folder, "validator_report_"+key+".json")

	req := agents.ValidationRequest{
		DataPath:         ds.Path,
		AuxiliaryPath:    aux,
		QuasiIdentifiers: roles.QuasiIdentifiers,
		SensitiveColumn:  roles.Sensitive,
		K:                thresholds.K,
		L:                thresholds.L,
		LMethod:          o.lMethod(),
		T:                thresholds.T,
		ReidProbability:  thresholds.ReidProbability,
		NumericBins:      o.numericBins(),
		OutputPath:       outFile,
	}

	validateStart := time.Now()
	inv, err := o.Validator.Validate(ctx, req)
	observability.RecordAgentCall("validator", time.Since(validateStart).Seconds(), err)
	if err != nil {
		return nil, o.failed(ds, events, fmt.Errorf("validating: %w", err))
	}

	events.Event("dataset %s: scanned (k=%d, rows=%d, aux=%t)", ds.Name, thresholds.K, rows, aux != "")
	result := &datatypes.ScanResult{
		File:       ds.Path,
		Key:        key,
		QI:         roles.QuasiIdentifiers,
		Sensitive:  roles.Sensitive,
		Thresholds: thresholds,
		Report:     inv,
	}
	return result, datatypes.DatasetOutcome{Dataset: ds.Name, Status: datatypes.OutcomeSuccess}
}

func (o *Orchestrator) skipped(ds datatypes.Dataset, events scanlog.Sink, reason string) datatypes.DatasetOutcome {
	events.Event("dataset %s: skipped (%s)", ds.Name, reason)
	slog.Warn("dataset skipped", "dataset", ds.Name, "reason", reason)
	return datatypes.DatasetOutcome{Dataset: ds.Name, Status: datatypes.OutcomeSkipped, Reason: reason}
}

func (o *Orchestrator) failed(ds datatypes.Dataset, events scanlog.Sink, err error) datatypes.DatasetOutcome {
	events.Event("dataset %s: failed (%v)", ds.Name, err)
	slog.Error("dataset failed", "dataset", ds.Name, "error", err)
	return datatypes.DatasetOutcome{Dataset: ds.Name, Status: datatypes.OutcomeFailed, Reason: err.Error()}
}

func (o *Orchestrator) lMethod() string {
	if o.LMethod == "" {
		return defaultLMethod
	}
	return o.LMethod
}

func (o *Orchestrator) numericBins() int {
	if o.NumericBins <= 0 {
		return defaultNumericBins
	}
	return o.NumericBins
}

// uniqueKey derives the per-dataset artifact key. Same-named files in
// different subdirectories collide on ReportKey alone, so repeats get a
// stable path-hash suffix. The first occurrence keeps the plain key.
func uniqueKey(ds datatypes.Dataset, used map[string]bool) string {
	key := datatypes.ReportKey(ds.Name)
	if used[key] {
		h := fnv.New32a()
		h.Write([]byte(ds.Path))
		key = fmt.Sprintf("%s-%08x", key, h.Sum32())
	}
	used[key] = true
	return key
}
