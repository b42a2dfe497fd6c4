// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oselund/privmon/services/orchestrator/agents"
	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/scanlog"
	"github.com/oselund/privmon/services/orchestrator/summary"
)

// fakeClassifier keys its behavior off the first header: "fail" errors,
// "freeform" yields no roles, "region" yields quasi-identifiers without a
// sensitive column, "diagnosis" yields a sensitive column without
// quasi-identifiers, anything else marks the last column sensitive and the
// rest quasi-identifiers.
type fakeClassifier struct{}

func (fakeClassifier) ClassifyColumns(_ context.Context, headers []string) (datatypes.ColumnRoleAssignment, error) {
	switch headers[0] {
	case "fail":
		return datatypes.ColumnRoleAssignment{}, errors.New("classifier down")
	case "freeform":
		return datatypes.ColumnRoleAssignment{}, nil
	case "region":
		return datatypes.ColumnRoleAssignment{QuasiIdentifiers: headers}, nil
	case "diagnosis":
		return datatypes.ColumnRoleAssignment{Sensitive: headers[0]}, nil
	}
	return datatypes.ColumnRoleAssignment{
		QuasiIdentifiers: headers[:len(headers)-1],
		Sensitive:        headers[len(headers)-1],
	}, nil
}

// fakeValidator records requests and writes a canned report to OutputPath,
// mimicking the external engine's artifact contract.
type fakeValidator struct {
	requests []agents.ValidationRequest
	flags    []string
}

func (v *fakeValidator) Validate(_ context.Context, req agents.ValidationRequest) (datatypes.ValidatorInvocation, error) {
	v.requests = append(v.requests, req)
	report := datatypes.ValidatorReport{
		KAnonymity: datatypes.KAnonymity{KMin: 1, KAvg: 2},
		RiskFlags:  v.flags,
	}
	data, err := json.Marshal(report)
	if err != nil {
		return datatypes.ValidatorInvocation{}, err
	}
	if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
		return datatypes.ValidatorInvocation{}, err
	}
	return datatypes.ValidatorInvocation{Report: report, OutFile: req.OutputPath}, nil
}

type fakeNarrator struct {
	text string
	err  error
	got  []string
}

func (n *fakeNarrator) Narrate(_ context.Context, prompt string) (string, error) {
	n.got = append(n.got, prompt)
	if n.err != nil {
		return "", n.err
	}
	return n.text, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// populateDataRoot lays out the discovery fixture used across tests:
// two scannable datasets (one with an auxiliary sibling, one shadowing the
// same filename in a subdirectory), plus one empty, one unclassifiable, two
// with partial classifications, and one that makes the classifier fail.
func populateDataRoot(t *testing.T, root string) {
	writeFile(t, filepath.Join(root, "sales.csv"), "zip,age,income\n90210,33,1000\n10001,40,2000\n")
	writeFile(t, filepath.Join(root, "sales_aux.csv"), "zip,voter\n90210,yes\n")
	writeFile(t, filepath.Join(root, "sub", "sales.csv"), "zip,income\n90210,1000\n")
	writeFile(t, filepath.Join(root, "empty.csv"), "zip,age\n")
	writeFile(t, filepath.Join(root, "notes.csv"), "freeform\nblah\n")
	writeFile(t, filepath.Join(root, "regions.csv"), "region,code\nwest,1\n")
	writeFile(t, filepath.Join(root, "labs.csv"), "diagnosis\nflu\n")
	writeFile(t, filepath.Join(root, "broken.csv"), "fail\nx\n")
}

func newOrchestrator(t *testing.T, validator *fakeValidator) (*Orchestrator, string) {
	dataRoot := t.TempDir()
	populateDataRoot(t, dataRoot)
	return &Orchestrator{
		DataRoot:    dataRoot,
		ResultsRoot: t.TempDir(),
		Classifier:  fakeClassifier{},
		Validator:   validator,
		Events:      &scanlog.MemorySink{},
	}, dataRoot
}

func TestFolderName(t *testing.T) {
	name := FolderName(time.Date(2026, 8, 23, 10, 30, 0, 123456789, time.UTC))
	assert.NotContains(t, name, ":")
	assert.NotContains(t, name, ".")
	assert.Contains(t, name, "2026-08-23")
}

func TestOrchestratorRun(t *testing.T) {
	validator := &fakeValidator{flags: []string{"k-anonymity below threshold"}}
	orch, _ := newOrchestrator(t, validator)

	batch, err := orch.Run(context.Background(), "")
	require.NoError(t, err)

	// two scanned; skipped: empty, unclassifiable, QI-only, sensitive-only;
	// one failed
	require.Len(t, batch.Results, 2)
	require.Len(t, batch.Outcomes, 7)

	byStatus := map[datatypes.OutcomeStatus]int{}
	for _, o := range batch.Outcomes {
		byStatus[o.Status]++
	}
	assert.Equal(t, 2, byStatus[datatypes.OutcomeSuccess])
	assert.Equal(t, 4, byStatus[datatypes.OutcomeSkipped])
	assert.Equal(t, 1, byStatus[datatypes.OutcomeFailed])

	// same base filename in a subdirectory gets a suffixed key
	keys := []string{batch.Results[0].Key, batch.Results[1].Key}
	assert.Contains(t, keys, "sales")
	var suffixed string
	for _, k := range keys {
		if k != "sales" {
			suffixed = k
		}
	}
	assert.True(t, strings.HasPrefix(suffixed, "sales-"), "collision key %q", suffixed)

	// one batch artifact, written once, loadable
	data, err := os.ReadFile(filepath.Join(batch.Folder, ResultsFileName))
	require.NoError(t, err)
	var persisted datatypes.ScanBatch
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, batch.Timestamp, persisted.Timestamp)
	assert.Len(t, persisted.Results, 2)

	_, err = time.Parse(time.RFC3339, persisted.Timestamp)
	assert.NoError(t, err)

	// workflow log artifact exists
	_, err = os.Stat(filepath.Join(batch.Folder, scanlog.FileName))
	assert.NoError(t, err)

	// validator report artifacts live inside the scan folder under the key
	for _, r := range batch.Results {
		assert.Equal(t, filepath.Join(batch.Folder, "validator_report_"+r.Key+".json"), r.Report.OutFile)
		_, err := os.Stat(r.Report.OutFile)
		assert.NoError(t, err)
	}
}

func TestOrchestratorAdaptiveThresholds(t *testing.T) {
	validator := &fakeValidator{}
	orch, _ := newOrchestrator(t, validator)

	_, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, validator.requests, 2)

	for _, req := range validator.requests {
		if req.AuxiliaryPath != "" {
			// auxiliary present: stricter regime
			assert.Equal(t, 10, req.K)
			assert.Equal(t, 0.01, req.ReidProbability)
			assert.True(t, strings.HasSuffix(req.AuxiliaryPath, "sales_aux.csv"))
		} else {
			assert.Equal(t, 5, req.K)
			assert.Equal(t, 0.05, req.ReidProbability)
		}
		assert.Equal(t, "distinct", req.LMethod)
		assert.Equal(t, 15, req.NumericBins)
	}
}

func TestOrchestratorSkipsPartialClassifications(t *testing.T) {
	validator := &fakeValidator{}
	dataRoot := t.TempDir()
	writeFile(t, filepath.Join(dataRoot, "regions.csv"), "region,code\nwest,1\n")
	writeFile(t, filepath.Join(dataRoot, "labs.csv"), "diagnosis\nflu\n")
	orch := &Orchestrator{
		DataRoot:    dataRoot,
		ResultsRoot: t.TempDir(),
		Classifier:  fakeClassifier{},
		Validator:   validator,
	}

	batch, err := orch.Run(context.Background(), "")
	require.NoError(t, err)

	// a dataset missing either role never reaches the validation engine
	assert.Empty(t, validator.requests)
	assert.Empty(t, batch.Results)

	reasons := map[string]string{}
	for _, o := range batch.Outcomes {
		require.Equal(t, datatypes.OutcomeSkipped, o.Status, "dataset %s", o.Dataset)
		reasons[o.Dataset] = o.Reason
	}
	assert.Equal(t, "classifier assigned no sensitive column", reasons["regions.csv"])
	assert.Equal(t, "classifier assigned no quasi-identifiers", reasons["labs.csv"])
}

func TestOrchestratorExplicitFolderName(t *testing.T) {
	orch, _ := newOrchestrator(t, &fakeValidator{})

	batch, err := orch.Run(context.Background(), "my-batch")
	require.NoError(t, err)
	assert.Equal(t, "my-batch", filepath.Base(batch.Folder))
}

func TestOrchestratorMissingDataRoot(t *testing.T) {
	orch := &Orchestrator{
		DataRoot:    filepath.Join(t.TempDir(), "nope"),
		ResultsRoot: t.TempDir(),
		Classifier:  fakeClassifier{},
		Validator:   &fakeValidator{},
	}
	_, err := orch.Run(context.Background(), "")
	assert.Error(t, err)
}

func TestPipelineExecute(t *testing.T) {
	orch, _ := newOrchestrator(t, &fakeValidator{flags: []string{"k-anonymity below threshold"}})
	narrator := &fakeNarrator{text: "Plain-language summary."}
	pipeline := &Pipeline{
		Orchestrator: orch,
		Summaries:    &summary.Generator{Narrator: narrator},
		Jobs:         jobs.NewMemoryStore(),
	}

	job, err := pipeline.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datatypes.JobDone, job.Status)
	assert.NotEmpty(t, job.ID)
	assert.NotEmpty(t, job.Folder)

	// stored record matches the returned one
	stored, err := pipeline.Jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, stored)

	// artifacts: results, whole-batch summary, per-dataset summaries
	_, err = os.Stat(job.ResultsFile)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(job.Folder, summary.FolderReportName), job.SummaryFile)
	_, err = os.Stat(job.SummaryFile)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(job.Folder, summary.DatasetReportName("sales")))
	assert.NoError(t, err)

	// 2 per-dataset prompts + 1 folder prompt
	assert.Len(t, narrator.got, 3)
}

func TestPipelineNarratorFailure(t *testing.T) {
	orch, _ := newOrchestrator(t, &fakeValidator{})
	pipeline := &Pipeline{
		Orchestrator: orch,
		Summaries:    &summary.Generator{Narrator: &fakeNarrator{err: errors.New("model offline")}},
		Jobs:         jobs.NewMemoryStore(),
	}

	job, err := pipeline.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, datatypes.JobFailed, job.Status)
	assert.NotEmpty(t, job.Error)

	// no partial summary artifacts are left behind
	_, statErr := os.Stat(filepath.Join(job.Folder, summary.FolderReportName))
	assert.True(t, os.IsNotExist(statErr))

	stored, err := pipeline.Jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, datatypes.JobFailed, stored.Status)
}

func TestPipelineSerializesConcurrentRuns(t *testing.T) {
	orch, _ := newOrchestrator(t, &fakeValidator{})
	pipeline := &Pipeline{
		Orchestrator: orch,
		Summaries:    &summary.Generator{Narrator: &fakeNarrator{text: "summary"}},
		Jobs:         jobs.NewMemoryStore(),
	}

	// watcher-triggered and HTTP-triggered runs share one Pipeline; every
	// run must land in its own results folder
	const runs = 4
	results := make(chan datatypes.Job, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := pipeline.Execute(context.Background())
			assert.NoError(t, err)
			results <- job
		}()
	}
	wg.Wait()
	close(results)

	folders := map[string]bool{}
	for job := range results {
		assert.Equal(t, datatypes.JobDone, job.Status)
		assert.False(t, folders[job.Folder], "results folder %s reused", job.Folder)
		folders[job.Folder] = true
	}
	assert.Len(t, folders, runs)
}

func TestPipelineEmptyDataRoot(t *testing.T) {
	orch := &Orchestrator{
		DataRoot:    t.TempDir(),
		ResultsRoot: t.TempDir(),
		Classifier:  fakeClassifier{},
		Validator:   &fakeValidator{},
	}
	narrator := &fakeNarrator{text: "unused"}
	pipeline := &Pipeline{
		Orchestrator: orch,
		Summaries:    &summary.Generator{Narrator: narrator},
		Jobs:         jobs.NewMemoryStore(),
	}

	job, err := pipeline.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datatypes.JobDone, job.Status)
	assert.Empty(t, job.SummaryFile)
	assert.Empty(t, narrator.got)
}
