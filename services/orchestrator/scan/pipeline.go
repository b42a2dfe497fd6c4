// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/summary"
)

// Pipeline runs a full scan job: the scan batch, per-dataset explanation
// reports, the whole-batch explanation report, and the job registry updates
// around them.
type Pipeline struct {
	Orchestrator *Orchestrator
	Summaries    *summary.Generator
	Jobs         jobs.Store

	// mu serializes batches. The HTTP endpoint and the dataset watcher share
	// one Pipeline, so two triggers must never write the same results folder.
	mu sync.Mutex
}

// Execute runs one job to completion and returns its final registry record.
// Concurrent calls run one at a time. Every state transition is stored
// before the next step starts, so a concurrent status lookup sees the job as
// queued or running while it is in flight. A failed per-dataset summary is
// logged and skipped; a failed batch or whole-batch summary fails the job.
func (p *Pipeline) Execute(ctx context.Context) (datatypes.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	job := datatypes.Job{
		ID:        uuid.NewString(),
		Status:    datatypes.JobQueued,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.Jobs.Put(ctx, job); err != nil {
		return job, fmt.Errorf("registering job: %w", err)
	}

	job.Status = datatypes.JobRunning
	if err := p.Jobs.Put(ctx, job); err != nil {
		return job, fmt.Errorf("updating job %s: %w", job.ID, err)
	}

	batch, err := p.Orchestrator.Run(ctx, "")
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("scan failed: %w", err))
	}
	job.Folder = batch.Folder
	job.ResultsFile = filepath.Join(batch.Folder, ResultsFileName)

	for _, result := range batch.Results {
		one := []datatypes.ScanResult{result}
		if _, err := p.Summaries.Run(ctx, summary.ModeDataset, batch.Folder, one); err != nil {
			// partial-failure policy: the batch keeps its other artifacts
			slog.Warn("dataset summary failed", "job", job.ID, "key", result.Key, "error", err)
		}
	}

	if len(batch.Results) > 0 {
		summaryPath, err := p.Summaries.Run(ctx, summary.ModeFolder, batch.Folder, batch.Results)
		if err != nil {
			return p.fail(ctx, job, err)
		}
		job.SummaryFile = summaryPath
	}

	job.Status = datatypes.JobDone
	if err := p.Jobs.Put(ctx, job); err != nil {
		return job, fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	return job, nil
}

func (p *Pipeline) fail(ctx context.Context, job datatypes.Job, cause error) (datatypes.Job, error) {
	job.Status = datatypes.JobFailed
	job.Error = cause.Error()
	if err := p.Jobs.Put(ctx, job); err != nil {
		slog.Error("recording job failure", "job", job.ID, "error", err)
	}
	return job, cause
}
