// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// JobStatus is the lifecycle state of a scan job.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job tracks one scan invocation through the registry. The status moves
// queued -> running -> done|failed; each transition is stored, so a status
// lookup can observe an in-flight job.
type Job struct {
	ID          string    `json:"id"`
	Status      JobStatus `json:"status"`
	Timestamp   string    `json:"timestamp"`
	Folder      string    `json:"folder,omitempty"`
	ResultsFile string    `json:"resultsFile,omitempty"`
	SummaryFile string    `json:"summaryFile,omitempty"`
	Error       string    `json:"error,omitempty"`
}
