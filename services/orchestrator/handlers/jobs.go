// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/jobs"
)

// lookupJob resolves the :jobId parameter or writes the error response.
func lookupJob(c *gin.Context, store jobs.Store) (datatypes.Job, bool) {
	id := c.Param("jobId")
	job, err := store.Get(c.Request.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job id"})
		return job, false
	}
	if err != nil {
		slog.Error("job lookup failed", "jobId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed"})
		return job, false
	}
	return job, true
}

// GetJobStatus returns the registry record for a job.
func GetJobStatus(store jobs.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

// GetJobResults returns the parsed scan batch for a finished job.
func GetJobResults(store jobs.Store, index *history.Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, store)
		if !ok {
			return
		}
		if job.Folder == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "job has no results", "status": job.Status})
			return
		}
		batch, err := index.Load(job.Folder)
		if err != nil {
			slog.Error("loading job results", "jobId", job.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan results are unreadable"})
			return
		}
		c.JSON(http.StatusOK, batch)
	}
}

// GetJobSummary returns the whole-batch explanation text for a finished job.
func GetJobSummary(store jobs.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, store)
		if !ok {
			return
		}
		if job.SummaryFile == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "job has no summary", "status": job.Status})
			return
		}
		data, err := os.ReadFile(job.SummaryFile)
		if err != nil {
			slog.Error("reading job summary", "jobId", job.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "summary is unreadable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"jobId": job.ID, "summary": string(data)})
	}
}
