// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oselund/privmon/services/orchestrator/scan"
)

// StartScan runs a full scan job synchronously and returns its final registry
// record. On failure the partially written job record is included so the
// caller can still look up the failed job.
func StartScan(pipeline *scan.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("Received request to start a scan")
		job, err := pipeline.Execute(c.Request.Context())
		if err != nil {
			slog.Error("scan job failed", "jobId", job.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "job": job})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}
