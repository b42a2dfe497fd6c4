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

	"github.com/gin-gonic/gin"

	"github.com/oselund/privmon/services/orchestrator/history"
)

// ListScans lists completed scans reconstructed from the results directory,
// newest first.
func ListScans(index *history.Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := index.List()
		if err != nil {
			slog.Error("listing scans", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scans": entries})
	}
}

// LatestScan returns the most recent scan's batch together with its
// explanation reports. Missing explanation artifacts degrade to empty
// fields rather than failing the request.
func LatestScan(index *history.Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := index.Latest()
		if errors.Is(err, history.ErrNoScans) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no scans recorded"})
			return
		}
		if err != nil {
			slog.Error("resolving latest scan", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve latest scan"})
			return
		}

		batch, err := index.Load(entry.Folder())
		if err != nil {
			slog.Error("loading latest scan", "scan", entry.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan results are unreadable"})
			return
		}

		explanation, err := index.Explanation(entry.Folder())
		if err != nil {
			slog.Warn("latest scan explanation unreadable", "scan", entry.ID, "error", err)
		}
		perDataset, err := index.PerDatasetExplanations(entry.Folder())
		if err != nil {
			slog.Warn("latest scan dataset explanations unreadable", "scan", entry.ID, "error", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"scan":                entry,
			"results":             batch,
			"explanation":         explanation,
			"datasetExplanations": perDataset,
		})
	}
}
