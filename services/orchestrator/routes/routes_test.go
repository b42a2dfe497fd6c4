// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/scan"
	"github.com/oselund/privmon/services/orchestrator/summary"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := jobs.NewMemoryStore()
	index := &history.Index{Root: t.TempDir()}
	pipeline := &scan.Pipeline{
		Orchestrator: &scan.Orchestrator{DataRoot: t.TempDir(), ResultsRoot: t.TempDir()},
		Summaries:    &summary.Generator{},
		Jobs:         store,
	}
	SetupRoutes(router, pipeline, store, index)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouteRegistration(t *testing.T) {
	router := setupTestRouter(t)

	assert.Equal(t, http.StatusOK, get(router, "/health").Code)
	assert.Equal(t, http.StatusOK, get(router, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/v1/jobs/nope/status").Code)
	assert.Equal(t, http.StatusOK, get(router, "/v1/scans").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/v1/scans/latest").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/v1/does-not-exist").Code)
}

func TestHealthBody(t *testing.T) {
	router := setupTestRouter(t)
	w := get(router, "/health")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
