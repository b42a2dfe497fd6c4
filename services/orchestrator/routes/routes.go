// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oselund/privmon/services/orchestrator/handlers"
	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/scan"
)

func SetupRoutes(router *gin.Engine, pipeline *scan.Pipeline, store jobs.Store, index *history.Index) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/scan", handlers.StartScan(pipeline))

		jobGroup := v1.Group("/jobs")
		{
			jobGroup.GET("/:jobId/status", handlers.GetJobStatus(store))
			jobGroup.GET("/:jobId/results", handlers.GetJobResults(store, index))
			jobGroup.GET("/:jobId/summary", handlers.GetJobSummary(store))
		}

		scans := v1.Group("/scans")
		{
			scans.GET("", handlers.ListScans(index))
			scans.GET("/latest", handlers.LatestScan(index))
		}
	}
}
