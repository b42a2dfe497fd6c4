// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oselund/privmon/pkg/logging"
	"github.com/oselund/privmon/services/orchestrator/agents"
	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/routes"
	"github.com/oselund/privmon/services/orchestrator/scan"
	"github.com/oselund/privmon/services/orchestrator/summary"
	"github.com/oselund/privmon/services/orchestrator/watch"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// config is the orchestrator's environment-derived configuration.
type config struct {
	Port             string `validate:"required,numeric"`
	DataRoot         string `validate:"required,dir"`
	ResultsRoot      string `validate:"required"`
	ClassifierCmd    string `validate:"required"`
	ValidatorCmd     string `validate:"required"`
	NarrativeBackend string `validate:"oneof=exec openai"`
	NarrativeCmd     string `validate:"required_if=NarrativeBackend exec"`
	LMethod          string `validate:"oneof=distinct entropy"`
	NumericBins      int    `validate:"gt=0"`
	AgentTimeout     time.Duration
	JobStore         string `validate:"oneof=memory badger"`
	BadgerPath       string `validate:"required_if=JobStore badger"`
	WatchDatasets    bool
	LogLevel         string
}

func loadConfig() (config, error) {
	cfg := config{
		Port:             envOr("PRIVMON_PORT", "12310"),
		DataRoot:         os.Getenv("DATA_ROOT"),
		ResultsRoot:      os.Getenv("RESULTS_ROOT"),
		ClassifierCmd:    os.Getenv("CLASSIFIER_CMD"),
		ValidatorCmd:     os.Getenv("VALIDATOR_CMD"),
		NarrativeBackend: envOr("NARRATIVE_BACKEND", "exec"),
		NarrativeCmd:     os.Getenv("NARRATIVE_CMD"),
		LMethod:          envOr("LMETHOD", "distinct"),
		NumericBins:      15,
		AgentTimeout:     agents.DefaultTimeout,
		JobStore:         envOr("JOB_STORE", "memory"),
		BadgerPath:       os.Getenv("BADGER_PATH"),
		WatchDatasets:    envOr("WATCH_DATASETS", "false") == "true",
		LogLevel:         envOr("LOG_LEVEL", "info"),
	}
	if v := os.Getenv("NUMERIC_BINS"); v != "" {
		bins, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.NumericBins = bins
	}
	if v := os.Getenv("AGENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, err
		}
		cfg.AgentTimeout = d
	}
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		// standalone deployments run without a collector
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("privmon-orchestrator")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	// .env is optional; container deployments use real env vars
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: "orchestrator",
		LogDir:  os.Getenv("LOG_DIR"),
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	var narrator agents.Narrator
	switch cfg.NarrativeBackend {
	case "openai":
		narrator, err = agents.NewOpenAINarrator()
		if err != nil {
			log.Fatalf("failed to initialize OpenAI narrator: %v", err)
		}
		slog.Info("Using OpenAI narrative backend")
	default:
		narrator = &agents.ExecNarrator{
			Command: strings.Fields(cfg.NarrativeCmd),
			Timeout: cfg.AgentTimeout,
		}
		slog.Info("Using exec narrative backend", "command", cfg.NarrativeCmd)
	}

	var store jobs.Store
	switch cfg.JobStore {
	case "badger":
		badgerStore, err := jobs.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			log.Fatalf("failed to open job store: %v", err)
		}
		defer badgerStore.Close()
		store = badgerStore
		slog.Info("Using persistent job registry", "path", cfg.BadgerPath)
	default:
		store = jobs.NewMemoryStore()
		slog.Info("Using in-memory job registry")
	}

	pipeline := &scan.Pipeline{
		Orchestrator: &scan.Orchestrator{
			DataRoot:    cfg.DataRoot,
			ResultsRoot: cfg.ResultsRoot,
			Classifier: &agents.ExecClassifier{
				Command: strings.Fields(cfg.ClassifierCmd),
				Timeout: cfg.AgentTimeout,
			},
			Validator: &agents.ExecValidator{
				Command: strings.Fields(cfg.ValidatorCmd),
				Timeout: cfg.AgentTimeout,
			},
			LMethod:     cfg.LMethod,
			NumericBins: cfg.NumericBins,
		},
		Summaries: &summary.Generator{Narrator: narrator},
		Jobs:      store,
	}
	index := &history.Index{Root: cfg.ResultsRoot}

	if cfg.WatchDatasets {
		watcher, err := watch.New(cfg.DataRoot, watch.DefaultDebounce, func() {
			slog.Info("dataset change detected, starting scan")
			if _, err := pipeline.Execute(context.Background()); err != nil {
				slog.Error("watch-triggered scan failed", "error", err)
			}
		})
		if err != nil {
			log.Fatalf("failed to create dataset watcher: %v", err)
		}
		defer watcher.Stop()
		if err := watcher.Start(context.Background()); err != nil {
			log.Fatalf("failed to start dataset watcher: %v", err)
		}
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("privmon-orchestrator"))
	routes.SetupRoutes(router, pipeline, store, index)

	slog.Info("Starting the scan orchestrator", "port", cfg.Port, "dataRoot", cfg.DataRoot)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
