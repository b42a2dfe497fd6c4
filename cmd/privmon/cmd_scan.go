// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oselund/privmon/services/orchestrator/agents"
	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/jobs"
	"github.com/oselund/privmon/services/orchestrator/scan"
	"github.com/oselund/privmon/services/orchestrator/summary"
)

func runScanCommand(cmd *cobra.Command, args []string) {
	pipeline, err := buildPipeline()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Printf("Scanning %s ...\n", config.DataRoot)
	job, err := pipeline.Execute(context.Background())
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Printf("Scan complete. Results written to %s\n", job.Folder)
	index := &history.Index{Root: config.ResultsRoot}
	if batch, err := index.Load(job.Folder); err == nil && len(batch.Outcomes) > 0 {
		fmt.Println("Datasets:")
		fmt.Print(describeOutcomes(batch.Outcomes))
	}
	if job.SummaryFile != "" {
		fmt.Printf("Explanation report: %s\n", job.SummaryFile)
	} else {
		fmt.Println("No datasets were scanned; no explanation report generated.")
	}
}

// buildPipeline assembles a local pipeline from config.yaml. The CLI keeps
// its job registry in memory; the results folder is the durable record.
func buildPipeline() (*scan.Pipeline, error) {
	if config.DataRoot == "" || config.ResultsRoot == "" {
		return nil, fmt.Errorf("data_root and results_root must be set")
	}
	if config.ClassifierCmd == "" || config.ValidatorCmd == "" {
		return nil, fmt.Errorf("classifier_cmd and validator_cmd must be set")
	}

	var narrator agents.Narrator
	switch config.NarrativeBackend {
	case "openai":
		openaiNarrator, err := agents.NewOpenAINarrator()
		if err != nil {
			return nil, err
		}
		narrator = openaiNarrator
	default:
		if config.NarrativeCmd == "" {
			return nil, fmt.Errorf("narrative_cmd must be set for the exec backend")
		}
		narrator = &agents.ExecNarrator{
			Command: strings.Fields(config.NarrativeCmd),
			Timeout: config.agentTimeout(),
		}
	}

	return &scan.Pipeline{
		Orchestrator: &scan.Orchestrator{
			DataRoot:    config.DataRoot,
			ResultsRoot: config.ResultsRoot,
			Classifier: &agents.ExecClassifier{
				Command: strings.Fields(config.ClassifierCmd),
				Timeout: config.agentTimeout(),
			},
			Validator: &agents.ExecValidator{
				Command: strings.Fields(config.ValidatorCmd),
				Timeout: config.agentTimeout(),
			},
			LMethod:     config.LMethod,
			NumericBins: config.NumericBins,
		},
		Summaries: &summary.Generator{Narrator: narrator},
		Jobs:      jobs.NewMemoryStore(),
	}, nil
}

// describeOutcomes renders a compact per-dataset disposition line.
func describeOutcomes(outcomes []datatypes.DatasetOutcome) string {
	var b strings.Builder
	for _, o := range outcomes {
		fmt.Fprintf(&b, "  %-10s %s", o.Status, o.Dataset)
		if o.Reason != "" {
			fmt.Fprintf(&b, " (%s)", o.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}
