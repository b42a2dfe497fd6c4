// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package summary renders scan results into narrative prompts and persists
// the generated explanation reports inside the scan folder.
package summary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oselund/privmon/services/orchestrator/agents"
	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/observability"
	"github.com/oselund/privmon/services/orchestrator/risk"
)

// Mode selects the summary granularity.
type Mode string

const (
	// ModeDataset summarises a single dataset's result.
	ModeDataset Mode = "dataset"
	// ModeFolder summarises the whole batch.
	ModeFolder Mode = "folder"
)

// FolderReportName is the whole-batch explanation artifact.
const FolderReportName = "explanation_report.txt"

// DatasetReportName is the per-dataset explanation artifact for a result key.
func DatasetReportName(key string) string {
	return "explanation_report_" + key + ".txt"
}

// BuildPrompt renders scan results into the structured prompt handed to the
// narrator. The audience framing is fixed: the reports are read by people
// who do not know what k-anonymity is.
func BuildPrompt(mode Mode, results []datatypes.ScanResult) string {
	var b strings.Builder

	if mode == ModeFolder {
		fmt.Fprintf(&b, "A privacy scan covered %d dataset(s). Findings per dataset:\n\n", len(results))
	} else {
		b.WriteString("A privacy scan examined one dataset. Findings:\n\n")
	}

	for _, r := range results {
		category := risk.Categorise(r.Report.Report.RiskFlags)
		fmt.Fprintf(&b, "Dataset: %s\n", filepath.Base(r.File))
		fmt.Fprintf(&b, "Risk level: %s\n", category)
		if len(r.Report.Report.RiskFlags) == 0 {
			b.WriteString("Issues found: none\n")
		} else {
			b.WriteString("Issues found:\n")
			for _, flag := range r.Report.Report.RiskFlags {
				fmt.Fprintf(&b, "  - %s\n", flag)
			}
		}
		fmt.Fprintf(&b, "Recommended action: %s\n", risk.RecommendedAction(category))
		fmt.Fprintf(&b, "Columns that could identify someone: %s\n", strings.Join(r.QI, ", "))
		if r.Sensitive != "" {
			fmt.Fprintf(&b, "Sensitive column: %s\n", r.Sensitive)
		}
		fmt.Fprintf(&b, "Thresholds applied: k=%d, l=%d, t=%.3g, re-identification probability=%.3g (%s)\n",
			r.Thresholds.K, r.Thresholds.L, r.Thresholds.T, r.Thresholds.ReidProbability, r.Thresholds.Reason)
		fmt.Fprintf(&b, "Measured: k_min=%.3g, k_avg=%.3g, l_min=%.3g, t_max=%.3g\n",
			r.Report.Report.KAnonymity.KMin, r.Report.Report.KAnonymity.KAvg,
			r.Report.Report.LDiversity.LMin, r.Report.Report.TCloseness.TMax)
		b.WriteString("\n")
	}

	b.WriteString("Write a short report for a non-technical audience. Explain in plain language " +
		"what was found, what could go wrong if the data were shared as-is, and what the " +
		"recommended next steps are. Do not use statistical jargon without explaining it.\n")
	return b.String()
}

// Generator produces explanation reports through a Narrator.
type Generator struct {
	Narrator agents.Narrator
}

// Run generates one explanation report and writes it into folder. In
// ModeDataset the results slice must hold exactly the one result being
// summarised; its key names the artifact. The file is written only after the
// narrator succeeds, so a failed generation leaves no artifact behind.
func (g *Generator) Run(ctx context.Context, mode Mode, folder string, results []datatypes.ScanResult) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("nothing to summarise")
	}
	if mode == ModeDataset && len(results) != 1 {
		return "", fmt.Errorf("dataset summary wants exactly one result, got %d", len(results))
	}

	prompt := BuildPrompt(mode, results)

	start := time.Now()
	narrative, err := g.Narrator.Narrate(ctx, prompt)
	observability.RecordAgentCall("narrator", time.Since(start).Seconds(), err)
	observability.RecordNarrative(string(mode), err)
	if err != nil {
		return "", fmt.Errorf("generating %s summary: %w", mode, err)
	}

	name := FolderReportName
	if mode == ModeDataset {
		name = DatasetReportName(results[0].Key)
	}
	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, []byte(narrative+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
