// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package summary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

type stubNarrator struct {
	text string
	err  error
}

func (n stubNarrator) Narrate(context.Context, string) (string, error) {
	return n.text, n.err
}

func sampleResult() datatypes.ScanResult {
	return datatypes.ScanResult{
		File:      "/data/hr/sales.csv",
		Key:       "sales",
		QI:        []string{"zip", "age"},
		Sensitive: "income",
		Thresholds: datatypes.ThresholdSet{
			K: 10, L: 2, T: 0.1, ReidProbability: 0.01,
			Reason: "auxiliary dataset present",
		},
		Report: datatypes.ValidatorInvocation{
			Report: datatypes.ValidatorReport{
				KAnonymity: datatypes.KAnonymity{KMin: 1, KAvg: 3.2},
				LDiversity: datatypes.LDiversity{LMin: 1, LAvg: 1.4},
				TCloseness: datatypes.TCloseness{TMax: 0.4, TAvg: 0.2},
				RiskFlags:  []string{"k-anonymity below threshold"},
			},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(ModeDataset, []datatypes.ScanResult{sampleResult()})

	assert.Contains(t, prompt, "Dataset: sales.csv")
	assert.Contains(t, prompt, "Risk level: High")
	assert.Contains(t, prompt, "k-anonymity below threshold")
	assert.Contains(t, prompt, "Alert the security/privacy team")
	assert.Contains(t, prompt, "zip, age")
	assert.Contains(t, prompt, "Sensitive column: income")
	assert.Contains(t, prompt, "non-technical audience")
}

func TestBuildPromptNoFlags(t *testing.T) {
	r := sampleResult()
	r.Report.Report.RiskFlags = nil
	prompt := BuildPrompt(ModeFolder, []datatypes.ScanResult{r})

	assert.Contains(t, prompt, "covered 1 dataset(s)")
	assert.Contains(t, prompt, "Issues found: none")
	assert.Contains(t, prompt, "Risk level: Low")
	assert.Contains(t, prompt, "no action required")
}

func TestGeneratorRun(t *testing.T) {
	folder := t.TempDir()
	g := &Generator{Narrator: stubNarrator{text: "All clear."}}

	t.Run("dataset report named by key", func(t *testing.T) {
		path, err := g.Run(context.Background(), ModeDataset, folder, []datatypes.ScanResult{sampleResult()})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(folder, "explanation_report_sales.txt"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "All clear.\n", string(data))
	})

	t.Run("folder report has the fixed name", func(t *testing.T) {
		path, err := g.Run(context.Background(), ModeFolder, folder, []datatypes.ScanResult{sampleResult()})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(folder, FolderReportName), path)
	})

	t.Run("dataset mode wants exactly one result", func(t *testing.T) {
		two := []datatypes.ScanResult{sampleResult(), sampleResult()}
		_, err := g.Run(context.Background(), ModeDataset, folder, two)
		assert.Error(t, err)
	})

	t.Run("empty results are rejected", func(t *testing.T) {
		_, err := g.Run(context.Background(), ModeFolder, folder, nil)
		assert.Error(t, err)
	})
}

func TestGeneratorRunWritesNothingOnFailure(t *testing.T) {
	folder := t.TempDir()
	g := &Generator{Narrator: stubNarrator{err: errors.New("model offline")}}

	_, err := g.Run(context.Background(), ModeFolder, folder, []datatypes.ScanResult{sampleResult()})
	require.Error(t, err)

	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
