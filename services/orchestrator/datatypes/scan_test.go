// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTabularFile(t *testing.T) {
	cases := map[string]bool{
		"sales.csv":      true,
		"sales.CSV":      true,
		"metrics.tsv":    true,
		"notes.txt":      false,
		"archive.csv.gz": false,
		"csv":            false,
	}
	for name, want := range cases {
		if got := IsTabularFile(name); got != want {
			t.Errorf("IsTabularFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestReportKey(t *testing.T) {
	t.Run("strips tabular extension", func(t *testing.T) {
		assert.Equal(t, "sales", ReportKey("sales.csv"))
		assert.Equal(t, "metrics", ReportKey("metrics.TSV"))
	})

	t.Run("sanitizes unsafe characters", func(t *testing.T) {
		assert.Equal(t, "my_data_2026", ReportKey("my data 2026.csv"))
		assert.Equal(t, "a_b", ReportKey("a/b.csv"))
	})

	t.Run("keeps non-tabular names whole", func(t *testing.T) {
		assert.Equal(t, "report.json", ReportKey("report.json"))
	})
}

// TestScanBatchRoundTrip checks that persisting a batch and reading it back
// yields the identical result sequence, order preserved.
func TestScanBatchRoundTrip(t *testing.T) {
	batch := ScanBatch{
		Timestamp: "2026-08-23T10-00-00-000000Z",
		Results: []ScanResult{
			{
				File:      "/data/sales.csv",
				Key:       "sales",
				QI:        []string{"zip", "age"},
				Sensitive: "income",
				Thresholds: ThresholdSet{
					K: 5, L: 2, T: 0.2, ReidProbability: 0.05,
					Reason: "no auxiliary data",
				},
				Report: ValidatorInvocation{
					Report: ValidatorReport{
						KAnonymity: KAnonymity{KMin: 1, KAvg: 3.2},
						LDiversity: LDiversity{LMin: 1, LAvg: 1.8, Method: "distinct"},
						TCloseness: TCloseness{TMax: 0.4, TAvg: 0.12},
						RiskFlags:  []string{"k-anonymity below threshold"},
					},
					Stdout:  "report saved",
					OutFile: "/results/x/validator_report_sales.json",
				},
			},
			{
				File:      "/data/hr/staff.csv",
				Key:       "staff",
				QI:        []string{"department"},
				Sensitive: "salary",
			},
		},
		Outcomes: []DatasetOutcome{
			{Dataset: "/data/sales.csv", Status: OutcomeSuccess},
			{Dataset: "/data/empty.csv", Status: OutcomeSkipped, Reason: "no data rows"},
		},
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	require.NoError(t, err)

	var decoded ScanBatch
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, batch.Timestamp, decoded.Timestamp)
	assert.Equal(t, batch.Results, decoded.Results)
	assert.Equal(t, batch.Outcomes, decoded.Outcomes)
	assert.Empty(t, decoded.Folder, "folder must not round-trip through the artifact")
}
