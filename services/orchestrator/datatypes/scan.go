// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire and artifact types shared by the
// orchestrator: discovered datasets, threshold sets, validator reports,
// scan results and the persisted scan batch.
package datatypes

import (
	"strings"
)

// tabularExts are the file extensions the catalog treats as tabular data.
// Matching is case-insensitive.
var tabularExts = []string{".csv", ".tsv"}

// Dataset identifies one discovered tabular file. Identity is the absolute
// path; Name is the base filename and is not unique across subdirectories.
type Dataset struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// IsTabularFile reports whether the filename carries a tabular extension.
func IsTabularFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range tabularExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ReportKey derives the per-dataset artifact key from a dataset filename:
// the tabular extension is stripped and characters unsafe for filenames are
// replaced. The history index inverts this by trimming the fixed artifact
// prefix and suffix, so the key must never contain a path separator.
func ReportKey(filename string) string {
	base := filename
	lower := strings.ToLower(filename)
	for _, ext := range tabularExts {
		if strings.HasSuffix(lower, ext) {
			base = filename[:len(filename)-len(ext)]
			break
		}
	}
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ColumnRoleAssignment is the classifier's verdict for one dataset. Sensitive
// is empty when the classifier could not name a sensitive attribute.
type ColumnRoleAssignment struct {
	QuasiIdentifiers []string `json:"quasi_identifiers"`
	Sensitive        string   `json:"sensitive,omitempty"`
}

// ThresholdSet carries the derived validation thresholds. Immutable once
// computed; embedded in the ScanResult it was derived for.
type ThresholdSet struct {
	K               int     `json:"k"`
	L               int     `json:"l"`
	T               float64 `json:"t"`
	ReidProbability float64 `json:"reid_probability"`
	Reason          string  `json:"reason"`
}

// KAnonymity is the k-anonymity section of a validator report.
type KAnonymity struct {
	KMin float64 `json:"k_min"`
	KAvg float64 `json:"k_avg"`
}

// LDiversity is the l-diversity section of a validator report.
type LDiversity struct {
	LMin   float64 `json:"l_min"`
	LAvg   float64 `json:"l_avg"`
	Method string  `json:"method,omitempty"`
}

// TCloseness is the t-closeness section of a validator report.
type TCloseness struct {
	TMax   float64 `json:"t_max"`
	TAvg   float64 `json:"t_avg"`
	Method string  `json:"method,omitempty"`
}

// ValidatorReport is the payload the external validation engine writes to its
// output file. Only the metric sections and risk flags are consumed here; the
// engine may emit more, which round-trips through the raw passthrough file.
type ValidatorReport struct {
	KAnonymity        KAnonymity     `json:"k_anonymity"`
	LDiversity        LDiversity     `json:"l_diversity"`
	TCloseness        TCloseness     `json:"t_closeness"`
	RiskFlags         []string       `json:"risk_flags"`
	RepairSuggestions []string       `json:"repair_suggestions,omitempty"`
	Params            map[string]any `json:"params,omitempty"`
}

// ValidatorInvocation wraps one validator call: the parsed report, the
// diagnostic stdout echo, and the path of the raw report file inside the
// scan folder.
type ValidatorInvocation struct {
	Report  ValidatorReport `json:"report"`
	Stdout  string          `json:"stdout,omitempty"`
	OutFile string          `json:"outFile"`
}

// ScanResult is the record for one successfully scanned dataset. Datasets
// whose classification or validation fails produce no ScanResult at all.
type ScanResult struct {
	File       string              `json:"file"`
	Key        string              `json:"key"`
	QI         []string            `json:"qi"`
	Sensitive  string              `json:"sensitive"`
	Thresholds ThresholdSet        `json:"thresholds"`
	Report     ValidatorInvocation `json:"report"`
}

// OutcomeStatus classifies what happened to a dataset during a scan.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// DatasetOutcome records the per-dataset disposition of a scan, so that
// partial-batch behavior is observable beyond log lines.
type DatasetOutcome struct {
	Dataset string        `json:"dataset"`
	Status  OutcomeStatus `json:"status"`
	Reason  string        `json:"reason,omitempty"`
}

// ScanBatch is the persisted artifact of one scan invocation
// (scan_results.json). Written once, never partially overwritten.
type ScanBatch struct {
	Timestamp string           `json:"timestamp"`
	Results   []ScanResult     `json:"results"`
	Outcomes  []DatasetOutcome `json:"outcomes,omitempty"`

	// Folder is where the batch was persisted. Derived at load/scan time,
	// not part of the artifact.
	Folder string `json:"-"`
}
