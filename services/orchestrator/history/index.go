// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package history reconstructs past scans from the results directory alone.
// The filesystem is the source of truth: batches remain listable after a
// restart or a registry wipe, and a corrupt artifact degrades that one entry
// instead of hiding the rest.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
	"github.com/oselund/privmon/services/orchestrator/scanlog"
	"github.com/oselund/privmon/services/orchestrator/summary"
)

// ErrNoScans is returned when the results directory holds no completed scan.
var ErrNoScans = errors.New("no scans recorded")

const resultsFileName = "scan_results.json"

// Entry describes one completed scan folder.
type Entry struct {
	// ID is the scan folder name.
	ID string `json:"id"`
	// Timestamp is the batch timestamp, empty when the artifact is corrupt.
	Timestamp string `json:"timestamp,omitempty"`
	// Datasets is the number of scanned datasets in the batch.
	Datasets int `json:"datasets"`
	// HasExplanation reports whether a whole-batch explanation exists.
	HasExplanation bool `json:"hasExplanation"`
	// HasLog reports whether the workflow log exists.
	HasLog bool `json:"hasLog"`

	folder  string
	modTime time.Time
}

// Folder returns the absolute path of the scan folder.
func (e Entry) Folder() string { return e.folder }

// Index lists and loads completed scans under Root.
type Index struct {
	Root string
}

// List returns completed scans, newest first. A folder counts as a scan only
// once its scan_results.json exists; ordering is by that file's modification
// time, so completion order wins over folder-name lexicography.
func (ix *Index) List() ([]Entry, error) {
	dirs, err := os.ReadDir(ix.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading results root %q: %w", ix.Root, err)
	}

	var entries []Entry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		folder := filepath.Join(ix.Root, d.Name())
		info, err := os.Stat(filepath.Join(folder, resultsFileName))
		if err != nil {
			continue // incomplete or aborted scan
		}

		entry := Entry{ID: d.Name(), folder: folder, modTime: info.ModTime()}
		if batch, err := ix.Load(folder); err != nil {
			slog.Warn("unreadable scan artifact", "folder", folder, "error", err)
		} else {
			entry.Timestamp = batch.Timestamp
			entry.Datasets = len(batch.Results)
		}
		if _, err := os.Stat(filepath.Join(folder, summary.FolderReportName)); err == nil {
			entry.HasExplanation = true
		}
		if _, err := os.Stat(filepath.Join(folder, scanlog.FileName)); err == nil {
			entry.HasLog = true
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})
	return entries, nil
}

// Latest returns the most recently completed scan.
func (ix *Index) Latest() (Entry, error) {
	entries, err := ix.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNoScans
	}
	return entries[0], nil
}

// Load reads and parses a folder's batch artifact.
func (ix *Index) Load(folder string) (datatypes.ScanBatch, error) {
	var batch datatypes.ScanBatch
	data, err := os.ReadFile(filepath.Join(folder, resultsFileName))
	if err != nil {
		return batch, fmt.Errorf("reading scan results in %q: %w", folder, err)
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		return batch, fmt.Errorf("scan results in %q are invalid JSON: %w", folder, err)
	}
	batch.Folder = folder
	return batch, nil
}

// Explanation returns the whole-batch explanation text, or the empty string
// when none was generated.
func (ix *Index) Explanation(folder string) (string, error) {
	data, err := os.ReadFile(filepath.Join(folder, summary.FolderReportName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading explanation in %q: %w", folder, err)
	}
	return string(data), nil
}

// PerDatasetExplanations returns the per-dataset explanation texts keyed by
// result key, recovered by inverting the artifact naming convention.
func (ix *Index) PerDatasetExplanations(folder string) (map[string]string, error) {
	files, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading scan folder %q: %w", folder, err)
	}

	const prefix = "explanation_report_"
	out := make(map[string]string)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt")
		data, err := os.ReadFile(filepath.Join(folder, name))
		if err != nil {
			slog.Warn("unreadable explanation artifact", "folder", folder, "file", name, "error", err)
			continue
		}
		out[key] = string(data)
	}
	return out, nil
}
