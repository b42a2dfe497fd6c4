// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog discovers tabular datasets under a root directory and
// performs the cheap streaming introspection (header row, exact row count,
// auxiliary sibling detection) the scan pipeline needs before it hands a
// dataset to the external engines.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// auxSuffix is the sibling-file naming convention for auxiliary (linkable)
// datasets: <basename>_aux.csv next to the original.
const auxSuffix = "_aux.csv"

// FindDatasets walks root recursively and returns every file with a tabular
// extension, in traversal order. Callers must not depend on the order.
// Auxiliary siblings (*_aux.csv) are linkage inputs, not scan targets, and
// are excluded. An unreadable root fails fast; so does any unreadable
// subdirectory, which keeps discovery errors loud instead of silently
// shrinking the batch.
func FindDatasets(root string) ([]datatypes.Dataset, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %q is not a directory", root)
	}

	var found []datatypes.Dataset
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !datatypes.IsTabularFile(d.Name()) {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), auxSuffix) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		found = append(found, datatypes.Dataset{Name: d.Name(), Path: abs})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking dataset root %q: %w", root, err)
	}
	return found, nil
}

// AuxiliaryPath returns the path of the dataset's auxiliary sibling if one
// exists, otherwise the empty string. Existence alone is checked; the file's
// content is the validation engine's concern. A stat error other than
// not-exist is treated as absence, per the partial-failure policy.
func AuxiliaryPath(dataPath string) string {
	ext := filepath.Ext(dataPath)
	candidate := strings.TrimSuffix(dataPath, ext) + auxSuffix
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// Header streams the dataset once and returns its header row. An empty file
// yields an empty header and no error.
func Header(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	r := newReader(f, path)
	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", path, err)
	}
	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}

// RowCount streams the dataset and returns the exact number of data rows,
// excluding the header.
func RowCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	r := newReader(f, path)
	count := -1 // first record is the header
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("counting rows of %q: %w", path, err)
		}
		count++
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

func newReader(f *os.File, path string) *csv.Reader {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows still count
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}
	return r
}
