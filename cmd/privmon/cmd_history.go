// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oselund/privmon/services/orchestrator/history"
	"github.com/oselund/privmon/services/orchestrator/scanlog"
)

func runHistoryCommand(cmd *cobra.Command, args []string) {
	index := &history.Index{Root: config.ResultsRoot}
	entries, err := index.List()
	if err != nil {
		log.Fatalf("Failed to list scans: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No scans recorded.")
		return
	}

	fmt.Printf("%-40s %-22s %8s  %s\n", "SCAN", "TIMESTAMP", "DATASETS", "EXPLAINED")
	for _, e := range entries {
		explained := "no"
		if e.HasExplanation {
			explained = "yes"
		}
		fmt.Printf("%-40s %-22s %8d  %s\n", e.ID, e.Timestamp, e.Datasets, explained)
	}
}

func runExplainCommand(cmd *cobra.Command, args []string) {
	index := &history.Index{Root: config.ResultsRoot}

	var folder string
	if len(args) > 0 {
		folder = filepath.Join(config.ResultsRoot, args[0])
		if _, err := os.Stat(folder); err != nil {
			log.Fatalf("Unknown scan %q: %v", args[0], err)
		}
	} else {
		latest, err := index.Latest()
		if err != nil {
			log.Fatalf("Failed to resolve the latest scan: %v", err)
		}
		folder = latest.Folder()
		fmt.Printf("Latest scan: %s\n\n", latest.ID)
	}

	explanation, err := index.Explanation(folder)
	if err != nil {
		log.Fatalf("Failed to read the explanation report: %v", err)
	}
	if explanation == "" {
		fmt.Println("This scan has no explanation report.")
	} else {
		fmt.Println("=== Explanation report ===")
		fmt.Println(explanation)
	}

	perDataset, err := index.PerDatasetExplanations(folder)
	if err == nil && len(perDataset) > 0 {
		keys := make([]string, 0, len(perDataset))
		for k := range perDataset {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("=== Dataset: %s ===\n", k)
			fmt.Println(perDataset[k])
		}
	}

	if showLog {
		data, err := os.ReadFile(filepath.Join(folder, scanlog.FileName))
		if err != nil {
			fmt.Println("No workflow log available.")
			return
		}
		fmt.Println("=== Workflow log ===")
		fmt.Print(string(data))
	}
}
