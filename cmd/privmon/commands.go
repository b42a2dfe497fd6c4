// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	showLog    bool

	rootCmd = &cobra.Command{
		Use:   "privmon",
		Short: "A cli to run and inspect statistical disclosure risk scans",
		Long: `Privmon scans folders of tabular datasets for re-identification
risk, records the results per scan, and turns them into
plain-language explanation reports.`,
	}

	// --- Scanning ---
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run a one-shot scan over the configured data root",
		Run:   runScanCommand, // Defined in cmd_scan.go
	}

	// --- History ---
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List past scans recorded under the results root",
		Run:   runHistoryCommand, // Defined in cmd_history.go
	}

	explainCmd = &cobra.Command{
		Use:   "explain [scan_id]",
		Short: "Print the explanation reports of a scan (latest if omitted)",
		Run:   runExplainCommand, // Defined in cmd_history.go
	}
)

func init() {
	explainCmd.Flags().BoolVar(&showLog, "log", false, "also print the scan workflow log")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(explainCmd)
}
