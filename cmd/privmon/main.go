// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oselund/privmon/pkg/logging"
)

var config Config

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		yamlFile, err := os.ReadFile(configPath)
		if err != nil {
			log.Fatalf("Error reading %s: %v. Please ensure it exists.", configPath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &config); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		config.applyDefaults()

		logger := logging.New(logging.Config{
			Level:   logging.ParseLevel(config.LogLevel),
			Service: "cli",
		})
		slog.SetDefault(logger.Slog())
	}
}
