// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"time"

	"github.com/oselund/privmon/services/orchestrator/agents"
)

// Config mirrors config.yaml. Command strings are split on whitespace, so
// interpreter-plus-script invocations ("python3 validator.py") work without
// shell quoting.
type Config struct {
	DataRoot         string `yaml:"data_root"`
	ResultsRoot      string `yaml:"results_root"`
	ClassifierCmd    string `yaml:"classifier_cmd"`
	ValidatorCmd     string `yaml:"validator_cmd"`
	NarrativeBackend string `yaml:"narrative_backend"`
	NarrativeCmd     string `yaml:"narrative_cmd"`
	LMethod          string `yaml:"l_method"`
	NumericBins      int    `yaml:"numeric_bins"`
	AgentTimeout     string `yaml:"agent_timeout"`
	LogLevel         string `yaml:"log_level"`
}

func (c *Config) applyDefaults() {
	if c.NarrativeBackend == "" {
		c.NarrativeBackend = "exec"
	}
	if c.LMethod == "" {
		c.LMethod = "distinct"
	}
	if c.NumericBins <= 0 {
		c.NumericBins = 15
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// agentTimeout parses the configured timeout, falling back to the default on
// absence or a malformed value.
func (c *Config) agentTimeout() time.Duration {
	if c.AgentTimeout == "" {
		return agents.DefaultTimeout
	}
	d, err := time.ParseDuration(c.AgentTimeout)
	if err != nil {
		return agents.DefaultTimeout
	}
	return d
}
