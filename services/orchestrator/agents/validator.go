// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// ExecValidator invokes the external anonymity validation engine. The engine
// writes its report as JSON to --out and echoes it on stdout for
// diagnostics; a non-zero exit or an unreadable output file is a hard
// failure for the dataset.
type ExecValidator struct {
	Command []string
	Timeout time.Duration
}

func (v *ExecValidator) Validate(ctx context.Context, req ValidationRequest) (datatypes.ValidatorInvocation, error) {
	var inv datatypes.ValidatorInvocation

	if req.OutputPath == "" {
		return inv, fmt.Errorf("validation request for %q has no output path", req.DataPath)
	}

	args := []string{"--data", req.DataPath}
	if req.AuxiliaryPath != "" {
		args = append(args, "--external", req.AuxiliaryPath)
	}
	args = append(args, "--qi")
	args = append(args, req.QuasiIdentifiers...)
	args = append(args,
		"--sensitive", req.SensitiveColumn,
		"--k", strconv.Itoa(req.K),
		"--l", strconv.Itoa(req.L),
		"--l-method", req.LMethod,
		"--t", strconv.FormatFloat(req.T, 'f', -1, 64),
		"--reid-probability", strconv.FormatFloat(req.ReidProbability, 'f', -1, 64),
		"--numeric-bins", strconv.Itoa(req.NumericBins),
		"--out", req.OutputPath,
	)

	stdout, err := runCommand(ctx, v.Timeout, "", v.Command, args...)
	if err != nil {
		return inv, err
	}

	data, err := os.ReadFile(req.OutputPath)
	if err != nil {
		return inv, fmt.Errorf("validator wrote no report for %q: %w", req.DataPath, err)
	}
	var report datatypes.ValidatorReport
	if err := json.Unmarshal(data, &report); err != nil {
		return inv, fmt.Errorf("validator report for %q is invalid JSON: %w", req.DataPath, err)
	}

	inv.Report = report
	inv.Stdout = stdout
	inv.OutFile = req.OutputPath
	return inv, nil
}
