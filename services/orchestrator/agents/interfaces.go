// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agents wraps the external collaborators of the scan pipeline: the
// column-role classifier, the anonymity validation engine, and the narrative
// generator. Each is an interface so the orchestrator and tests can swap the
// out-of-process adapters for fakes.
package agents

import (
	"context"
	"errors"
	"time"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// DefaultTimeout bounds one external call. The engines are out-of-process;
// without a deadline a hung subprocess stalls the whole batch.
const DefaultTimeout = 5 * time.Minute

// ErrTimeout marks an external call that exceeded its deadline. Callers
// treat it as a distinct failure kind from a non-zero exit.
var ErrTimeout = errors.New("external agent call timed out")

// Classifier maps a dataset's column headers to quasi-identifier and
// sensitive roles.
type Classifier interface {
	ClassifyColumns(ctx context.Context, headers []string) (datatypes.ColumnRoleAssignment, error)
}

// ValidationRequest is the invocation contract of the validation engine.
type ValidationRequest struct {
	DataPath         string
	AuxiliaryPath    string // optional
	QuasiIdentifiers []string
	SensitiveColumn  string
	K                int
	L                int
	LMethod          string // "entropy" or "distinct"
	T                float64
	ReidProbability  float64
	NumericBins      int
	OutputPath       string // inside the scan folder, never a scratch location
}

// Validator computes anonymity metrics and risk flags for one dataset.
type Validator interface {
	Validate(ctx context.Context, req ValidationRequest) (datatypes.ValidatorInvocation, error)
}

// Narrator turns a structured prompt into a free-text explanation.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}
