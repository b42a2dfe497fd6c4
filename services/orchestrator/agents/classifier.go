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
	"time"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// ExecClassifier invokes the external column-role classifier. The header
// list is passed as a JSON array argument; the classifier answers on stdout
// with {"quasi_identifiers": [...], "sensitive": ...} where sensitive may be
// a scalar or a single-element list.
type ExecClassifier struct {
	Command []string
	Timeout time.Duration
}

// classifierReply tolerates the scalar-or-list shape of the sensitive field.
type classifierReply struct {
	QuasiIdentifiers []string        `json:"quasi_identifiers"`
	Sensitive        json.RawMessage `json:"sensitive"`
}

func (c *ExecClassifier) ClassifyColumns(ctx context.Context, headers []string) (datatypes.ColumnRoleAssignment, error) {
	var assignment datatypes.ColumnRoleAssignment

	headerArg, err := json.Marshal(headers)
	if err != nil {
		return assignment, fmt.Errorf("encoding headers: %w", err)
	}

	stdout, err := runCommand(ctx, c.Timeout, "", c.Command, string(headerArg))
	if err != nil {
		return assignment, err
	}

	var reply classifierReply
	if err := json.Unmarshal([]byte(stdout), &reply); err != nil {
		return assignment, fmt.Errorf("classifier returned invalid JSON: %w", err)
	}

	assignment.QuasiIdentifiers = reply.QuasiIdentifiers
	assignment.Sensitive, err = normalizeSensitive(reply.Sensitive)
	if err != nil {
		return assignment, err
	}
	return assignment, nil
}

// normalizeSensitive accepts a string, a list of strings, or null, and
// reduces it to scalar-or-absent. A multi-element list keeps its first
// entry, matching the original engine's behavior.
func normalizeSensitive(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var scalar string
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return scalar, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0], nil
	}
	return "", fmt.Errorf("classifier sensitive field has unexpected shape: %s", raw)
}
