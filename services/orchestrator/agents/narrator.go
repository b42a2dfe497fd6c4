// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ExecNarrator pipes the prompt to the external narrative generator over
// stdin and returns its stdout. On a non-zero exit the error carries the
// generator's accumulated diagnostics.
type ExecNarrator struct {
	Command []string
	Timeout time.Duration
}

func (n *ExecNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty narrative prompt")
	}
	stdout, err := runCommand(ctx, n.Timeout, prompt, n.Command)
	if err != nil {
		return "", err
	}
	narrative := strings.TrimSpace(stdout)
	if narrative == "" {
		return "", fmt.Errorf("narrative generator produced no output")
	}
	return narrative, nil
}
