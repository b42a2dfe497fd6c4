// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// runCommand executes one external agent command under a deadline and
// returns its captured stdout. stderr is folded into the error so the
// caller's log line carries the subprocess diagnostics.
func runCommand(ctx context.Context, timeout time.Duration, stdin string, command []string, extraArgs ...string) (string, error) {
	if len(command) == 0 {
		return "", errors.New("no command configured")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), command[1:]...), extraArgs...)
	cmd := exec.CommandContext(ctx, command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	slog.Debug("external agent call finished",
		"command", command[0], "duration", time.Since(start), "error", err)

	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, command[0])
	}
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s",
			command[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
