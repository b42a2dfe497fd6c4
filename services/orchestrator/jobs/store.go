// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package jobs persists the scan job registry. Two implementations: an
// in-process map for single-node default deployments, and an embedded
// BadgerDB store for registries that must survive a restart.
package jobs

import (
	"context"
	"errors"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// ErrNotFound is returned for lookups of unknown job ids.
var ErrNotFound = errors.New("job not found")

// Store is the job registry. Put overwrites; the pipeline writes the same id
// repeatedly as a job advances through its states.
type Store interface {
	Put(ctx context.Context, job datatypes.Job) error
	Get(ctx context.Context, id string) (datatypes.Job, error)
	List(ctx context.Context) ([]datatypes.Job, error)
}
