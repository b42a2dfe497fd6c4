// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jobs

import (
	"context"
	"sync"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// MemoryStore keeps jobs in process memory. The registry is lost on restart;
// scan artifacts on disk remain reachable through the history index.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]datatypes.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]datatypes.Job)}
}

func (s *MemoryStore) Put(_ context.Context, job datatypes.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (datatypes.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return datatypes.Job{}, ErrNotFound
	}
	return job, nil
}

func (s *MemoryStore) List(_ context.Context) ([]datatypes.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]datatypes.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}
