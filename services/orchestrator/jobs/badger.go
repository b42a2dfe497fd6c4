// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// jobPrefix namespaces registry keys so the database can host other buckets
// later without a migration.
const jobPrefix = "job/"

// BadgerStore persists the job registry in an embedded BadgerDB. Survives
// restarts, which keeps historical job ids resolvable after a redeploy.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadgerStore opens (creating if needed) the registry database at path.
// Badger's own logging is routed through slog at the caller's default level.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("badger store path is required")
	}
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: slog.Default()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemoryBadgerStore opens a non-persistent store for tests.
func OpenInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory job store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Put(ctx context.Context, job datatypes.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(jobPrefix+job.ID), data)
	})
	if err != nil {
		return fmt.Errorf("storing job %s: %w", job.ID, err)
	}
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, id string) (datatypes.Job, error) {
	var job datatypes.Job
	if err := ctx.Err(); err != nil {
		return job, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(jobPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return job, ErrNotFound
	}
	if err != nil {
		return job, fmt.Errorf("loading job %s: %w", id, err)
	}
	return job, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]datatypes.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []datatypes.Job
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(jobPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var job datatypes.Job
				if err := json.Unmarshal(val, &job); err != nil {
					return err
				}
				out = append(out, job)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return out, nil
}
