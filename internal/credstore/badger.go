// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "cred:"

// BadgerStore keeps entries in a Badger key/value directory.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens the Badger directory at path. An empty path selects
// an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("credstore: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) (string, bool, error) {
	var out string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credstore: badger get %s: %w", key, err)
	}
	return out, true, nil
}

func (s *BadgerStore) Put(_ context.Context, entries map[string]string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for k, v := range entries {
			if err := txn.Set([]byte(badgerPrefix+k), []byte(v)); err != nil {
				return fmt.Errorf("credstore: badger put %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) Delete(_ context.Context, keys ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(badgerPrefix + k)); err != nil {
				return fmt.Errorf("credstore: badger delete %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
