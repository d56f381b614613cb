package beercache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tapmatch/tapmatch/internal/types"
)

const beerKeyPrefix = "beer:"

// BadgerStore implements Store using BadgerDB for durable storage that
// survives process restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger store at dir. An unreadable
// store is recovered by wiping the directory and starting empty: the
// corruption is logged as a warning, never reported as a startup failure.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Printf("[BEERCACHE] %v", &CorruptionError{Path: dir, Cause: err})

		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return nil, &StoreError{Message: "failed to reset corrupted store", Cause: rmErr}
		}
		db, err = badger.Open(opts)
		if err != nil {
			return nil, &StoreError{Message: "failed to recreate store", Cause: err}
		}
		log.Printf("[BEERCACHE] store reset to empty at %s", dir)
	}

	return &BadgerStore{db: db}, nil
}

// Get retrieves a record by normalized name.
func (s *BadgerStore) Get(_ context.Context, key string) (*types.BeerRecord, error) {
	var rec types.BeerRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(beerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &NotFoundError{Name: key}
		}
		if err != nil {
			return &StoreError{Message: "get failed", Cause: err}
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put upserts a record under its normalized name.
func (s *BadgerStore) Put(_ context.Context, rec *types.BeerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &StoreError{Message: "failed to marshal record", Cause: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(beerKeyPrefix+rec.Key()), data)
	})
	if err != nil {
		return &StoreError{Message: "put failed", Cause: err}
	}
	return nil
}

// Keys iterates all beer keys in lexicographic order (Badger iterates keys
// in byte order).
func (s *BadgerStore) Keys(_ context.Context) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(beerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), beerKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Message: "key iteration failed", Cause: err}
	}
	return keys, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
