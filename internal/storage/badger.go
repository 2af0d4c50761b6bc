package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const keyTotals = "totals"

func moveKey(gameID string, ply int) []byte {
	return fmt.Appendf(nil, "move/%s/%06d", gameID, ply)
}

func movePrefix(gameID string) []byte {
	return fmt.Appendf(nil, "move/%s/", gameID)
}

func gameKey(gameID string) []byte {
	return []byte("game/" + gameID)
}

// BadgerStore keeps records in a Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens the database in dir. An empty dir keeps everything in
// memory.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AppendMove stores rec under its game and ply. A record for the same ply
// is replaced.
func (s *BadgerStore) AppendMove(_ context.Context, rec MoveRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(moveKey(rec.GameID, rec.Ply), data)
	})
}

// Moves returns the records of a game ordered by ply.
func (s *BadgerStore) Moves(_ context.Context, gameID string) ([]MoveRecord, error) {
	var recs []MoveRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := movePrefix(gameID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec MoveRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs, nil
}

// SaveGame stores g and counts it into the totals.
func (s *BadgerStore) SaveGame(_ context.Context, g GameSummary) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		totals, err := loadTotals(txn)
		if err != nil {
			return err
		}
		totals.add(g)
		raw, err := json.Marshal(totals)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(keyTotals), raw); err != nil {
			return err
		}
		return txn.Set(gameKey(g.GameID), data)
	})
}

// Game loads a saved game summary.
func (s *BadgerStore) Game(_ context.Context, gameID string) (GameSummary, error) {
	var g GameSummary

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	return g, err
}

// Totals returns the aggregate over every saved game.
func (s *BadgerStore) Totals(_ context.Context) (Totals, error) {
	var totals Totals
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		totals, err = loadTotals(txn)
		return err
	})
	return totals, err
}

func loadTotals(txn *badger.Txn) (Totals, error) {
	var totals Totals
	item, err := txn.Get([]byte(keyTotals))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return totals, nil // Nothing saved yet
	}
	if err != nil {
		return totals, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &totals)
	})
	return totals, err
}
