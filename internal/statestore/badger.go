package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/abhisek/voxtutor/internal/persona"
)

// Badger is a Store backed by an embedded BadgerDB.
type Badger struct {
	db     *badger.DB
	prefix string
}

// OpenBadger opens a BadgerDB at path. An empty path runs fully in memory.
func OpenBadger(path, prefix string) (*Badger, error) {
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger state store: %w", err)
	}
	return &Badger{db: db, prefix: prefix}, nil
}

func (b *Badger) key(sessionID string) []byte {
	return []byte(b.prefix + sessionID)
}

func (b *Badger) Get(_ context.Context, sessionID string) (persona.SessionState, error) {
	var st persona.SessionState
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			st, derr = decode(val)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return st, fmt.Errorf("%s: %w", sessionID, ErrNotFound)
	}
	return st, err
}

func (b *Badger) Put(_ context.Context, st persona.SessionState) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(st.SessionID), raw)
	})
}

func (b *Badger) Delete(_ context.Context, sessionID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(sessionID))
	})
}

func (b *Badger) List(_ context.Context) ([]persona.SessionState, error) {
	var out []persona.SessionState
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(b.prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				st, err := decode(val)
				if err != nil {
					return err
				}
				out = append(out, st)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortStates(out)
	return out, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
