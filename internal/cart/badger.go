package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/maisonluxe/storefront/internal/entity"
)

const cartKeyPrefix = "cart:"

// BadgerStorage is a Storage backed by BadgerDB, so carts survive process
// restarts.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage wraps an open BadgerDB handle.
func NewBadgerStorage(db *badger.DB) *BadgerStorage {
	return &BadgerStorage{db: db}
}

// OpenBadger opens (or creates) a BadgerDB at dir with logging disabled.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

func (s *BadgerStorage) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cartKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return entity.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStorage) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(cartKeyPrefix+key), value); err != nil {
			return fmt.Errorf("set cart: %w", err)
		}
		return nil
	})
}

func (s *BadgerStorage) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(cartKeyPrefix + key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	})
}
