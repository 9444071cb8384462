package database

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger"
)

// BadgerBackend keeps documents in an embedded Badger key-value store.
type BadgerBackend struct {
	db         *badger.DB
	maxRetries int
}

// OpenBadger opens (creating if needed) the Badger directory at dir.
func OpenBadger(dir string) (*BadgerBackend, error) {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("open badger kv dir %s: %w", dir, err)
	}
	return &BadgerBackend{db: db, maxRetries: 3}, nil
}

func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	return value, nil
}

func (b *BadgerBackend) Write(ctx context.Context, ops ...Op) error {
	return retry(ctx, b.maxRetries, func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			for _, op := range ops {
				if op.Delete {
					if err := txn.Delete([]byte(op.Key)); err != nil {
						return fmt.Errorf("delete document %s: %w", op.Key, err)
					}
					continue
				}
				if err := txn.Set([]byte(op.Key), op.Value); err != nil {
					return fmt.Errorf("set document %s: %w", op.Key, err)
				}
			}
			return nil
		})
	})
}

func (b *BadgerBackend) Ping(context.Context) error {
	return b.db.View(func(*badger.Txn) error { return nil })
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
