package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// Adapter persists workflow and execution documents in a badger database,
// one JSON document per key.
type Adapter struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewAdapter(dataDir string, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dataDir).
		WithLogger(nil).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewStorageError("open", dataDir, err)
	}

	return &Adapter{
		db:     db,
		logger: logger.With("component", "storage", "type", "badger"),
	}, nil
}

func (a *Adapter) Put(ctx context.Context, key string, value []byte) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		a.logger.Error("put failed", "key", key, "error", err.Error())
		return domain.NewStorageError("put", key, err)
	}

	a.logger.Debug("value stored", "key", key, "value_length", len(value))
	return nil
}

func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.NewNotFoundError("key", key)
	}
	if err != nil {
		a.logger.Error("get failed", "key", key, "error", err.Error())
		return nil, domain.NewStorageError("get", key, err)
	}

	return value, nil
}

func (a *Adapter) Delete(ctx context.Context, key string) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		a.logger.Error("delete failed", "key", key, "error", err.Error())
		return domain.NewStorageError("delete", key, err)
	}
	return nil
}

func (a *Adapter) ListByPrefix(ctx context.Context, prefix string) ([]ports.KeyValue, error) {
	var items []ports.KeyValue

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			items = append(items, ports.KeyValue{
				Key:   string(item.KeyCopy(nil)),
				Value: value,
			})
		}
		return nil
	})

	if err != nil {
		a.logger.Error("prefix scan failed", "prefix", prefix, "error", err.Error())
		return nil, domain.NewStorageError("list", prefix, err)
	}

	return items, nil
}

func (a *Adapter) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	items, err := a.ListByPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = a.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			if err := txn.Delete([]byte(item.Key)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return deleted, domain.NewStorageError("delete_prefix", prefix, err)
	}

	a.logger.Debug("prefix deleted", "prefix", prefix, "deleted_count", deleted)
	return deleted, nil
}

func (a *Adapter) Close() error {
	a.logger.Debug("closing badger database")
	return a.db.Close()
}
