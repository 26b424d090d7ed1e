package ports

import (
	"context"
)

// StoragePort is the key-value document store behind workflow definitions
// and finished execution records. One JSON document per key.
type StoragePort interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([]KeyValue, error)
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

type KeyValue struct {
	Key   string
	Value []byte
}
