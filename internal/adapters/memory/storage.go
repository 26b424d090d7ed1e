package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// Storage is the in-memory StoragePort used by tests and by engines
// configured without a data directory.
type Storage struct {
	data   map[string][]byte
	closed bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewStorage(logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		data:   make(map[string][]byte),
		logger: logger.With("component", "storage", "type", "memory"),
	}
}

func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored

	s.logger.Debug("value stored", "key", key, "value_length", len(value))
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}

	value, exists := s.data[key]
	if !exists {
		return nil, domain.NewNotFoundError("key", key)
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	delete(s.data, key)
	return nil
}

func (s *Storage) ListByPrefix(ctx context.Context, prefix string) ([]ports.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}

	var items []ports.KeyValue
	for key, value := range s.data {
		if strings.HasPrefix(key, prefix) {
			out := make([]byte, len(value))
			copy(out, value)
			items = append(items, ports.KeyValue{Key: key, Value: out})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

func (s *Storage) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrClosed
	}

	deleted := 0
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
			deleted++
		}
	}

	s.logger.Debug("prefix deleted", "prefix", prefix, "deleted_count", deleted)
	return deleted, nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
