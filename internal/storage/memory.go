package storage

import (
	"context"
	"slices"
	"strings"

	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps items in process memory. Items never expire but do not
// survive a restart, which makes it suitable for tests and throwaway runs.
type MemoryBackend struct {
	items *cache.Cache
}

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Lister  = (*MemoryBackend)(nil)
)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: cache.New(cache.NoExpiration, 0),
	}
}

func (b *MemoryBackend) GetItem(_ context.Context, key string) (string, bool, error) {
	v, ok := b.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (b *MemoryBackend) SetItem(_ context.Context, key, value string) error {
	b.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (b *MemoryBackend) RemoveItem(_ context.Context, key string) error {
	b.items.Delete(key)
	return nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.items.Flush()
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range b.items.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
