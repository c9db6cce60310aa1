// Package keyedstore namespaces a shared durable store by key prefix and
// stores JSON encoded values under the namespaced keys.
package keyedstore

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"github.com/samber/oops"

	"github.com/hperssn/practicetimer/internal/storage"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSerialization      = errors.New("serializing value")
	ErrDeserialization    = errors.New("deserializing value")
	ErrNotSupported       = errors.New("operation not supported by the storage backend")
)

// Store reads and writes values of one consumer. Every key is prefixed, so
// consumers with different prefixes can share a backend without colliding.
type Store struct {
	backend storage.Backend
	prefix  string
}

// New creates a Store and seeds defaults: every key of defaults that has no
// stored value yet is written. Existing values are never overwritten.
func New(ctx context.Context, backend storage.Backend, prefix string, defaults map[string]any) (*Store, error) {
	s := &Store{
		backend: backend,
		prefix:  prefix,
	}

	// Sorted so seeding order does not depend on map iteration.
	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		item, err := s.raw(ctx, key)
		if err != nil {
			return nil, err
		}
		if item != "" {
			continue
		}
		if err := s.Set(ctx, key, defaults[key]); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

// Set serializes value and writes it under the namespaced key.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrSerialization, err), "encoding value")
	}

	if err := s.backend.SetItem(ctx, s.key(key), string(data)); err != nil {
		return oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrStorageUnavailable, err), "writing value")
	}

	return nil
}

// Get decodes the value stored under key into into. It reports false, and
// leaves into untouched, when nothing (or an empty string) is stored.
func (s *Store) Get(ctx context.Context, key string, into any) (bool, error) {
	item, err := s.raw(ctx, key)
	if err != nil {
		return false, err
	}
	if item == "" {
		return false, nil
	}

	if err := json.Unmarshal([]byte(item), into); err != nil {
		return false, oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrDeserialization, err), "decoding value")
	}

	return true, nil
}

// Lookup is the typed form of Store.Get.
func Lookup[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var v T
	ok, err := s.Get(ctx, key, &v)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// RemoveItem deletes the value stored under key. It is a no-op when absent.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.backend.RemoveItem(ctx, s.key(key)); err != nil {
		return oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrStorageUnavailable, err), "removing value")
	}
	return nil
}

// Clear wipes the whole backend, including keys of other prefixes.
// Use ClearNamespace to remove only this store's keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return oops.In("keyedstore").Wrapf(errors.Join(ErrStorageUnavailable, err), "clearing storage")
	}
	return nil
}

// ClearNamespace removes every key that carries this store's prefix.
func (s *Store) ClearNamespace(ctx context.Context) error {
	lister, ok := s.backend.(storage.Lister)
	if !ok {
		return oops.In("keyedstore").Wrapf(ErrNotSupported, "listing keys")
	}

	keys, err := lister.Keys(ctx, s.prefix)
	if err != nil {
		return oops.In("keyedstore").With("prefix", s.prefix).Wrapf(errors.Join(ErrStorageUnavailable, err), "listing keys")
	}

	for _, key := range keys {
		if err := s.backend.RemoveItem(ctx, key); err != nil {
			return oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrStorageUnavailable, err), "removing value")
		}
	}

	return nil
}

func (s *Store) raw(ctx context.Context, key string) (string, error) {
	item, _, err := s.backend.GetItem(ctx, s.key(key))
	if err != nil {
		return "", oops.In("keyedstore").With("key", key).Wrapf(errors.Join(ErrStorageUnavailable, err), "reading value")
	}
	return item, nil
}
