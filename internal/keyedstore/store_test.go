package keyedstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/practicetimer/internal/keyedstore"
	"github.com/hperssn/practicetimer/internal/storage"
)

var errDisabled = errors.New("storage disabled")

// brokenBackend fails every operation, like a store disabled by the environment.
type brokenBackend struct{}

func (brokenBackend) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errDisabled
}
func (brokenBackend) SetItem(context.Context, string, string) error { return errDisabled }
func (brokenBackend) RemoveItem(context.Context, string) error      { return errDisabled }
func (brokenBackend) Clear(context.Context) error                   { return errDisabled }
func (brokenBackend) Close() error                                  { return nil }

// unlistable hides the Lister implementation of the wrapped backend.
type unlistable struct {
	storage.Backend
}

func TestNamespacing(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()

	a, err := keyedstore.New(ctx, backend, "a-", nil)
	require.NoError(t, err)
	b, err := keyedstore.New(ctx, backend, "b-", nil)
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "x", 1))

	var got int
	ok, err := b.Get(ctx, "x", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Get(ctx, "x", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	raw, ok, err := backend.GetItem(ctx, "a-x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", raw)
}

func TestDefaultSeeding(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()

	first, err := keyedstore.New(ctx, backend, "p-", map[string]any{"elapsedTimes": []int{7}})
	require.NoError(t, err)

	got, ok, err := keyedstore.Lookup[[]int](ctx, first, "elapsedTimes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{7}, got)

	second, err := keyedstore.New(ctx, backend, "p-", map[string]any{"elapsedTimes": []int{99, 100}})
	require.NoError(t, err)

	got, ok, err = keyedstore.Lookup[[]int](ctx, second, "elapsedTimes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{7}, got)
}

func TestDefaultSeedingReplacesEmptyValue(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.SetItem(ctx, "p-name", ""))

	s, err := keyedstore.New(ctx, backend, "p-", map[string]any{"name": "scales"})
	require.NoError(t, err)

	got, ok, err := keyedstore.Lookup[string](ctx, s, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "scales", got)
}

func TestGetMissing(t *testing.T) {
	ctx := t.Context()
	s, err := keyedstore.New(ctx, storage.NewMemoryBackend(), "p-", nil)
	require.NoError(t, err)

	got, ok, err := keyedstore.Lookup[[]int](ctx, s, "elapsedTimes")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetCorrupt(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.SetItem(ctx, "p-elapsedTimes", "[1, 2"))

	s, err := keyedstore.New(ctx, backend, "p-", nil)
	require.NoError(t, err)

	_, ok, err := keyedstore.Lookup[[]int](ctx, s, "elapsedTimes")
	assert.False(t, ok)
	assert.ErrorIs(t, err, keyedstore.ErrDeserialization)
}

func TestSetUnserializable(t *testing.T) {
	ctx := t.Context()
	s, err := keyedstore.New(ctx, storage.NewMemoryBackend(), "p-", nil)
	require.NoError(t, err)

	err = s.Set(ctx, "fn", func() {})
	assert.ErrorIs(t, err, keyedstore.ErrSerialization)
}

func TestRemoveItem(t *testing.T) {
	ctx := t.Context()
	s, err := keyedstore.New(ctx, storage.NewMemoryBackend(), "p-", nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "x", "value"))
	require.NoError(t, s.RemoveItem(ctx, "x"))
	require.NoError(t, s.RemoveItem(ctx, "x"))

	_, ok, err := keyedstore.Lookup[string](ctx, s, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearIsGlobal(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.SetItem(ctx, "unrelated", "keep?"))

	s, err := keyedstore.New(ctx, backend, "p-", map[string]any{"x": 1})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	keys, err := backend.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClearNamespace(t *testing.T) {
	ctx := t.Context()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.SetItem(ctx, "unrelated", "keep"))

	s, err := keyedstore.New(ctx, backend, "p-", map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	require.NoError(t, s.ClearNamespace(ctx))

	keys, err := backend.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated"}, keys)
}

func TestClearNamespaceUnsupported(t *testing.T) {
	ctx := t.Context()
	s, err := keyedstore.New(ctx, unlistable{storage.NewMemoryBackend()}, "p-", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ClearNamespace(ctx), keyedstore.ErrNotSupported)
}

func TestStorageUnavailable(t *testing.T) {
	ctx := t.Context()

	_, err := keyedstore.New(ctx, brokenBackend{}, "p-", map[string]any{"x": 1})
	require.ErrorIs(t, err, keyedstore.ErrStorageUnavailable)
	assert.ErrorIs(t, err, errDisabled)

	s, err := keyedstore.New(ctx, brokenBackend{}, "p-", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Set(ctx, "x", 1), keyedstore.ErrStorageUnavailable)
	assert.ErrorIs(t, s.RemoveItem(ctx, "x"), keyedstore.ErrStorageUnavailable)
	assert.ErrorIs(t, s.Clear(ctx), keyedstore.ErrStorageUnavailable)

	var v int
	_, err = s.Get(ctx, "x", &v)
	assert.ErrorIs(t, err, keyedstore.ErrStorageUnavailable)
}
