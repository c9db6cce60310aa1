package storage

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/oops"
	"github.com/valkey-io/valkey-go"

	"github.com/hperssn/practicetimer/internal/config"
)

// ValkeyBackend stores items as plain string keys of the selected Valkey database.
type ValkeyBackend struct {
	client valkey.Client
}

var (
	_ Backend = (*ValkeyBackend)(nil)
	_ Lister  = (*ValkeyBackend)(nil)
)

func NewValkeyBackend(client valkey.Client) *ValkeyBackend {
	return &ValkeyBackend{client: client}
}

// DialValkey connects to the server described by cfg.
func DialValkey(cfg config.Valkey) (*ValkeyBackend, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Address},
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, oops.In("storage").With("address", cfg.Address).Wrapf(err, "connecting to valkey")
	}

	return NewValkeyBackend(client), nil
}

func (b *ValkeyBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := b.client.Do(ctx, b.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return "", false, nil
		}
		return "", false, oops.In("storage").With("key", key).Wrapf(err, "executing get command")
	}

	return value, true, nil
}

func (b *ValkeyBackend) SetItem(ctx context.Context, key, value string) error {
	if err := b.client.Do(ctx, b.client.B().Set().Key(key).Value(value).Build()).Error(); err != nil {
		return oops.In("storage").With("key", key).Wrapf(err, "executing set command")
	}
	return nil
}

func (b *ValkeyBackend) RemoveItem(ctx context.Context, key string) error {
	if err := b.client.Do(ctx, b.client.B().Del().Key(key).Build()).Error(); err != nil {
		return oops.In("storage").With("key", key).Wrapf(err, "executing del command")
	}
	return nil
}

// Clear flushes the whole selected database.
func (b *ValkeyBackend) Clear(ctx context.Context) error {
	if err := b.client.Do(ctx, b.client.B().Flushdb().Build()).Error(); err != nil {
		return oops.In("storage").Wrapf(err, "executing flushdb command")
	}
	return nil
}

func (b *ValkeyBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := globEscape(prefix) + "*"

	var keys []string
	var cursor uint64
	for {
		scan, err := b.client.Do(ctx, b.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()).AsScanEntry()
		if err != nil {
			return nil, oops.In("storage").With("prefix", prefix).Wrapf(err, "executing scan command")
		}

		keys = append(keys, scan.Elements...)

		cursor = scan.Cursor
		if cursor == 0 {
			break
		}
	}

	// SCAN may return a key more than once.
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func (b *ValkeyBackend) Close() error {
	b.client.Close()
	return nil
}

func globEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
