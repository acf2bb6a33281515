package store

import (
	"context"
	"errors"
)

// Snapshot keys. Each key holds one whole collection serialized as a JSON array.
const (
	ProductsKey  = "cafeProducts"
	SalesKey     = "cafeSales"
	CustomersKey = "cafeCustomers"
)

var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// KV is the persistence boundary: a string key-value store that only ever
// receives complete snapshots.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Batcher is implemented by stores that can write several keys in one step.
type Batcher interface {
	SetMany(ctx context.Context, entries map[string]string) error
}

// Write stores all entries, in one batch when kv supports it.
func Write(ctx context.Context, kv KV, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	if batcher, ok := kv.(Batcher); ok {
		return batcher.SetMany(ctx, entries)
	}
	for key, value := range entries {
		if err := kv.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
