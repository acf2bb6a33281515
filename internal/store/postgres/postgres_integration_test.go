package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"wingscafe/backend/internal/store"
)

func TestSnapshotBatchIsVisibleAfterCommit(t *testing.T) {
	databaseURL := os.Getenv("WINGSCAFE_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set WINGSCAFE_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productsKey := fmt.Sprintf("it-%d-%s", stamp, store.ProductsKey)
	salesKey := fmt.Sprintf("it-%d-%s", stamp, store.SalesKey)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_snapshots WHERE key = ANY($1)`, []string{productsKey, salesKey})
	})

	if _, ok, err := s.Get(ctx, productsKey); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%t err=%v", ok, err)
	}

	if err := store.Write(ctx, s, map[string]string{productsKey: `[]`, salesKey: `[{"id":"sale-1"}]`}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := s.Set(ctx, productsKey, `[{"id":"prod-1"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, err := s.Get(ctx, productsKey)
	if err != nil || !ok {
		t.Fatalf("get products: ok=%t err=%v", ok, err)
	}
	if value != `[{"id":"prod-1"}]` {
		t.Fatalf("expected overwritten snapshot, got %s", value)
	}

	value, ok, err = s.Get(ctx, salesKey)
	if err != nil || !ok || value != `[{"id":"sale-1"}]` {
		t.Fatalf("unexpected sales snapshot %q ok=%t err=%v", value, ok, err)
	}
}
