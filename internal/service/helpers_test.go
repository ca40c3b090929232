package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/saadjs/pantry-cli/internal/db"
	"github.com/saadjs/pantry-cli/internal/store"
)

func newServiceStores(t *testing.T, sqldb *sql.DB, now func() time.Time) Stores {
	t.Helper()
	blobs := db.NewSQLiteBlobs(sqldb)
	s := Stores{
		Inventory: store.NewInventory(blobs, store.WithClock(now)),
		Grocery:   store.NewGrocery(blobs, store.WithClock(now)),
		Shops:     store.NewShops(blobs, store.WithClock(now)),
	}
	ctx := context.Background()
	for _, load := range []func(context.Context) error{s.Inventory.Load, s.Grocery.Load, s.Shops.Load} {
		if err := load(ctx); err != nil {
			t.Fatalf("load store: %v", err)
		}
	}
	return s
}

// switchBlobs fails writes to selected keys on demand.
type switchBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn map[string]bool
}

func newSwitchBlobs() *switchBlobs {
	return &switchBlobs{data: map[string][]byte{}, failOn: map[string]bool{}}
}

func (b *switchBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *switchBlobs) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn[key] {
		return errors.New("disk full")
	}
	b.data[key] = append([]byte(nil), value...)
	return nil
}

func (b *switchBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn[key] {
		return errors.New("disk full")
	}
	delete(b.data, key)
	return nil
}

func (b *switchBlobs) fail(key string, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOn[key] = on
}
