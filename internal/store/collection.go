// Package store owns the pantry, grocery list and shop collections. Each
// store is the only writer of its collection: mutations update the in-memory
// list, notify subscribers and then rewrite the whole collection through a
// Blobs collaborator.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/pantry-cli/internal/metrics"
)

// ErrPersist wraps failures to write a collection. The in-memory change is
// kept; the next successful rewrite carries it to storage.
var ErrPersist = errors.New("persist collection")

const (
	IngredientsKey = "ingredients"
	GroceryKey     = "grocery"
	ShopsKey       = "shops"
)

// Blobs is the durable key-value collaborator. Values are JSON documents;
// an empty collection is stored as a missing key.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Option func(*options)

type options struct {
	now     func() time.Time
	newID   func() string
	log     *slog.Logger
	metrics *metrics.Collector
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type collection[T any] struct {
	mu    sync.RWMutex
	name  string
	key   string
	blobs Blobs
	opts  options
	items []T
	raw   []byte
	idOf  func(T) string
	clone func(T) T

	subMu   sync.Mutex
	subs    map[int]func([]T)
	nextSub int
}

func newCollection[T any](name, key string, blobs Blobs, opts options, idOf func(T) string, clone func(T) T) *collection[T] {
	return &collection[T]{
		name:  name,
		key:   key,
		blobs: blobs,
		opts:  opts,
		items: make([]T, 0),
		idOf:  idOf,
		clone: clone,
		subs:  map[int]func([]T){},
	}
}

func (c *collection[T]) load(ctx context.Context, fix func(*T)) error {
	raw, found, err := c.blobs.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}
	items := make([]T, 0)
	if found && len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode %s: %w", c.name, err)
		}
	}
	if fix != nil {
		for i := range items {
			fix(&items[i])
		}
	}
	c.mu.Lock()
	changed := !bytes.Equal(raw, c.raw)
	c.items = items
	c.raw = raw
	c.mu.Unlock()
	c.opts.log.Debug("collection loaded", "store", c.name, "items", len(items), "changed", changed)
	if changed {
		c.notify()
	}
	return nil
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, c.clone(it))
	}
	return out
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if c.idOf(it) == id {
			return c.clone(it), true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// mutate applies fn to the current list under the write lock. When fn
// reports a change the new list becomes visible, subscribers run and the
// whole collection is rewritten.
func (c *collection[T]) mutate(ctx context.Context, op string, fn func([]T) ([]T, bool)) (bool, error) {
	c.mu.Lock()
	next, changed := fn(c.items)
	if !changed {
		c.mu.Unlock()
		return false, nil
	}
	c.items = next
	snapshot := make([]T, len(next))
	copy(snapshot, next)
	c.mu.Unlock()

	c.opts.metrics.StoreMutation(c.name, op)
	c.notify()
	return true, c.persist(ctx, snapshot)
}

func (c *collection[T]) persist(ctx context.Context, items []T) error {
	var raw []byte
	if len(items) > 0 {
		var err error
		if raw, err = json.Marshal(items); err != nil {
			c.opts.metrics.PersistFailure(c.name)
			return fmt.Errorf("%w %s: encode: %v", ErrPersist, c.name, err)
		}
	}
	var err error
	if raw == nil {
		err = c.blobs.Delete(ctx, c.key)
	} else {
		err = c.blobs.Put(ctx, c.key, raw)
	}
	if err != nil {
		c.opts.metrics.PersistFailure(c.name)
		c.opts.log.Error("collection write failed", "store", c.name, "key", c.key, "err", err)
		return fmt.Errorf("%w %s: %w", ErrPersist, c.name, err)
	}
	c.mu.Lock()
	c.raw = raw
	c.mu.Unlock()
	return nil
}

func (c *collection[T]) subscribe(fn func([]T)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *collection[T]) notify() {
	c.subMu.Lock()
	fns := make([]func([]T), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	if len(fns) == 0 {
		return
	}
	snapshot := c.list()
	for _, fn := range fns {
		fn(snapshot)
	}
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}
