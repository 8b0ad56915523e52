// Package memory holds every record in process memory. Nothing survives a
// restart; the store is seeded from the mock-data fixture on start.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/hospital-ops/internal/repository"
)

// Collection is an ordered, mutex-guarded slice of records keyed by id.
// Callers always receive copies, never pointers into the store.
type Collection[T any] struct {
	mu    sync.RWMutex
	kind  string
	id    func(*T) string
	items []T
	index map[string]int
}

func NewCollection[T any](kind string, id func(*T) string, items []T) *Collection[T] {
	c := &Collection[T]{
		kind:  kind,
		id:    id,
		items: make([]T, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		c.index[id(&item)] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*T, len(c.items))
	for i := range c.items {
		item := c.items[i]
		out[i] = &item
	}
	return out, nil
}

// Select returns copies of the records keep accepts.
func (c *Collection[T]) Select(ctx context.Context, keep func(*T) bool) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*T
	for i := range c.items {
		if keep(&c.items[i]) {
			item := c.items[i]
			out = append(out, &item)
		}
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", c.kind, id, repository.ErrNotFound)
	}
	item := c.items[i]
	return &item, nil
}

func (c *Collection[T]) Create(ctx context.Context, item *T) error {
	return c.create(ctx, item, nil)
}

// create runs prepare under the write lock so it can derive fields from the
// collection's current size.
func (c *Collection[T]) create(ctx context.Context, item *T, prepare func(n int, item *T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prepare != nil {
		prepare(len(c.items), item)
	}
	id := c.id(item)
	if id == "" {
		return fmt.Errorf("%s id is required", c.kind)
	}
	if _, exists := c.index[id]; exists {
		return fmt.Errorf("%s %s: %w", c.kind, id, repository.ErrDuplicate)
	}

	c.index[id] = len(c.items)
	c.items = append(c.items, *item)
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, item *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.id(item)
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.kind, id, repository.ErrNotFound)
	}
	c.items[i] = *item
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.kind, id, repository.ErrNotFound)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.id(&c.items[j])] = j
	}
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
