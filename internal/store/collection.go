package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/model"
)

// ErrCorrupt is returned when a stored collection cannot be decoded.
var ErrCorrupt = errors.New("stored collection is corrupt")

// Record is an element of a collection addressable by ID.
type Record interface {
	RecordID() string
}

// Collection persists a whole []T as one JSON array under a single key.
type Collection[T any] struct {
	kv   KV
	key  string
	seed func() []T
}

// NewCollection returns a collection stored under key. seed may be nil, in which
// case a first load yields an empty collection.
func NewCollection[T any](kv KV, key string, seed func() []T) *Collection[T] {
	return &Collection[T]{kv: kv, key: key, seed: seed}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

// Load returns the persisted collection. On first run the seed is written and returned.
func (c *Collection[T]) Load() ([]T, error) {
	data, ok, err := c.kv.Get(c.key)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.decode(data, true)
	}

	// Seed under the write lock so a concurrent first run keeps whichever seed
	// landed first.
	var items []T
	err = c.kv.Update(c.key, func(old []byte, ok bool) ([]byte, error) {
		cur, err := c.decode(old, ok)
		if err != nil {
			return nil, err
		}
		items = cur
		if ok {
			return nil, ErrNoChange
		}
		return c.encode(cur)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Mutate applies fn to the stored collection and writes the result, in a single
// transaction. A key that was never written starts from the seed. fn may return
// ErrNoChange to skip the write; any other error is returned as is.
func (c *Collection[T]) Mutate(fn func(items []T) ([]T, error)) error {
	return c.kv.Update(c.key, func(old []byte, ok bool) ([]byte, error) {
		items, err := c.decode(old, ok)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return c.encode(next)
	})
}

// Save writes the full collection, replacing whatever was stored.
func (c *Collection[T]) Save(items []T) error {
	data, err := c.encode(items)
	if err != nil {
		return err
	}
	return c.kv.Put(c.key, data)
}

// Reset overwrites the stored collection with the seed.
func (c *Collection[T]) Reset() ([]T, error) {
	items := c.seedItems()
	if err := c.Save(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T]) seedItems() []T {
	items := []T{}
	if c.seed != nil {
		items = append(items, c.seed()...)
	}
	return items
}

func (c *Collection[T]) decode(data []byte, ok bool) ([]T, error) {
	if !ok {
		return c.seedItems(), nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.key, err)
	}
	return data, nil
}

// IndexOf returns the position of the record with id, or -1.
func IndexOf[T Record](items []T, id string) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

// ResolvePrefix returns the id of the single record whose id starts with prefix.
// An exact match always wins.
func ResolvePrefix[T Record](items []T, prefix string) (string, error) {
	if prefix == "" {
		return "", model.ErrNotFound
	}
	if IndexOf(items, prefix) >= 0 {
		return prefix, nil
	}

	var match string
	for _, it := range items {
		id := it.RecordID()
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", model.ErrAmbiguousID, prefix)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", model.ErrNotFound, prefix)
	}
	return match, nil
}
