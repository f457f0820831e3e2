// Package ledger is the entity CRUD layer and the service that ties mutations to
// aggregation, threshold evaluation and notifications.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

// Book is the CRUD surface of one domain's entry collection.
type Book struct {
	domain model.Domain
	items  *store.Collection[model.Entry]
	now    func() time.Time
}

// NewBook returns the book for domain stored in kv. Entry books start empty.
func NewBook(kv store.KV, domain model.Domain, now func() time.Time) *Book {
	if now == nil {
		now = time.Now
	}
	return &Book{
		domain: domain,
		items:  store.NewCollection[model.Entry](kv, domain.StorageKey(), nil),
		now:    now,
	}
}

// Domain returns the domain this book holds.
func (b *Book) Domain() model.Domain { return b.domain }

// Add validates d and prepends the new entry.
func (b *Book) Add(d Draft) (model.Entry, error) {
	now := b.now()
	e, err := d.build(b.domain, now)
	if err != nil {
		return model.Entry{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = now

	err = b.items.Mutate(func(items []model.Entry) ([]model.Entry, error) {
		return append([]model.Entry{e}, items...), nil
	})
	if err != nil {
		return model.Entry{}, fmt.Errorf("saving %s: %w", b.domain, err)
	}
	return e, nil
}

// AddAll validates every draft and saves the valid ones in a single write.
// errs is indexed like drafts and is nil at each draft that was added. The
// added entries end up newest first, so the last draft is at the top.
func (b *Book) AddAll(drafts []Draft) (added []model.Entry, errs []error, err error) {
	now := b.now()
	errs = make([]error, len(drafts))
	for i, d := range drafts {
		e, buildErr := d.build(b.domain, now)
		if buildErr != nil {
			errs[i] = buildErr
			continue
		}
		e.ID = uuid.NewString()
		e.CreatedAt = now
		added = append(added, e)
	}
	if len(added) == 0 {
		return nil, errs, nil
	}

	err = b.items.Mutate(func(items []model.Entry) ([]model.Entry, error) {
		merged := make([]model.Entry, 0, len(added)+len(items))
		for i := len(added) - 1; i >= 0; i-- {
			merged = append(merged, added[i])
		}
		return append(merged, items...), nil
	})
	if err != nil {
		return nil, errs, fmt.Errorf("saving %s: %w", b.domain, err)
	}
	return added, errs, nil
}

// Update applies p to the entry with id.
func (b *Book) Update(id string, p Patch) (model.Entry, error) {
	var updated model.Entry
	err := b.items.Mutate(func(items []model.Entry) ([]model.Entry, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", b.domain, id, model.ErrNotFound)
		}
		e, err := p.apply(items[i])
		if err != nil {
			return nil, err
		}
		items[i] = e
		updated = e
		return items, nil
	})
	if err != nil {
		return model.Entry{}, err
	}
	return updated, nil
}

// Remove deletes the entry with id. Unknown ids leave the collection unchanged.
func (b *Book) Remove(id string) error {
	return b.items.Mutate(func(items []model.Entry) ([]model.Entry, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, store.ErrNoChange
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// ToggleFlag flips the paid/disposed/cleared flag of the entry with id.
func (b *Book) ToggleFlag(id string) (model.Entry, error) {
	var toggled model.Entry
	err := b.items.Mutate(func(items []model.Entry) ([]model.Entry, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", b.domain, id, model.ErrNotFound)
		}
		items[i].Flag = !items[i].Flag
		toggled = items[i]
		return items, nil
	})
	if err != nil {
		return model.Entry{}, err
	}
	return toggled, nil
}

// List returns every entry, newest first.
func (b *Book) List() ([]model.Entry, error) {
	return b.items.Load()
}

// Get returns the entry with id.
func (b *Book) Get(id string) (model.Entry, error) {
	items, err := b.items.Load()
	if err != nil {
		return model.Entry{}, err
	}
	i := store.IndexOf(items, id)
	if i < 0 {
		return model.Entry{}, fmt.Errorf("%s %s: %w", b.domain, id, model.ErrNotFound)
	}
	return items[i], nil
}

// Resolve expands a short id prefix to the full id.
func (b *Book) Resolve(prefix string) (string, error) {
	items, err := b.items.Load()
	if err != nil {
		return "", err
	}
	return store.ResolvePrefix(items, prefix)
}

// Reset empties the collection.
func (b *Book) Reset() error {
	_, err := b.items.Reset()
	return err
}
