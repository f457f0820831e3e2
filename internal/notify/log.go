// Package notify is the read/unread log of emitted alerts. It knows nothing about
// the domain that produced a notification.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

// StorageKey is the collection key notifications are persisted under.
const StorageKey = "notifications"

// Log is a persisted list of notifications, newest first.
type Log struct {
	items *store.Collection[model.Notification]
	now   func() time.Time
}

// New returns a log stored in kv. now may be nil.
func New(kv store.KV, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{
		items: store.NewCollection[model.Notification](kv, StorageKey, nil),
		now:   now,
	}
}

// Append prepends n, assigning an ID and CreatedAt when they are unset.
func (l *Log) Append(n model.Notification) (model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = l.now()
	}
	if n.Kind == "" {
		n.Kind = model.NotifyInfo
	}

	err := l.items.Mutate(func(items []model.Notification) ([]model.Notification, error) {
		return append([]model.Notification{n}, items...), nil
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// MarkRead marks one notification read.
func (l *Log) MarkRead(id string) error {
	return l.items.Mutate(func(items []model.Notification) ([]model.Notification, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, model.ErrNotFound
		}
		if items[i].IsRead {
			return nil, store.ErrNoChange
		}
		items[i].IsRead = true
		return items, nil
	})
}

// MarkAllRead marks every notification read and returns how many changed.
func (l *Log) MarkAllRead() (int, error) {
	changed := 0
	err := l.items.Mutate(func(items []model.Notification) ([]model.Notification, error) {
		changed = 0
		for i := range items {
			if !items[i].IsRead {
				items[i].IsRead = true
				changed++
			}
		}
		if changed == 0 {
			return nil, store.ErrNoChange
		}
		return items, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Remove deletes one notification. Unknown ids are ignored.
func (l *Log) Remove(id string) error {
	return l.items.Mutate(func(items []model.Notification) ([]model.Notification, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, store.ErrNoChange
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// List returns every notification, newest first.
func (l *Log) List() ([]model.Notification, error) {
	return l.items.Load()
}

// Unread returns the unread notifications, newest first.
func (l *Log) Unread() ([]model.Notification, error) {
	items, err := l.items.Load()
	if err != nil {
		return nil, err
	}
	var out []model.Notification
	for _, n := range items {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications.
func (l *Log) UnreadCount() (int, error) {
	unread, err := l.Unread()
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// Prune drops the oldest read notifications until at most keep remain. Unread
// notifications are never pruned. keep <= 0 disables pruning.
func (l *Log) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	dropped := 0
	err := l.items.Mutate(func(items []model.Notification) ([]model.Notification, error) {
		dropped = 0
		excess := len(items) - keep
		if excess <= 0 {
			return nil, store.ErrNoChange
		}

		drop := make(map[int]bool, excess)
		for i := len(items) - 1; i >= 0 && len(drop) < excess; i-- {
			if items[i].IsRead {
				drop[i] = true
			}
		}
		if len(drop) == 0 {
			return nil, store.ErrNoChange
		}

		kept := make([]model.Notification, 0, len(items)-len(drop))
		for i, n := range items {
			if !drop[i] {
				kept = append(kept, n)
			}
		}
		dropped = len(drop)
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return dropped, nil
}

// Resolve returns the id of the notification whose id starts with prefix.
func (l *Log) Resolve(prefix string) (string, error) {
	items, err := l.items.Load()
	if err != nil {
		return "", err
	}
	return store.ResolvePrefix(items, prefix)
}

// Clear removes every notification.
func (l *Log) Clear() error {
	_, err := l.items.Reset()
	return err
}
