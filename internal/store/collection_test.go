package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/theirongolddev/rupee/internal/model"
)

type item struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Done  bool    `json:"done"`
}

func (i item) RecordID() string { return i.ID }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "rupee.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadSeedsOnFirstRun(t *testing.T) {
	db := openTestDB(t)
	c := NewCollection(db, "items", func() []item {
		return []item{{ID: "seed-1", Value: 10}}
	})

	items, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].ID != "seed-1" {
		t.Fatalf("Load = %+v, want seed", items)
	}

	// The seed is persisted, so a collection without a seed sees it too.
	plain := NewCollection[item](db, "items", nil)
	again, err := plain.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(again) != 1 {
		t.Fatalf("len = %d, want 1", len(again))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	c := NewCollection[item](db, "items", nil)

	want := []item{
		{ID: "c", Value: 3.5, Done: true},
		{ID: "a", Value: 1250},
		{ID: "b", Value: 0.1},
	}
	if err := c.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSaveEmptyIsNotSeeded(t *testing.T) {
	db := openTestDB(t)
	c := NewCollection(db, "items", func() []item { return []item{{ID: "seed"}} })

	if err := c.Save(nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0 (explicitly emptied collection must stay empty)", len(got))
	}
}

func TestLoadCorrupt(t *testing.T) {
	db := openTestDB(t)
	if err := db.Put("items", []byte(`{"not":"an array"`)); err != nil {
		t.Fatal(err)
	}

	c := NewCollection(db, "items", func() []item { return []item{{ID: "seed"}} })
	_, err := c.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load err = %v, want ErrCorrupt", err)
	}

	items, err := c.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(items) != 1 || items[0].ID != "seed" {
		t.Fatalf("Reset = %+v, want seed", items)
	}
	if _, err := c.Load(); err != nil {
		t.Fatalf("Load after Reset: %v", err)
	}
}

func TestKeysAndDelete(t *testing.T) {
	db := openTestDB(t)
	_ = db.Put("b", []byte("[]"))
	_ = db.Put("a", []byte("[1]"))

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 || keys[0].Key != "a" || keys[1].Key != "b" {
		t.Fatalf("Keys = %+v, want [a b]", keys)
	}
	if keys[0].Bytes != 3 {
		t.Fatalf("a bytes = %d, want 3", keys[0].Bytes)
	}

	if err := db.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := db.Delete("missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, ok, _ := db.Get("a"); ok {
		t.Fatal("a still present after Delete")
	}
}

func TestIndexOf(t *testing.T) {
	items := []item{{ID: "x"}, {ID: "y"}}
	if got := IndexOf(items, "y"); got != 1 {
		t.Fatalf("IndexOf(y) = %d, want 1", got)
	}
	if got := IndexOf(items, "z"); got != -1 {
		t.Fatalf("IndexOf(z) = %d, want -1", got)
	}
}

func TestResolvePrefix(t *testing.T) {
	items := []item{{ID: "abc123"}, {ID: "abd456"}, {ID: "ab"}}

	if got, err := ResolvePrefix(items, "abc"); err != nil || got != "abc123" {
		t.Fatalf("ResolvePrefix(abc) = %q, %v", got, err)
	}
	if got, err := ResolvePrefix(items, "ab"); err != nil || got != "ab" {
		t.Fatalf("exact match = %q, %v; want ab", got, err)
	}
	if _, err := ResolvePrefix(items, "abd4"); err != nil {
		t.Fatalf("ResolvePrefix(abd4): %v", err)
	}
	if _, err := ResolvePrefix(items[:2], "ab"); !errors.Is(err, model.ErrAmbiguousID) {
		t.Fatalf("ambiguous prefix err = %v", err)
	}
	if _, err := ResolvePrefix(items, "zz"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing prefix err = %v", err)
	}
}

func TestResolvePrefixExactMatchAfterPrefixMatches(t *testing.T) {
	items := []item{{ID: "ab1"}, {ID: "ab2"}, {ID: "ab"}}
	if got, err := ResolvePrefix(items, "ab"); err != nil || got != "ab" {
		t.Fatalf("ResolvePrefix(ab) = %q, %v; want ab", got, err)
	}
}

func TestMutateSkipsWriteOnNoChange(t *testing.T) {
	db := openTestDB(t)
	c := NewCollection[item](db, "items", nil)
	if err := c.Save([]item{{ID: "a"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := c.Mutate(func(items []item) ([]item, error) {
		return nil, ErrNoChange
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	items, _ := c.Load()
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}

	boom := errors.New("boom")
	err = c.Mutate(func(items []item) ([]item, error) {
		return append(items, item{ID: "b"}), boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Mutate err = %v, want boom", err)
	}
	if items, _ := c.Load(); len(items) != 1 {
		t.Fatalf("failed Mutate wrote %d items", len(items))
	}
}

func TestMutateCorrupt(t *testing.T) {
	db := openTestDB(t)
	if err := db.Put("items", []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	c := NewCollection[item](db, "items", nil)
	err := c.Mutate(func(items []item) ([]item, error) { return items, nil })
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Mutate err = %v, want ErrCorrupt", err)
	}
}

func TestConcurrentMutateFromTwoHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rupee.db")
	var handles []*DB
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		handles = append(handles, db)
	}

	const perHandle = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*perHandle)
	for h, db := range handles {
		c := NewCollection[item](db, "items", nil)
		for i := 0; i < perHandle; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				errs <- c.Mutate(func(items []item) ([]item, error) {
					return append(items, item{ID: id}), nil
				})
			}(fmt.Sprintf("h%d-%d", h, i))
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Mutate: %v", err)
		}
	}

	items, err := NewCollection[item](handles[0], "items", nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 2*perHandle {
		t.Fatalf("items after %d appends from two handles = %d", 2*perHandle, len(items))
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %s", it.ID)
		}
		seen[it.ID] = true
	}
}
