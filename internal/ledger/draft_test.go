package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/rupee/internal/model"
)

func TestParseAmount(t *testing.T) {
	good := map[string]float64{
		"250":        250,
		" 99.999 ":   100,
		"₹1,23,456":  123456,
		"₹ 12.5":     12.5,
		"0.01":       0.01,
		"1e3":        1000,
	}
	for in, want := range good {
		got, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "  ", "NaN", "abc", "-1", "0", "₹"} {
		if _, err := ParseAmount(in); !errors.Is(err, model.ErrMissingRequiredField) {
			t.Errorf("ParseAmount(%q) err = %v, want ErrMissingRequiredField", in, err)
		}
	}
}

func TestDraftDefaultsDateToToday(t *testing.T) {
	now := time.Date(2026, 10, 17, 18, 30, 0, 0, time.UTC)
	e, err := expenseDraft("10", "Tea").build(model.DomainExpense, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC); !e.Date.Equal(want) {
		t.Fatalf("Date = %v, want %v", e.Date, want)
	}
	if e.Bill != nil || e.Waste != nil {
		t.Fatal("expense entry carries another domain's details")
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatal("zero Patch not empty")
	}
	desc := ""
	if (Patch{Description: &desc}).Empty() {
		t.Fatal("Patch with description reported empty")
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local)
	for _, in := range []string{"2026-10-20", "20 Oct 2026", "20/10/2026"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}

	if got, err := ParseDate("  "); err != nil || !got.IsZero() {
		t.Fatalf("ParseDate(blank) = %v, %v", got, err)
	}
	if _, err := ParseDate("next tuesday"); !errors.Is(err, model.ErrMissingRequiredField) {
		t.Fatalf("ParseDate(garbage) err = %v", err)
	}
}
