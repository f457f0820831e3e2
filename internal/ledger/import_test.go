package ledger

import (
	"errors"
	"testing"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/source"
)

func rec(line int, domain, typ, amount, category, date string) source.Record {
	return source.Record{
		File: "import.jsonl",
		Line: line,
		Entry: source.RawEntry{
			Domain:   domain,
			Type:     typ,
			Amount:   []byte(`"` + amount + `"`),
			Category: category,
			Date:     date,
		},
	}
}

func TestDraftFromRecord(t *testing.T) {
	d, err := DraftFromRecord(rec(1, "Expenses", "", "120", "Tea", ""))
	if err != nil {
		t.Fatalf("DraftFromRecord: %v", err)
	}
	if d.Domain != model.DomainExpense || d.Kind != model.KindExpense || d.Amount != "120" {
		t.Fatalf("draft = %+v", d)
	}

	if _, err := DraftFromRecord(rec(1, "savings", "", "1", "x", "")); !errors.Is(err, model.ErrMissingRequiredField) {
		t.Fatalf("unknown domain err = %v", err)
	}
	if _, err := DraftFromRecord(rec(1, "bill", "", "1", "Water", "tomorrow")); !errors.Is(err, model.ErrMissingRequiredField) {
		t.Fatalf("bad date err = %v", err)
	}
}

func TestImportAddsValidAndEvaluatesOnce(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Import([]source.Record{
		rec(1, "expense", "expense", "600", "Food", ""),
		rec(2, "expense", "expense", "700", "Fuel", ""),
		rec(3, "expense", "expense", "-5", "Tea", ""),
		rec(4, "waste", "", "2", "organic", ""),
		rec(5, "waste", "", "1", "plastic", ""),
		rec(6, "bill", "", "900", "Water", ""),
	}, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if res.Added[model.DomainExpense] != 2 || res.Added[model.DomainWaste] != 1 || res.Total() != 3 {
		t.Fatalf("added = %v", res.Added)
	}
	if len(res.Rejected) != 3 {
		t.Fatalf("rejected = %v", res.Rejected)
	}
	for _, r := range res.Rejected {
		if r.File != "import.jsonl" || r.Line == 0 {
			t.Errorf("rejected without location: %s", r)
		}
	}

	// 1300 spent today crosses the seeded 1000 daily limit exactly once.
	if len(res.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(res.Alerts))
	}

	entries, _ := svc.Entries(model.DomainExpense)
	if len(entries) != 2 || entries[0].Category != "Fuel" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Import([]source.Record{
		rec(1, "expense", "income", "50000", "Salary", ""),
		rec(2, "expense", "refund", "10", "Shop", ""),
	}, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Total() != 1 || len(res.Rejected) != 1 || len(res.Alerts) != 0 {
		t.Fatalf("dry run = %+v", res)
	}
	if entries, _ := svc.Entries(model.DomainExpense); len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}
