package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDomainHint(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"bills.jsonl", "bill"},
		{"expenses-2026.jsonl", "expense"},
		{"waste_oct.ndjson", "waste"},
		{"Expense.jsonl", "expense"},
		{"ledger.jsonl", ""},
		{"b.jsonl", ""},
		{".jsonl", ""},
	}
	for _, tt := range tests {
		if got := domainHint(tt.name); got != tt.want {
			t.Errorf("domainHint(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b/waste.jsonl", "a/bills.jsonl", "notes.txt", ".hidden/x.jsonl", "expenses.ndjson"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %+v, want 3", files)
	}
	if filepath.Base(files[0].Path) != "bills.jsonl" || files[0].Domain != "bill" {
		t.Errorf("files[0] = %+v", files[0])
	}

	single, err := ScanPath(filepath.Join(dir, "notes.txt"))
	if err != nil || len(single) != 1 {
		t.Fatalf("single file scan = %v, %v", single, err)
	}

	if _, err := ScanPath(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}
