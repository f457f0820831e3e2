package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadKeepsFileAndLineOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a-bills.jsonl"),
		`{"domain":"bill","amount":800,"category":"Water","date":"2026-10-25"}`+"\n")
	writeFile(t, filepath.Join(dir, "expenses.jsonl"),
		`{"type":"expense","amount":120,"category":"Tea"}`+"\n"+
			`oops`+"\n"+
			`{"type":"income","amount":50000,"category":"Salary"}`+"\n")
	writeFile(t, filepath.Join(dir, "waste.jsonl"),
		`{"amount":1.5,"category":"organic"}`+"\n")

	var calls atomic.Int64
	res, err := Load(dir, func(current, total int) {
		calls.Add(1)
		if total != 3 || current < 1 || current > total {
			t.Errorf("progress(%d, %d)", current, total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if res.TotalFiles != 3 || res.ParsedFiles != 3 || res.FileErrors != 0 {
		t.Fatalf("result = %+v", res)
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}

	want := []struct {
		domain string
		line   int
	}{{"bill", 1}, {"expense", 1}, {"expense", 3}, {"waste", 1}}
	if len(res.Records) != len(want) {
		t.Fatalf("records = %d, want %d", len(res.Records), len(want))
	}
	for i, w := range want {
		r := res.Records[i]
		if r.Entry.Domain != w.domain || r.Line != w.line {
			t.Errorf("record %d = %s line %d, want %s line %d", i, r.Entry.Domain, r.Line, w.domain, w.line)
		}
	}
}

func TestLoadEmptyDir(t *testing.T) {
	res, err := Load(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.TotalFiles != 0 || len(res.Records) != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error")
	}
}
