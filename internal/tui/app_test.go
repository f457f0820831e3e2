package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

func newTestApp(t *testing.T) (App, *ledger.Service) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := config.Save(config.DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "rupee.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)
	svc := ledger.NewService(db, ledger.WithClock(func() time.Time { return now }))
	a := NewApp(svc, config.DefaultConfig())
	a.width, a.height = 140, 40
	return a, svc
}

// run feeds msg through Update and keeps executing the returned command,
// feeding each result back in, until no command is left.
func run(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	for i := 0; msg != nil && i < 5; i++ {
		m, cmd := a.Update(msg)
		a = m.(App)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return a
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadPopulatesViews(t *testing.T) {
	a, svc := newTestApp(t)
	if _, _, err := svc.Add(ledger.Draft{Domain: model.DomainExpense, Kind: model.KindExpense, Amount: "1250", Category: "Food"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	a = run(t, a, loadData(svc))
	if !a.loaded || a.needSetup {
		t.Fatalf("loaded=%v needSetup=%v", a.loaded, a.needSetup)
	}
	if len(a.entries[model.DomainExpense]) != 1 || a.unread != 1 {
		t.Fatalf("entries=%d unread=%d", len(a.entries[model.DomainExpense]), a.unread)
	}

	view := a.View()
	for _, want := range []string{"Overview", "₹1,250.00", "Limits exceeded"} {
		if !strings.Contains(view, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestToggleAndDeleteFromEntriesTab(t *testing.T) {
	a, svc := newTestApp(t)
	_, _, _ = svc.Add(ledger.Draft{Domain: model.DomainBill, Amount: "1500", Category: "Electricity", Provider: "BESCOM", Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)})
	a = run(t, a, loadData(svc))

	a = run(t, a, key("3"))
	if a.activeTab != tabBills {
		t.Fatalf("activeTab = %d, want bills", a.activeTab)
	}
	if !strings.Contains(a.View(), "BESCOM") {
		t.Fatal("bills tab does not list the bill")
	}

	a = run(t, a, key("t"))
	if !strings.Contains(a.flash, "marked paid") {
		t.Fatalf("flash after toggle = %q", a.flash)
	}
	bills, _ := svc.Entries(model.DomainBill)
	if !bills[0].Flag {
		t.Fatal("bill not marked paid")
	}

	a = run(t, a, key("x"))
	bills, _ = svc.Entries(model.DomainBill)
	if len(bills) != 0 {
		t.Fatalf("bills after delete = %d", len(bills))
	}
}

func TestAlertsTabMarkRead(t *testing.T) {
	a, svc := newTestApp(t)
	_, _, _ = svc.Add(ledger.Draft{Domain: model.DomainExpense, Kind: model.KindExpense, Amount: "1250", Category: "Food"})
	_, _, _ = svc.Add(ledger.Draft{Domain: model.DomainWaste, Amount: "11", Category: "landfill"})
	a = run(t, a, loadData(svc))

	a = run(t, a, key("5"))
	a = run(t, a, key("r"))
	if n, _ := svc.UnreadCount(); n != 1 {
		t.Fatalf("unread after r = %d, want 1", n)
	}
	a = run(t, a, key("R"))
	if n, _ := svc.UnreadCount(); n != 0 {
		t.Fatalf("unread after R = %d, want 0", n)
	}
	if a.unread != 0 {
		t.Fatalf("app unread = %d after reload", a.unread)
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	a, svc := newTestApp(t)
	for _, amt := range []string{"10", "20"} {
		_, _, _ = svc.Add(ledger.Draft{Domain: model.DomainExpense, Kind: model.KindExpense, Amount: amt, Category: "Tea"})
	}
	a = run(t, a, loadData(svc))
	a = run(t, a, key("2"))

	for i := 0; i < 5; i++ {
		a = run(t, a, key("j"))
	}
	if a.lists[tabExpenses].cursor != 1 {
		t.Fatalf("cursor = %d, want 1", a.lists[tabExpenses].cursor)
	}
	a = run(t, a, key("g"))
	if a.lists[tabExpenses].cursor != 0 {
		t.Fatalf("cursor after g = %d", a.lists[tabExpenses].cursor)
	}
}

func TestScrollWindow(t *testing.T) {
	cases := []struct{ cursor, total, visible, start, end int }{
		{0, 3, 10, 0, 3},
		{9, 20, 5, 5, 10},
		{2, 20, 5, 0, 5},
		{0, 0, 5, 0, 0},
	}
	for _, c := range cases {
		s, e := scrollWindow(c.cursor, c.total, c.visible)
		if s != c.start || e != c.end {
			t.Errorf("scrollWindow(%d,%d,%d) = %d,%d want %d,%d", c.cursor, c.total, c.visible, s, e, c.start, c.end)
		}
	}
}

func TestChartDateLabels(t *testing.T) {
	var days []model.DailyStats
	for d := 3; d >= 0; d-- { // newest first: Oct 2 .. Sep 29
		days = append(days, model.DailyStats{Date: time.Date(2026, 9, 29+d, 0, 0, 0, 0, time.UTC)})
	}
	got := chartDateLabels(days)
	want := []string{"Sep", "30", "Oct", "2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}
}
