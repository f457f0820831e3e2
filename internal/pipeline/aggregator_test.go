package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/rupee/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func expense(amount float64, category string, date time.Time) model.Entry {
	return model.Entry{
		ID:       category + date.Format("0102"),
		Domain:   model.DomainExpense,
		Kind:     model.KindExpense,
		Amount:   amount,
		Category: category,
		Date:     date,
	}
}

func TestAggregateBalance(t *testing.T) {
	day := mustDate(t, "2026-10-17")
	entries := []model.Entry{
		{Domain: model.DomainExpense, Kind: model.KindIncome, Amount: 5000, Category: "Salary", Date: day},
		expense(2000, "Rent", day),
	}

	s := Aggregate(entries)
	if s.TotalIncome != 5000 {
		t.Fatalf("TotalIncome = %.2f, want 5000", s.TotalIncome)
	}
	if s.TotalExpense != 2000 {
		t.Fatalf("TotalExpense = %.2f, want 2000", s.TotalExpense)
	}
	if s.Balance != 3000 {
		t.Fatalf("Balance = %.2f, want 3000", s.Balance)
	}
	if s.Balance != s.TotalIncome-s.TotalExpense {
		t.Fatal("Balance != TotalIncome - TotalExpense")
	}
}

func TestAggregateNoFloatDrift(t *testing.T) {
	day := mustDate(t, "2026-10-17")
	var entries []model.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, expense(0.1, "Tea", day))
	}

	s := Aggregate(entries)
	if s.TotalExpense != 1.0 {
		t.Fatalf("TotalExpense = %v, want exactly 1", s.TotalExpense)
	}
}

func TestAggregateBalanceIsDecimal(t *testing.T) {
	day := mustDate(t, "2026-10-17")
	entries := []model.Entry{
		{Domain: model.DomainExpense, Kind: model.KindIncome, Amount: 0.3, Category: "Refund", Date: day},
		expense(0.1, "Tea", day),
	}

	if got := Aggregate(entries).Balance; got != 0.2 {
		t.Fatalf("Balance = %v, want exactly 0.2", got)
	}
}

func TestAggregateCategories(t *testing.T) {
	day := mustDate(t, "2026-10-17")
	entries := []model.Entry{
		expense(300, "Food", day),
		expense(100, "Travel", day),
		expense(600, "Food", day),
	}

	s := Aggregate(entries)
	if len(s.ByCategory) != 2 {
		t.Fatalf("categories = %d, want 2", len(s.ByCategory))
	}
	food := s.ByCategory[0]
	if food.Category != "Food" || food.Total != 900 || food.Count != 2 {
		t.Fatalf("first category = %+v, want Food 900 x2", food)
	}
	if math.Abs(food.SharePercent-90) > 1e-9 {
		t.Fatalf("Food share = %.2f, want 90", food.SharePercent)
	}
	if got := CategoryTotal(entries, "food"); got != 900 {
		t.Fatalf("CategoryTotal(food) = %.2f, want 900", got)
	}
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC) // Saturday

	daily := WindowFor(model.PeriodDaily, now)
	if !daily.Start.Equal(mustDate(t, "2026-10-17")) || !daily.End.Equal(mustDate(t, "2026-10-18")) {
		t.Fatalf("daily = %v..%v", daily.Start, daily.End)
	}

	weekly := WindowFor(model.PeriodWeekly, now)
	if !weekly.Start.Equal(mustDate(t, "2026-10-12")) || !weekly.End.Equal(mustDate(t, "2026-10-19")) {
		t.Fatalf("weekly = %v..%v, want Mon 12 .. Mon 19", weekly.Start, weekly.End)
	}

	monthly := WindowFor(model.PeriodMonthly, now)
	if !monthly.Start.Equal(mustDate(t, "2026-10-01")) || !monthly.End.Equal(mustDate(t, "2026-11-01")) {
		t.Fatalf("monthly = %v..%v", monthly.Start, monthly.End)
	}

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	if w := WindowFor(model.PeriodWeekly, sunday); !w.Start.Equal(mustDate(t, "2026-10-12")) {
		t.Fatalf("Sunday week start = %v, want 2026-10-12", w.Start)
	}
}

func TestPeriodKey(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	cases := map[model.Period]string{
		model.PeriodDaily:   "2026-10-17",
		model.PeriodWeekly:  "2026-W42",
		model.PeriodMonthly: "2026-10",
	}
	for p, want := range cases {
		if got := PeriodKey(p, now); got != want {
			t.Errorf("PeriodKey(%s) = %q, want %q", p, got, want)
		}
	}
}

func TestStatusOverLimit(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	limit := model.Limit{Domain: model.DomainExpense, Period: model.PeriodDaily, Amount: 1000, Active: true}

	over := Status([]model.Entry{expense(1250, "Food", mustDate(t, "2026-10-17"))}, limit, now)
	if !over.Exceeded {
		t.Fatal("1250 against 1000 not reported as exceeded")
	}
	if over.Overage != 250 {
		t.Fatalf("Overage = %.2f, want 250", over.Overage)
	}
	if over.PercentUsed != 100 || over.RawPercentUsed != 125 {
		t.Fatalf("percent = %.1f / %.1f, want 100 / 125", over.PercentUsed, over.RawPercentUsed)
	}

	under := Status([]model.Entry{expense(800, "Food", mustDate(t, "2026-10-17"))}, limit, now)
	if under.Exceeded {
		t.Fatal("800 against 1000 reported as exceeded")
	}
	if under.Remaining != 200 {
		t.Fatalf("Remaining = %.2f, want 200", under.Remaining)
	}
}

func TestSpentRespectsWindowKindAndCategory(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	entries := []model.Entry{
		expense(400, "Food", mustDate(t, "2026-10-17")),
		expense(900, "Food", mustDate(t, "2026-10-16")), // yesterday
		expense(150, "Travel", mustDate(t, "2026-10-17")),
		{Domain: model.DomainExpense, Kind: model.KindIncome, Amount: 5000, Category: "Food", Date: mustDate(t, "2026-10-17")},
		{Domain: model.DomainBill, Kind: model.KindExpense, Amount: 700, Category: "Food", Date: mustDate(t, "2026-10-17")},
	}

	all := model.Limit{Domain: model.DomainExpense, Period: model.PeriodDaily, Amount: 1000}
	if got := Spent(entries, all, now); got != 550 {
		t.Fatalf("Spent(all daily) = %.2f, want 550", got)
	}

	food := model.Limit{Domain: model.DomainExpense, Category: "food", Period: model.PeriodMonthly, Amount: 1000}
	if got := Spent(entries, food, now); got != 1300 {
		t.Fatalf("Spent(food monthly) = %.2f, want 1300", got)
	}
}

func TestPercentUsedZeroLimit(t *testing.T) {
	d, r := PercentUsed(500, 0)
	if d != 0 || r != 0 {
		t.Fatalf("PercentUsed(500, 0) = %v, %v; want 0, 0", d, r)
	}
}

func TestAggregateDaysFillsGaps(t *testing.T) {
	since := mustDate(t, "2026-10-15")
	until := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)
	entries := []model.Entry{
		expense(100, "Food", mustDate(t, "2026-10-15")),
		expense(50, "Food", mustDate(t, "2026-10-17")),
		{Domain: model.DomainExpense, Kind: model.KindIncome, Amount: 10, Date: mustDate(t, "2026-10-17")},
	}

	days := AggregateDays(entries, since, until)
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	if days[0].Date.Format("2006-01-02") != "2026-10-17" {
		t.Fatalf("first day = %s, want most recent", days[0].Date.Format("2006-01-02"))
	}
	if days[0].Expense != 50 || days[0].Income != 10 || days[0].Entries != 2 {
		t.Fatalf("2026-10-17 = %+v", days[0])
	}
	if days[1].Entries != 0 {
		t.Fatalf("gap day has %d entries, want 0", days[1].Entries)
	}
}

func TestBills(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	bill := func(id string, amount float64, due string, paid bool) model.Entry {
		return model.Entry{ID: id, Domain: model.DomainBill, Kind: model.KindExpense, Amount: amount, Date: mustDate(t, due), Flag: paid}
	}
	entries := []model.Entry{
		bill("a", 1200, "2026-10-10", false), // overdue
		bill("b", 800, "2026-10-19", false),  // due soon
		bill("c", 500, "2026-11-30", false),  // later
		bill("d", 300, "2026-10-01", true),   // paid
	}

	s := Bills(entries, now, 3*24*time.Hour)
	if s.Due != 2500 || s.Paid != 300 {
		t.Fatalf("Due/Paid = %.0f/%.0f, want 2500/300", s.Due, s.Paid)
	}
	if s.Overdue != 1 || s.DueSoon != 1 || s.Unpaid != 3 {
		t.Fatalf("Overdue/DueSoon/Unpaid = %d/%d/%d, want 1/1/3", s.Overdue, s.DueSoon, s.Unpaid)
	}

	soon := BillsDueSoon(entries, now, 3*24*time.Hour)
	if len(soon) != 1 || soon[0].ID != "b" {
		t.Fatalf("BillsDueSoon = %+v, want [b]", soon)
	}
}

func TestWasteRecyclingRate(t *testing.T) {
	w := func(kg float64, stream string, disposed bool) model.Entry {
		return model.Entry{Domain: model.DomainWaste, Kind: model.KindExpense, Amount: kg, Category: stream, Flag: disposed}
	}
	s := Waste([]model.Entry{
		w(3, model.WasteRecyclable, true),
		w(1, model.WasteOrganic, false),
	})
	if s.TotalKg != 4 || s.RecyclableKg != 3 || s.DisposedKg != 3 {
		t.Fatalf("waste = %+v", s)
	}
	if s.RecyclingRate != 75 {
		t.Fatalf("RecyclingRate = %.1f, want 75", s.RecyclingRate)
	}
	if empty := Waste(nil); empty.RecyclingRate != 0 {
		t.Fatalf("empty RecyclingRate = %.1f, want 0", empty.RecyclingRate)
	}
}

func TestFilters(t *testing.T) {
	d := mustDate(t, "2026-10-17")
	lunch := expense(250, "Food", d)
	lunch.Description = "Lunch with team"
	salary := expense(50000, "Salary", d)
	salary.Kind = model.KindIncome
	power := model.Entry{ID: "b1", Domain: model.DomainBill, Category: "Electricity", Amount: 1500, Date: d,
		Bill: &model.BillDetails{Provider: "BESCOM"}}
	all := []model.Entry{lunch, salary, power}

	if got := FilterByText(all, "team"); len(got) != 1 || got[0].Category != "Food" {
		t.Fatalf("FilterByText(team) = %v", got)
	}
	if got := FilterByText(all, "bescom"); len(got) != 1 || got[0].ID != "b1" {
		t.Fatalf("FilterByText(bescom) = %v", got)
	}
	if got := FilterByKind(all, model.KindIncome); len(got) != 1 || got[0].Category != "Salary" {
		t.Fatalf("FilterByKind(income) = %v", got)
	}
	if got := FilterByCategory(all, "food"); len(got) != 1 {
		t.Fatalf("FilterByCategory(food) = %v", got)
	}
}
