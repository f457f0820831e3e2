// Package pipeline derives aggregates from ledger entries. Every function is pure and
// recomputes from the entries it is given; nothing here caches a running total.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

// Aggregate computes totals over entries.
func Aggregate(entries []model.Entry) model.Summary {
	var income, expense, flagged, unflagged decimal.Decimal

	type catAcc struct {
		total decimal.Decimal
		count int
	}
	cats := make(map[string]*catAcc)

	for _, e := range entries {
		amt := decimal.NewFromFloat(e.Amount)
		if e.IsIncome() {
			income = income.Add(amt)
		} else {
			expense = expense.Add(amt)
			acc, ok := cats[e.Category]
			if !ok {
				acc = &catAcc{}
				cats[e.Category] = acc
			}
			acc.total = acc.total.Add(amt)
			acc.count++
		}
		if e.Flag {
			flagged = flagged.Add(amt)
		} else {
			unflagged = unflagged.Add(amt)
		}
	}

	s := model.Summary{
		Count:          len(entries),
		TotalIncome:    income.InexactFloat64(),
		TotalExpense:   expense.InexactFloat64(),
		FlaggedTotal:   flagged.InexactFloat64(),
		UnflaggedTotal: unflagged.InexactFloat64(),
		Balance:        income.Sub(expense).InexactFloat64(),
	}

	s.ByCategory = make([]model.CategoryTotal, 0, len(cats))
	for name, acc := range cats {
		ct := model.CategoryTotal{
			Category: name,
			Total:    acc.total.InexactFloat64(),
			Count:    acc.count,
		}
		if !expense.IsZero() {
			ct.SharePercent = acc.total.Div(expense).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		s.ByCategory = append(s.ByCategory, ct)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Total != s.ByCategory[j].Total {
			return s.ByCategory[i].Total > s.ByCategory[j].Total
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})

	return s
}

// CategoryTotal returns the expense total of one category (case-insensitive).
func CategoryTotal(entries []model.Entry, category string) float64 {
	return sumExpense(FilterByCategory(entries, category))
}

// Spent returns the expense-side amount that counts against l at now.
func Spent(entries []model.Entry, l model.Limit, now time.Time) float64 {
	w := WindowFor(l.Period, now)
	var total decimal.Decimal
	for _, e := range entries {
		if e.Domain != l.Domain || e.IsIncome() || !w.Contains(e.Date) {
			continue
		}
		if l.Category != "" && !strings.EqualFold(e.Category, l.Category) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total.InexactFloat64()
}

// PercentUsed returns spent/limit*100 clamped to [0,100] for display, and unclamped.
// A non-positive limit yields zero.
func PercentUsed(spent, limit float64) (display, raw float64) {
	if limit <= 0 {
		return 0, 0
	}
	raw = spent / limit * 100
	display = raw
	if display < 0 {
		display = 0
	}
	if display > 100 {
		display = 100
	}
	return display, raw
}

// Status evaluates l against entries at now.
func Status(entries []model.Entry, l model.Limit, now time.Time) model.BudgetStatus {
	spent := Spent(entries, l, now)
	display, raw := PercentUsed(spent, l.Amount)

	st := model.BudgetStatus{
		Limit:          l,
		PeriodKey:      PeriodKey(l.Period, now),
		Spent:          spent,
		PercentUsed:    display,
		RawPercentUsed: raw,
	}
	diff := decimal.NewFromFloat(spent).Sub(decimal.NewFromFloat(l.Amount))
	switch {
	case l.Amount > 0 && diff.IsPositive():
		st.Exceeded = true
		st.Overage = diff.InexactFloat64()
	case l.Amount > 0:
		st.Remaining = diff.Neg().InexactFloat64()
	}
	return st
}

// AggregateDays computes per-day totals, filling gaps in [since, until] with zeros.
// Result is most recent first.
func AggregateDays(entries []model.Entry, since, until time.Time) []model.DailyStats {
	loc := until.Location()
	dayMap := make(map[string]*model.DailyStats)

	type acc struct{ income, expense decimal.Decimal }
	sums := make(map[string]*acc)

	for _, e := range FilterByWindow(entries, Window{Start: startOfDay(since), End: startOfDay(until).AddDate(0, 0, 1)}) {
		dayKey := e.Date.In(loc).Format("2006-01-02")
		ds, ok := dayMap[dayKey]
		if !ok {
			t, _ := time.ParseInLocation("2006-01-02", dayKey, loc)
			ds = &model.DailyStats{Date: t}
			dayMap[dayKey] = ds
			sums[dayKey] = &acc{}
		}
		ds.Entries++
		amt := decimal.NewFromFloat(e.Amount)
		if e.IsIncome() {
			sums[dayKey].income = sums[dayKey].income.Add(amt)
		} else {
			sums[dayKey].expense = sums[dayKey].expense.Add(amt)
		}
	}
	for k, a := range sums {
		dayMap[k].Income = a.income.InexactFloat64()
		dayMap[k].Expense = a.expense.InexactFloat64()
	}

	// Fill in every day in the range so charts show gaps as zeros
	day := startOfDay(since.In(loc))
	end := startOfDay(until)
	for !day.After(end) {
		dayKey := day.Format("2006-01-02")
		if _, ok := dayMap[dayKey]; !ok {
			dayMap[dayKey] = &model.DailyStats{Date: day}
		}
		day = day.AddDate(0, 0, 1)
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// Bills summarizes bill entries at now. within is the reminder horizon.
func Bills(entries []model.Entry, now time.Time, within time.Duration) model.BillSummary {
	var due, paid decimal.Decimal
	var s model.BillSummary
	today := startOfDay(now)
	horizon := today.Add(within)

	for _, e := range entries {
		if e.Domain != model.DomainBill {
			continue
		}
		amt := decimal.NewFromFloat(e.Amount)
		if e.Flag {
			paid = paid.Add(amt)
			continue
		}
		due = due.Add(amt)
		s.Unpaid++
		switch {
		case e.Date.Before(today):
			s.Overdue++
		case e.Date.Before(horizon) || e.Date.Equal(horizon):
			s.DueSoon++
		}
	}
	s.Due = due.InexactFloat64()
	s.Paid = paid.InexactFloat64()
	return s
}

// BillsDueSoon returns unpaid bills due between today and today+within, soonest first.
func BillsDueSoon(entries []model.Entry, now time.Time, within time.Duration) []model.Entry {
	today := startOfDay(now)
	horizon := today.Add(within)

	var result []model.Entry
	for _, e := range entries {
		if e.Domain != model.DomainBill || e.Flag {
			continue
		}
		if e.Date.Before(today) || e.Date.After(horizon) {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// Waste summarizes waste entries.
func Waste(entries []model.Entry) model.WasteSummary {
	var total, recyclable, disposed decimal.Decimal
	for _, e := range entries {
		if e.Domain != model.DomainWaste {
			continue
		}
		amt := decimal.NewFromFloat(e.Amount)
		total = total.Add(amt)
		if strings.EqualFold(e.Category, model.WasteRecyclable) {
			recyclable = recyclable.Add(amt)
		}
		if e.Flag {
			disposed = disposed.Add(amt)
		}
	}

	s := model.WasteSummary{
		TotalKg:      total.InexactFloat64(),
		RecyclableKg: recyclable.InexactFloat64(),
		DisposedKg:   disposed.InexactFloat64(),
	}
	if !total.IsZero() {
		s.RecyclingRate = recyclable.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return s
}

// FilterByWindow returns entries whose date falls in w.
func FilterByWindow(entries []model.Entry, w Window) []model.Entry {
	var result []model.Entry
	for _, e := range entries {
		if w.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByCategory returns entries whose category equals category, ignoring case.
func FilterByCategory(entries []model.Entry, category string) []model.Entry {
	if category == "" {
		return entries
	}
	var result []model.Entry
	for _, e := range entries {
		if strings.EqualFold(e.Category, category) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByKind returns entries of kind k.
func FilterByKind(entries []model.Entry, k model.Kind) []model.Entry {
	var result []model.Entry
	for _, e := range entries {
		if e.Kind == k {
			result = append(result, e)
		}
	}
	return result
}

// FilterByText returns entries whose category, description or bill provider
// contains q, ignoring case.
func FilterByText(entries []model.Entry, q string) []model.Entry {
	if q == "" {
		return entries
	}
	var result []model.Entry
	for _, e := range entries {
		provider := ""
		if e.Bill != nil {
			provider = e.Bill.Provider
		}
		if containsIgnoreCase(e.Category, q) || containsIgnoreCase(e.Description, q) || containsIgnoreCase(provider, q) {
			result = append(result, e)
		}
	}
	return result
}

func sumExpense(entries []model.Entry) float64 {
	var total decimal.Decimal
	for _, e := range entries {
		if !e.IsIncome() {
			total = total.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return total.InexactFloat64()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
