package model

import "time"

// Summary holds the aggregate of a set of entries.
type Summary struct {
	Count          int
	TotalIncome    float64
	TotalExpense   float64
	Balance        float64
	FlaggedTotal   float64
	UnflaggedTotal float64
	ByCategory     []CategoryTotal
}

// CategoryTotal is the expense-side total of one category.
type CategoryTotal struct {
	Category     string
	Total        float64
	Count        int
	SharePercent float64
}

// DailyStats holds totals for a single calendar day.
type DailyStats struct {
	Date    time.Time
	Entries int
	Income  float64
	Expense float64
}

// BillSummary holds the bill-domain view.
type BillSummary struct {
	Due     float64 // unpaid total
	Paid    float64
	Overdue int
	DueSoon int
	Unpaid  int
}

// WasteSummary holds the waste-domain view.
type WasteSummary struct {
	TotalKg       float64
	RecyclableKg  float64
	DisposedKg    float64
	RecyclingRate float64 // percent of total that is recyclable
}

// BudgetStatus is one limit evaluated against current spending.
type BudgetStatus struct {
	Limit          Limit
	PeriodKey      string
	Spent          float64
	Remaining      float64
	Overage        float64
	PercentUsed    float64 // clamped to [0,100] for display
	RawPercentUsed float64 // unclamped
	Exceeded       bool
}
