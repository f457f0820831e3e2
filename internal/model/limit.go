package model

import "time"

// Period is the time window a limit applies to.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod accepts a period name or its first letter.
func ParsePeriod(s string) (Period, bool) {
	switch s {
	case "daily", "day", "d":
		return PeriodDaily, true
	case "weekly", "week", "w":
		return PeriodWeekly, true
	case "monthly", "month", "m":
		return PeriodMonthly, true
	}
	return "", false
}

// Limit is a user-editable spending (or quantity) goal for one domain.
// An empty Category covers every category of the domain.
type Limit struct {
	ID        string    `json:"id"`
	Domain    Domain    `json:"domain"`
	Category  string    `json:"category,omitempty"`
	Period    Period    `json:"period"`
	Amount    float64   `json:"limit"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordID implements store.Record.
func (l Limit) RecordID() string { return l.ID }

// Label is a short human name such as "expense daily" or "expense/Food monthly".
func (l Limit) Label() string {
	name := string(l.Domain)
	if l.Category != "" {
		name += "/" + l.Category
	}
	return name + " " + string(l.Period)
}
