package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

// Draft is unvalidated user input for a new entry. Amount is kept as text so that
// parse failures are reported instead of becoming zero.
type Draft struct {
	Domain      model.Domain
	Kind        model.Kind
	Amount      string
	Category    string
	Description string
	Date        time.Time // zero means today, except for bills where it is required

	Provider  string // bill
	Recurring bool   // bill
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Amount      *string
	Category    *string
	Description *string
	Date        *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// ParseAmount parses a positive amount, accepting a leading ₹ and grouping commas.
// The result is rounded to two decimal places.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, model.Missing("amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, model.Invalid("amount", "not a number: "+s)
	}
	if !d.IsPositive() {
		return 0, model.Invalid("amount", "must be greater than zero")
	}
	return d.Round(2).InexactFloat64(), nil
}

// dateLayouts are the accepted date inputs, tried in order.
var dateLayouts = []string{"2006-01-02", "02 Jan 2006", "2 Jan 2006", "02/01/2006"}

// ParseDate parses a calendar date in local time. Empty input yields the zero
// time so callers can fall back to their default.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.Invalid("date", "expected YYYY-MM-DD, got "+s)
}

// build validates d and returns the entry it describes, without ID or CreatedAt.
func (d Draft) build(domain model.Domain, now time.Time) (model.Entry, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return model.Entry{}, err
	}

	category, err := normalizeCategory(domain, d.Category)
	if err != nil {
		return model.Entry{}, err
	}

	e := model.Entry{
		Domain:      domain,
		Kind:        model.KindExpense,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(d.Description),
		Date:        d.Date,
	}

	switch domain {
	case model.DomainExpense:
		switch d.Kind {
		case "":
			return model.Entry{}, model.Missing("type")
		case model.KindIncome, model.KindExpense:
			e.Kind = d.Kind
		default:
			return model.Entry{}, model.Invalid("type", "must be income or expense")
		}
	case model.DomainBill:
		if d.Date.IsZero() {
			return model.Entry{}, model.Missing("date")
		}
		e.Bill = &model.BillDetails{
			Provider:  strings.TrimSpace(d.Provider),
			Recurring: d.Recurring,
		}
	case model.DomainWaste:
		e.Waste = &model.WasteDetails{Unit: "kg"}
	}

	if e.Date.IsZero() {
		e.Date = today(now)
	}
	return e, nil
}

// apply validates p and applies it to e.
func (p Patch) apply(e model.Entry) (model.Entry, error) {
	if p.Amount != nil {
		amount, err := ParseAmount(*p.Amount)
		if err != nil {
			return model.Entry{}, err
		}
		e.Amount = amount
	}
	if p.Category != nil {
		category, err := normalizeCategory(e.Domain, *p.Category)
		if err != nil {
			return model.Entry{}, err
		}
		e.Category = category
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return model.Entry{}, model.Missing("date")
		}
		e.Date = *p.Date
	}
	return e, nil
}

func normalizeCategory(domain model.Domain, raw string) (string, error) {
	category := strings.TrimSpace(raw)
	if category == "" {
		return "", model.Missing("category")
	}
	if domain == model.DomainWaste {
		category = strings.ToLower(category)
		if !slices.Contains(model.WasteStreams, category) {
			return "", model.Invalid("category", "must be one of "+strings.Join(model.WasteStreams, ", "))
		}
	}
	return category, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
