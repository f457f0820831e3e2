package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

// LimitsKey is the collection key limits are persisted under.
const LimitsKey = "limits"

// LimitDraft is unvalidated input for a new limit.
type LimitDraft struct {
	Domain   model.Domain
	Category string
	Period   model.Period
	Amount   string
}

// LimitPatch is a partial limit update. Nil fields are left unchanged.
type LimitPatch struct {
	Amount   *string
	Category *string
	Period   *model.Period
}

// SeedBudget holds the amounts the default limits are seeded with.
type SeedBudget struct {
	ExpenseDaily   float64
	ExpenseMonthly float64
	BillMonthly    float64
	WasteWeeklyKg  float64
}

// DefaultSeedBudget returns the stock seed amounts.
func DefaultSeedBudget() SeedBudget {
	return SeedBudget{
		ExpenseDaily:   1000,
		ExpenseMonthly: 25000,
		BillMonthly:    8000,
		WasteWeeklyKg:  10,
	}
}

// SeedFromConfig returns the seed described by the [budget] config section.
func SeedFromConfig(cfg config.Config) SeedBudget {
	return SeedBudget{
		ExpenseDaily:   cfg.Budget.DailyINR,
		ExpenseMonthly: cfg.Budget.MonthlyINR,
		BillMonthly:    cfg.Budget.BillsMonthlyINR,
		WasteWeeklyKg:  cfg.Budget.WasteWeeklyKg,
	}
}

// Limits returns the seeded limits, amounts rounded to two decimal places like
// any parsed amount. Non-positive amounts are skipped.
func (s SeedBudget) Limits(now time.Time) []model.Limit {
	specs := []struct {
		domain model.Domain
		period model.Period
		amount float64
	}{
		{model.DomainExpense, model.PeriodDaily, s.ExpenseDaily},
		{model.DomainExpense, model.PeriodMonthly, s.ExpenseMonthly},
		{model.DomainBill, model.PeriodMonthly, s.BillMonthly},
		{model.DomainWaste, model.PeriodWeekly, s.WasteWeeklyKg},
	}

	var limits []model.Limit
	for _, sp := range specs {
		if sp.amount <= 0 {
			continue
		}
		limits = append(limits, model.Limit{
			ID:        uuid.NewString(),
			Domain:    sp.domain,
			Period:    sp.period,
			Amount:    decimal.NewFromFloat(sp.amount).Round(2).InexactFloat64(),
			Active:    true,
			CreatedAt: now,
		})
	}
	return limits
}

// Rules is the CRUD surface of the limit collection.
type Rules struct {
	items *store.Collection[model.Limit]
	now   func() time.Time
}

// NewRules returns the limit collection stored in kv, seeded from seed on first load.
func NewRules(kv store.KV, seed SeedBudget, now func() time.Time) *Rules {
	if now == nil {
		now = time.Now
	}
	return &Rules{
		items: store.NewCollection[model.Limit](kv, LimitsKey, func() []model.Limit {
			return seed.Limits(now())
		}),
		now: now,
	}
}

// Add validates d and prepends a new active limit.
func (r *Rules) Add(d LimitDraft) (model.Limit, error) {
	if d.Domain == "" {
		return model.Limit{}, model.Missing("domain")
	}
	if d.Period == "" {
		return model.Limit{}, model.Missing("period")
	}
	if _, ok := model.ParsePeriod(string(d.Period)); !ok {
		return model.Limit{}, model.Invalid("period", "must be daily, weekly or monthly")
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return model.Limit{}, err
	}

	l := model.Limit{
		ID:        uuid.NewString(),
		Domain:    d.Domain,
		Category:  strings.TrimSpace(d.Category),
		Period:    d.Period,
		Amount:    amount,
		Active:    true,
		CreatedAt: r.now(),
	}
	err = r.items.Mutate(func(items []model.Limit) ([]model.Limit, error) {
		return append([]model.Limit{l}, items...), nil
	})
	if err != nil {
		return model.Limit{}, fmt.Errorf("saving limits: %w", err)
	}
	return l, nil
}

// Update applies p to the limit with id.
func (r *Rules) Update(id string, p LimitPatch) (model.Limit, error) {
	var updated model.Limit
	err := r.items.Mutate(func(items []model.Limit) ([]model.Limit, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("limit %s: %w", id, model.ErrNotFound)
		}

		l := items[i]
		if p.Amount != nil {
			amount, err := ParseAmount(*p.Amount)
			if err != nil {
				return nil, err
			}
			l.Amount = amount
		}
		if p.Category != nil {
			l.Category = strings.TrimSpace(*p.Category)
		}
		if p.Period != nil {
			if _, ok := model.ParsePeriod(string(*p.Period)); !ok {
				return nil, model.Invalid("period", "must be daily, weekly or monthly")
			}
			l.Period = *p.Period
		}

		items[i] = l
		updated = l
		return items, nil
	})
	if err != nil {
		return model.Limit{}, err
	}
	return updated, nil
}

// Remove deletes the limit with id. Unknown ids are ignored.
func (r *Rules) Remove(id string) error {
	return r.items.Mutate(func(items []model.Limit) ([]model.Limit, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, store.ErrNoChange
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// ToggleActive flips whether the limit with id is evaluated.
func (r *Rules) ToggleActive(id string) (model.Limit, error) {
	var toggled model.Limit
	err := r.items.Mutate(func(items []model.Limit) ([]model.Limit, error) {
		i := store.IndexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("limit %s: %w", id, model.ErrNotFound)
		}
		items[i].Active = !items[i].Active
		toggled = items[i]
		return items, nil
	})
	if err != nil {
		return model.Limit{}, err
	}
	return toggled, nil
}

// List returns every limit, newest first.
func (r *Rules) List() ([]model.Limit, error) {
	return r.items.Load()
}

// Get returns the limit with id.
func (r *Rules) Get(id string) (model.Limit, error) {
	items, err := r.items.Load()
	if err != nil {
		return model.Limit{}, err
	}
	i := store.IndexOf(items, id)
	if i < 0 {
		return model.Limit{}, fmt.Errorf("limit %s: %w", id, model.ErrNotFound)
	}
	return items[i], nil
}

// Resolve expands a short id prefix to the full id.
func (r *Rules) Resolve(prefix string) (string, error) {
	items, err := r.items.Load()
	if err != nil {
		return "", err
	}
	return store.ResolvePrefix(items, prefix)
}

// Reset restores the seeded limits.
func (r *Rules) Reset() error {
	_, err := r.items.Reset()
	return err
}
