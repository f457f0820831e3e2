// Package alert tracks threshold crossings. It remembers the last state per key and
// period so a limit alerts once when it is crossed, not on every evaluation.
package alert

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/store"
)

// StorageKey is the collection key evaluator state is persisted under.
const StorageKey = "alert_state"

// State is the threshold state of one key within one period.
type State string

const (
	Normal   State = "normal"
	Exceeded State = "exceeded"
)

// StateRecord is the last observed state of one key.
type StateRecord struct {
	Key       string    `json:"key"`
	PeriodKey string    `json:"periodKey"`
	State     State     `json:"state"`
	Spent     float64   `json:"spent"`
	Limit     float64   `json:"limit"`
	ChangedAt time.Time `json:"changedAt"`
}

// RecordID implements store.Record.
func (r StateRecord) RecordID() string { return r.Key }

// Result is the outcome of comparing an aggregate to its limit.
type Result struct {
	Key        string
	PeriodKey  string
	Previous   State
	State      State
	Spent      float64
	Limit      float64
	Overage    float64
	RolledOver bool // the stored state belonged to an earlier period
}

// Crossed reports whether this evaluation moved Normal -> Exceeded.
func (r Result) Crossed() bool {
	return r.State == Exceeded && r.Previous != Exceeded
}

// Evaluator compares aggregates to limits and remembers the outcome.
type Evaluator struct {
	states *store.Collection[StateRecord]
	repeat bool
	now    func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRepeat makes Observe alert on every over-limit evaluation, not only the first.
func WithRepeat(repeat bool) Option {
	return func(e *Evaluator) { e.repeat = repeat }
}

// WithClock sets the time source used for ChangedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// New returns an evaluator persisting its state in kv.
func New(kv store.KV, opts ...Option) *Evaluator {
	e := &Evaluator{
		states: store.NewCollection[StateRecord](kv, StorageKey, nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check evaluates without recording anything.
func (e *Evaluator) Check(key, periodKey string, spent, limit float64) (Result, error) {
	recs, err := e.states.Load()
	if err != nil {
		return Result{}, err
	}
	return evaluate(recs, key, periodKey, spent, limit), nil
}

// Observe evaluates and records the new state. alert is true when the caller should
// emit a notification: on the Normal -> Exceeded transition, or on every over-limit
// evaluation when the evaluator repeats.
func (e *Evaluator) Observe(key, periodKey string, spent, limit float64) (res Result, alert bool, err error) {
	err = e.states.Mutate(func(recs []StateRecord) ([]StateRecord, error) {
		res = evaluate(recs, key, periodKey, spent, limit)

		rec := StateRecord{
			Key:       key,
			PeriodKey: periodKey,
			State:     res.State,
			Spent:     spent,
			Limit:     limit,
			ChangedAt: e.now(),
		}
		if i := store.IndexOf(recs, key); i >= 0 {
			if recs[i].PeriodKey == periodKey && recs[i].State == res.State {
				rec.ChangedAt = recs[i].ChangedAt
			}
			recs[i] = rec
			return recs, nil
		}
		return append(recs, rec), nil
	})
	if err != nil {
		return Result{}, false, err
	}
	alert = res.Crossed() || (e.repeat && res.State == Exceeded)
	return res, alert, nil
}

// Once reports true the first time it is called for key within periodKey.
func (e *Evaluator) Once(key, periodKey string) (bool, error) {
	res, alert, err := e.Observe(key, periodKey, 1, 0.5)
	if err != nil {
		return false, err
	}
	return alert && res.Crossed(), nil
}

// Forget drops the stored state for key. Unknown keys are ignored.
func (e *Evaluator) Forget(key string) error {
	return e.states.Mutate(func(recs []StateRecord) ([]StateRecord, error) {
		i := store.IndexOf(recs, key)
		if i < 0 {
			return nil, store.ErrNoChange
		}
		return append(recs[:i], recs[i+1:]...), nil
	})
}

// States returns every stored record.
func (e *Evaluator) States() ([]StateRecord, error) {
	return e.states.Load()
}

func evaluate(recs []StateRecord, key, periodKey string, spent, limit float64) Result {
	res := Result{
		Key:       key,
		PeriodKey: periodKey,
		Previous:  Normal,
		State:     Normal,
		Spent:     spent,
		Limit:     limit,
	}

	if i := store.IndexOf(recs, key); i >= 0 {
		if recs[i].PeriodKey == periodKey {
			res.Previous = recs[i].State
		} else {
			res.RolledOver = true
		}
	}

	diff := decimal.NewFromFloat(spent).Sub(decimal.NewFromFloat(limit))
	if limit > 0 && diff.IsPositive() {
		res.State = Exceeded
		res.Overage = diff.InexactFloat64()
	}
	return res
}

// Reset drops every stored state.
func (e *Evaluator) Reset() error {
	_, err := e.states.Reset()
	return err
}
