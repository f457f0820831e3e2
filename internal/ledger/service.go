package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/rupee/internal/alert"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/notify"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/store"
)

// ErrUnknownKey is returned by Reset for a key that is not a rupee collection.
var ErrUnknownKey = errors.New("unknown collection key")

// Observer receives counts of mutations and emitted alerts.
type Observer interface {
	Mutation(domain, op string)
	Alert(kind model.NotificationKind)
}

type nopObserver struct{}

func (nopObserver) Mutation(string, string)     {}
func (nopObserver) Alert(model.NotificationKind) {}

// DomainStatus is the derived view of one domain at a point in time.
type DomainStatus struct {
	Domain model.Domain
	Now    time.Time
	// Summary covers every entry of the domain. Today and Month cover the
	// current day and calendar month.
	Summary model.Summary
	Today   model.Summary
	Month   model.Summary
	Limits  []model.BudgetStatus
	Bills   *model.BillSummary
	Waste   *model.WasteSummary
}

// OverBudget reports whether any active limit of the domain is exceeded.
func (s DomainStatus) OverBudget() bool {
	for _, ls := range s.Limits {
		if ls.Limit.Active && ls.Exceeded {
			return true
		}
	}
	return false
}

// Service serializes every mutation and runs the threshold evaluation that follows it.
type Service struct {
	mu sync.Mutex

	books  map[model.Domain]*Book
	rules  *Rules
	eval   *alert.Evaluator
	notes  *notify.Log
	logger *zap.Logger
	obs    Observer
	now    func() time.Time

	keep       int
	remindDays int
	seed       SeedBudget
	repeat     bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.obs = o }
}

// WithRepeat alerts on every over-limit evaluation instead of the first crossing.
func WithRepeat(repeat bool) Option {
	return func(s *Service) { s.repeat = repeat }
}

// WithKeep caps the notification log after each evaluation. 0 keeps everything.
func WithKeep(keep int) Option {
	return func(s *Service) { s.keep = keep }
}

// WithSeed sets the amounts limits are seeded with on first load.
func WithSeed(seed SeedBudget) Option {
	return func(s *Service) { s.seed = seed }
}

// WithRemindDays sets the bill reminder horizon used by Evaluate.
func WithRemindDays(days int) Option {
	return func(s *Service) { s.remindDays = days }
}

// NewService wires the collections stored in kv.
func NewService(kv store.KV, opts ...Option) *Service {
	s := &Service{
		logger:     zap.NewNop(),
		obs:        nopObserver{},
		now:        time.Now,
		seed:       DefaultSeedBudget(),
		remindDays: 3,
	}
	for _, opt := range opts {
		opt(s)
	}

	clock := func() time.Time { return s.now() }
	s.books = make(map[model.Domain]*Book, len(model.Domains))
	for _, d := range model.Domains {
		s.books[d] = NewBook(kv, d, clock)
	}
	s.rules = NewRules(kv, s.seed, clock)
	s.eval = alert.New(kv, alert.WithRepeat(s.repeat), alert.WithClock(clock))
	s.notes = notify.New(kv, clock)
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// RemindWithin is the configured bill reminder horizon.
func (s *Service) RemindWithin() time.Duration {
	return time.Duration(s.remindDays) * 24 * time.Hour
}

func (s *Service) book(d model.Domain) (*Book, error) {
	b, ok := s.books[d]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", d)
	}
	return b, nil
}

// Add records a new entry and evaluates the domain's limits.
func (s *Service) Add(d Draft) (model.Entry, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(d.Domain)
	if err != nil {
		return model.Entry{}, nil, err
	}
	e, err := b.Add(d)
	if err != nil {
		return model.Entry{}, nil, err
	}
	s.mutated(d.Domain, "add", e.ID)

	alerts, err := s.evaluate(d.Domain)
	return e, alerts, err
}

// Update patches an entry and evaluates the domain's limits.
func (s *Service) Update(domain model.Domain, id string, p Patch) (model.Entry, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(domain)
	if err != nil {
		return model.Entry{}, nil, err
	}
	e, err := b.Update(id, p)
	if err != nil {
		return model.Entry{}, nil, err
	}
	s.mutated(domain, "update", id)

	alerts, err := s.evaluate(domain)
	return e, alerts, err
}

// Remove deletes an entry. Unknown ids are a no-op.
func (s *Service) Remove(domain model.Domain, id string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(domain)
	if err != nil {
		return nil, err
	}
	if err := b.Remove(id); err != nil {
		return nil, err
	}
	s.mutated(domain, "remove", id)
	if domain == model.DomainBill {
		if err := s.eval.Forget(alert.ReminderKey(id)); err != nil {
			return nil, err
		}
	}
	return s.evaluate(domain)
}

// ToggleFlag flips an entry's flag and evaluates the domain's limits.
func (s *Service) ToggleFlag(domain model.Domain, id string) (model.Entry, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(domain)
	if err != nil {
		return model.Entry{}, nil, err
	}
	e, err := b.ToggleFlag(id)
	if err != nil {
		return model.Entry{}, nil, err
	}
	s.mutated(domain, "toggle", id)

	alerts, err := s.evaluate(domain)
	return e, alerts, err
}

// Entries returns the domain's entries, newest first.
func (s *Service) Entries(domain model.Domain) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(domain)
	if err != nil {
		return nil, err
	}
	return b.List()
}

// ResolveEntry expands a short entry id.
func (s *Service) ResolveEntry(domain model.Domain, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.book(domain)
	if err != nil {
		return "", err
	}
	return b.Resolve(prefix)
}

// Limits returns every limit, newest first.
func (s *Service) Limits() ([]model.Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.List()
}

// ResolveLimit expands a short limit id.
func (s *Service) ResolveLimit(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Resolve(prefix)
}

// AddLimit creates a limit and evaluates its domain.
func (s *Service) AddLimit(d LimitDraft) (model.Limit, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book(d.Domain); err != nil {
		return model.Limit{}, nil, model.Invalid("domain", err.Error())
	}
	l, err := s.rules.Add(d)
	if err != nil {
		return model.Limit{}, nil, err
	}
	s.mutated("limits", "add", l.ID)

	alerts, err := s.evaluate(l.Domain)
	return l, alerts, err
}

// UpdateLimit patches a limit and re-evaluates it from Normal.
func (s *Service) UpdateLimit(id string, p LimitPatch) (model.Limit, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.rules.Update(id, p)
	if err != nil {
		return model.Limit{}, nil, err
	}
	s.mutated("limits", "update", id)
	if err := s.eval.Forget(alert.LimitKey(l)); err != nil {
		return l, nil, err
	}

	alerts, err := s.evaluate(l.Domain)
	return l, alerts, err
}

// RemoveLimit deletes a limit and its alert state. Unknown ids are a no-op.
func (s *Service) RemoveLimit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.rules.Get(id)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.rules.Remove(id); err != nil {
		return err
	}
	s.mutated("limits", "remove", id)
	return s.eval.Forget(alert.LimitKey(l))
}

// ToggleLimit activates or deactivates a limit. Deactivating forgets its state so
// that reactivating it alerts on the next crossing.
func (s *Service) ToggleLimit(id string) (model.Limit, []model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.rules.ToggleActive(id)
	if err != nil {
		return model.Limit{}, nil, err
	}
	s.mutated("limits", "toggle", id)
	if !l.Active {
		return l, nil, s.eval.Forget(alert.LimitKey(l))
	}

	alerts, err := s.evaluate(l.Domain)
	return l, alerts, err
}

// ApplySeed sets the amount of each default limit (uncategorized, matching a
// seeded domain and period) to the seed's value. Limits the user added are left
// alone, and missing defaults are not recreated.
func (s *Service) ApplySeed(seed SeedBudget) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]float64)
	for _, l := range seed.Limits(s.now()) {
		want[string(l.Domain)+"/"+string(l.Period)] = l.Amount
	}

	limits, err := s.rules.List()
	if err != nil {
		return nil, err
	}

	var alerts []model.Notification
	for _, l := range limits {
		amount, ok := want[string(l.Domain)+"/"+string(l.Period)]
		if !ok || l.Category != "" || l.Amount == amount {
			continue
		}
		text := strconv.FormatFloat(amount, 'f', 2, 64)
		updated, err := s.rules.Update(l.ID, LimitPatch{Amount: &text})
		if err != nil {
			return alerts, err
		}
		s.mutated("limits", "update", l.ID)
		if err := s.eval.Forget(alert.LimitKey(updated)); err != nil {
			return alerts, err
		}
		emitted, err := s.evaluate(updated.Domain)
		alerts = append(alerts, emitted...)
		if err != nil {
			return alerts, err
		}
	}
	return alerts, nil
}

// Evaluate recomputes the domain's aggregates and runs the evaluator for each
// active limit, appending a notification for every new crossing.
func (s *Service) Evaluate(domain model.Domain) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluate(domain)
}

// EvaluateAll evaluates every domain and sends bill reminders.
func (s *Service) EvaluateAll() ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []model.Notification
	for _, d := range model.Domains {
		alerts, err := s.evaluate(d)
		if err != nil {
			return all, err
		}
		all = append(all, alerts...)
	}
	reminders, err := s.billReminders(s.RemindWithin())
	if err != nil {
		return all, err
	}
	return append(all, reminders...), nil
}

func (s *Service) evaluate(domain model.Domain) ([]model.Notification, error) {
	b, err := s.book(domain)
	if err != nil {
		return nil, err
	}
	entries, err := b.List()
	if err != nil {
		return nil, err
	}
	limits, err := s.rules.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	var emitted []model.Notification
	for _, l := range limits {
		if l.Domain != domain || !l.Active {
			continue
		}
		st := pipeline.Status(entries, l, now)
		res, fire, err := s.eval.Observe(alert.LimitKey(l), st.PeriodKey, st.Spent, l.Amount)
		if err != nil {
			return emitted, fmt.Errorf("evaluating %s: %w", l.Label(), err)
		}
		if res.RolledOver {
			s.logger.Debug("period rolled over", zap.String("limit", l.Label()), zap.String("period", st.PeriodKey))
		}
		if !fire {
			continue
		}

		n, err := s.notes.Append(alert.OverLimit(l, res))
		if err != nil {
			return emitted, err
		}
		s.obs.Alert(n.Kind)
		s.logger.Info("limit exceeded",
			zap.String("limit", l.Label()),
			zap.String("period", st.PeriodKey),
			zap.Float64("spent", st.Spent),
			zap.Float64("overage", res.Overage),
		)
		emitted = append(emitted, n)
	}

	if len(emitted) > 0 && s.keep > 0 {
		if _, err := s.notes.Prune(s.keep); err != nil {
			return emitted, err
		}
	}
	return emitted, nil
}

// Status returns the derived view of a domain without touching alert state.
func (s *Service) Status(domain model.Domain) (DomainStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status(domain)
}

// Overview returns the status of every domain in display order.
func (s *Service) Overview() ([]DomainStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DomainStatus, 0, len(model.Domains))
	for _, d := range model.Domains {
		st, err := s.status(d)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) status(domain model.Domain) (DomainStatus, error) {
	b, err := s.book(domain)
	if err != nil {
		return DomainStatus{}, err
	}
	entries, err := b.List()
	if err != nil {
		return DomainStatus{}, err
	}
	limits, err := s.rules.List()
	if err != nil {
		return DomainStatus{}, err
	}

	now := s.now()
	st := DomainStatus{
		Domain:  domain,
		Now:     now,
		Summary: pipeline.Aggregate(entries),
		Today:   pipeline.Aggregate(pipeline.FilterByWindow(entries, pipeline.WindowFor(model.PeriodDaily, now))),
		Month:   pipeline.Aggregate(pipeline.FilterByWindow(entries, pipeline.WindowFor(model.PeriodMonthly, now))),
	}
	for _, l := range limits {
		if l.Domain == domain {
			st.Limits = append(st.Limits, pipeline.Status(entries, l, now))
		}
	}
	sort.SliceStable(st.Limits, func(i, j int) bool {
		return periodRank(st.Limits[i].Limit.Period) < periodRank(st.Limits[j].Limit.Period)
	})

	switch domain {
	case model.DomainBill:
		bs := pipeline.Bills(entries, now, s.RemindWithin())
		st.Bills = &bs
	case model.DomainWaste:
		ws := pipeline.Waste(entries)
		st.Waste = &ws
	}
	return st, nil
}

func periodRank(p model.Period) int {
	switch p {
	case model.PeriodDaily:
		return 0
	case model.PeriodWeekly:
		return 1
	default:
		return 2
	}
}

// BillReminders appends one info notification per unpaid bill due within the
// horizon. Each bill is reminded once per due date.
func (s *Service) BillReminders(within time.Duration) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.billReminders(within)
}

func (s *Service) billReminders(within time.Duration) ([]model.Notification, error) {
	bills, err := s.books[model.DomainBill].List()
	if err != nil {
		return nil, err
	}

	var emitted []model.Notification
	for _, bill := range pipeline.BillsDueSoon(bills, s.now(), within) {
		first, err := s.eval.Once(alert.ReminderKey(bill.ID), bill.Date.Format("2006-01-02"))
		if err != nil {
			return emitted, err
		}
		if !first {
			continue
		}
		n, err := s.notes.Append(alert.BillDue(bill))
		if err != nil {
			return emitted, err
		}
		s.obs.Alert(n.Kind)
		emitted = append(emitted, n)
	}
	return emitted, nil
}

// Notifications returns the alert log, newest first.
func (s *Service) Notifications() ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.List()
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.UnreadCount()
}

// ResolveNotification expands a short notification id.
func (s *Service) ResolveNotification(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Resolve(prefix)
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.notes.MarkRead(id); err != nil {
		return err
	}
	s.mutated("notifications", "read", id)
	return nil
}

// MarkAllRead marks every notification read.
func (s *Service) MarkAllRead() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.notes.MarkAllRead()
	if err != nil {
		return 0, err
	}
	s.mutated("notifications", "read_all", "")
	return n, nil
}

// RemoveNotification deletes one notification. Unknown ids are a no-op.
func (s *Service) RemoveNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.notes.Remove(id); err != nil {
		return err
	}
	s.mutated("notifications", "remove", id)
	return nil
}

// Prune drops the oldest read notifications beyond keep.
func (s *Service) Prune(keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Prune(keep)
}

// AlertStates returns the evaluator's stored states.
func (s *Service) AlertStates() ([]alert.StateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval.States()
}

// ResetKeys lists the keys Reset accepts.
func ResetKeys() []string {
	keys := make([]string, 0, len(model.Domains)+3)
	for _, d := range model.Domains {
		keys = append(keys, d.StorageKey())
	}
	return append(keys, LimitsKey, notify.StorageKey, alert.StorageKey)
}

// Reset overwrites one collection with its seed. It is the recovery path for a
// collection that fails to load with store.ErrCorrupt.
func (s *Service) Reset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch key {
	case LimitsKey:
		err = s.rules.Reset()
	case notify.StorageKey:
		err = s.notes.Clear()
	case alert.StorageKey:
		err = s.eval.Reset()
	default:
		found := false
		for _, b := range s.books {
			if b.Domain().StorageKey() == key {
				err, found = b.Reset(), true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	if err != nil {
		return fmt.Errorf("resetting %s: %w", key, err)
	}
	s.logger.Info("collection reset", zap.String("key", key))
	return nil
}

func (s *Service) mutated(domain model.Domain, op, id string) {
	s.obs.Mutation(string(domain), op)
	s.logger.Debug("mutation", zap.String("domain", string(domain)), zap.String("op", op), zap.String("id", id))
}
