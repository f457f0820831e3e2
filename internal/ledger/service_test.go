package ledger

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/rupee/internal/alert"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

type countingObserver struct {
	mutations int
	alerts    map[model.NotificationKind]int
}

func (o *countingObserver) Mutation(string, string) { o.mutations++ }
func (o *countingObserver) Alert(k model.NotificationKind) {
	if o.alerts == nil {
		o.alerts = make(map[model.NotificationKind]int)
	}
	o.alerts[k]++
}

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "rupee.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestService(t *testing.T, opts ...Option) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return NewService(openTestDB(t), opts...), clock
}

func expenseDraft(amount, category string) Draft {
	return Draft{Domain: model.DomainExpense, Kind: model.KindExpense, Amount: amount, Category: category}
}

func TestOverDailyBudgetScenario(t *testing.T) {
	obs := &countingObserver{}
	svc, _ := newTestService(t, WithObserver(obs))

	_, alerts, err := svc.Add(expenseDraft("1250", "Food"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, "₹250.00") {
		t.Fatalf("alert message %q does not show the ₹250 overage", alerts[0].Message)
	}
	if obs.alerts[model.NotifyError] != 1 {
		t.Fatalf("observer alerts = %v", obs.alerts)
	}

	st, err := svc.Status(model.DomainExpense)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.OverBudget() {
		t.Fatal("OverBudget = false after spending 1250 against 1000")
	}
	daily := st.Limits[0]
	if daily.Limit.Period != model.PeriodDaily || daily.Overage != 250 || daily.PercentUsed != 100 {
		t.Fatalf("daily status = %+v", daily)
	}
}

func TestAlertOnlyOnFirstCrossing(t *testing.T) {
	svc, clock := newTestService(t)

	if _, a, _ := svc.Add(expenseDraft("1250", "Food")); len(a) != 1 {
		t.Fatalf("first crossing alerts = %d", len(a))
	}
	for i := 0; i < 3; i++ {
		if _, a, _ := svc.Add(expenseDraft("10", "Tea")); len(a) != 0 {
			t.Fatalf("add %d while over budget alerted %d times", i, len(a))
		}
	}
	if n, _ := svc.UnreadCount(); n != 1 {
		t.Fatalf("UnreadCount = %d, want 1", n)
	}

	// Next day: daily state resets, a new crossing alerts again.
	clock.t = clock.t.Add(24 * time.Hour)
	if _, a, _ := svc.Add(expenseDraft("1500", "Rent")); len(a) != 1 {
		t.Fatalf("crossing after rollover alerts = %d, want 1", len(a))
	}
}

func TestRepeatModeAlertsEveryMutation(t *testing.T) {
	svc, _ := newTestService(t, WithRepeat(true))
	_, _, _ = svc.Add(expenseDraft("1250", "Food"))
	if _, a, _ := svc.Add(expenseDraft("10", "Tea")); len(a) != 1 {
		t.Fatalf("repeat mode alerts = %d, want 1", len(a))
	}
}

func TestBalanceScenario(t *testing.T) {
	svc, _ := newTestService(t)
	if _, _, err := svc.Add(Draft{Domain: model.DomainExpense, Kind: model.KindIncome, Amount: "5000", Category: "Salary"}); err != nil {
		t.Fatalf("Add income: %v", err)
	}
	if _, _, err := svc.Add(expenseDraft("2000", "Groceries")); err != nil {
		t.Fatalf("Add expense: %v", err)
	}

	st, _ := svc.Status(model.DomainExpense)
	if st.Summary.Balance != 3000 {
		t.Fatalf("Balance = %.2f, want 3000", st.Summary.Balance)
	}
	if st.Summary.Balance != st.Summary.TotalIncome-st.Summary.TotalExpense {
		t.Fatal("balance != income - expense")
	}
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService(t)
	bad := []Draft{
		expenseDraft("", "Food"),
		expenseDraft("abc", "Food"),
		expenseDraft("-5", "Food"),
		expenseDraft("0", "Food"),
		expenseDraft("100", "  "),
		{Domain: model.DomainExpense, Amount: "100", Category: "Food"},
		{Domain: model.DomainBill, Amount: "100", Category: "Electricity"},
		{Domain: model.DomainWaste, Amount: "2", Category: "glitter"},
	}
	for _, d := range bad {
		_, _, err := svc.Add(d)
		if !errors.Is(err, model.ErrMissingRequiredField) {
			t.Errorf("Add(%+v) err = %v, want ErrMissingRequiredField", d, err)
		}
		var fe *model.FieldError
		if !errors.As(err, &fe) || fe.Field == "" {
			t.Errorf("Add(%+v) err is not a FieldError", d)
		}
	}

	entries, _ := svc.Entries(model.DomainExpense)
	if len(entries) != 0 {
		t.Fatalf("rejected adds mutated the collection: %d entries", len(entries))
	}
}

func TestAddAssignsUniqueIDsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	seen := map[string]bool{}
	valid := 0
	for i, amt := range []string{"10", "x", "20", "", "₹1,250.50"} {
		e, _, err := svc.Add(expenseDraft(amt, "Misc"))
		if err != nil {
			continue
		}
		valid++
		if seen[e.ID] {
			t.Fatalf("duplicate id at %d", i)
		}
		seen[e.ID] = true
	}

	entries, _ := svc.Entries(model.DomainExpense)
	if len(entries) != valid || valid != 3 {
		t.Fatalf("entries = %d, valid adds = %d, want 3", len(entries), valid)
	}
	if entries[0].Amount != 1250.5 {
		t.Fatalf("newest entry amount = %v, want 1250.5", entries[0].Amount)
	}
}

func TestRemoveUnknownIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, _ = svc.Add(expenseDraft("10", "Misc"))
	before, _ := svc.Entries(model.DomainExpense)

	if _, err := svc.Remove(model.DomainExpense, "does-not-exist"); err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}
	after, _ := svc.Entries(model.DomainExpense)
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatal("removing an unknown id changed the collection")
	}
}

func TestUpdateAndToggle(t *testing.T) {
	svc, _ := newTestService(t)
	e, _, _ := svc.Add(expenseDraft("100", "Food"))

	amt := "1200"
	updated, alerts, err := svc.Update(model.DomainExpense, e.ID, Patch{Amount: &amt})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Amount != 1200 || len(alerts) != 1 {
		t.Fatalf("Update amount=%v alerts=%d", updated.Amount, len(alerts))
	}
	if _, _, err := svc.Update(model.DomainExpense, "missing", Patch{Amount: &amt}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update missing err = %v", err)
	}

	toggled, _, err := svc.ToggleFlag(model.DomainExpense, e.ID)
	if err != nil || !toggled.Flag {
		t.Fatalf("ToggleFlag = %+v, %v", toggled, err)
	}
	if _, _, err := svc.ToggleFlag(model.DomainExpense, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("ToggleFlag missing err = %v", err)
	}
}

func TestRemoveBelowLimitThenRecross(t *testing.T) {
	svc, _ := newTestService(t)
	big, _, _ := svc.Add(expenseDraft("1250", "Food"))

	if _, err := svc.Remove(model.DomainExpense, big.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, a, _ := svc.Add(expenseDraft("1100", "Food")); len(a) != 1 {
		t.Fatalf("re-crossing alerts = %d, want 1", len(a))
	}
}

func TestSeededLimits(t *testing.T) {
	svc, _ := newTestService(t)
	limits, err := svc.Limits()
	if err != nil {
		t.Fatalf("Limits: %v", err)
	}
	if len(limits) != 4 {
		t.Fatalf("seeded limits = %d, want 4", len(limits))
	}
	for _, l := range limits {
		if !l.Active {
			t.Fatalf("seeded limit %s inactive", l.Label())
		}
	}
}

func TestLimitCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, _ = svc.Add(expenseDraft("300", "Food"))

	l, alerts, err := svc.AddLimit(LimitDraft{Domain: model.DomainExpense, Category: "food", Period: model.PeriodDaily, Amount: "200"})
	if err != nil {
		t.Fatalf("AddLimit: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("new limit already exceeded: alerts = %d, want 1", len(alerts))
	}

	toggled, _, err := svc.ToggleLimit(l.ID)
	if err != nil || toggled.Active {
		t.Fatalf("ToggleLimit off = %+v, %v", toggled, err)
	}
	toggled, alerts, _ = svc.ToggleLimit(l.ID)
	if !toggled.Active || len(alerts) != 1 {
		t.Fatalf("reactivated limit alerts = %d, want 1", len(alerts))
	}

	amt := "500"
	if _, alerts, _ := svc.UpdateLimit(l.ID, LimitPatch{Amount: &amt}); len(alerts) != 0 {
		t.Fatalf("raised limit alerted %d times", len(alerts))
	}

	if err := svc.RemoveLimit(l.ID); err != nil {
		t.Fatalf("RemoveLimit: %v", err)
	}
	if err := svc.RemoveLimit(l.ID); err != nil {
		t.Fatalf("RemoveLimit twice: %v", err)
	}
	states, _ := svc.AlertStates()
	for _, s := range states {
		if s.Key == alert.LimitKey(l) {
			t.Fatal("removed limit left alert state behind")
		}
	}

	if _, _, err := svc.AddLimit(LimitDraft{Domain: model.DomainExpense, Period: model.PeriodDaily, Amount: "zero"}); !errors.Is(err, model.ErrMissingRequiredField) {
		t.Fatalf("bad limit amount err = %v", err)
	}
}

func TestBillReminders(t *testing.T) {
	svc, clock := newTestService(t)
	due := clock.t.AddDate(0, 0, 2)
	bill, _, err := svc.Add(Draft{Domain: model.DomainBill, Amount: "1500", Category: "electricity", Date: due, Provider: "BESCOM"})
	if err != nil {
		t.Fatalf("Add bill: %v", err)
	}
	_, _, _ = svc.Add(Draft{Domain: model.DomainBill, Amount: "900", Category: "internet", Date: clock.t.AddDate(0, 0, 20)})

	reminders, err := svc.BillReminders(3 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("BillReminders: %v", err)
	}
	if len(reminders) != 1 || !strings.Contains(reminders[0].Message, "BESCOM") {
		t.Fatalf("reminders = %+v", reminders)
	}
	if again, _ := svc.BillReminders(3 * 24 * time.Hour); len(again) != 0 {
		t.Fatalf("second run reminded %d times", len(again))
	}

	if _, _, err := svc.ToggleFlag(model.DomainBill, bill.ID); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	st, _ := svc.Status(model.DomainBill)
	if st.Bills == nil || st.Bills.Paid != 1500 || st.Bills.Unpaid != 1 {
		t.Fatalf("bill summary = %+v", st.Bills)
	}
}

func TestWasteGoal(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, _ = svc.Add(Draft{Domain: model.DomainWaste, Amount: "6", Category: "Recyclable"})
	_, alerts, err := svc.Add(Draft{Domain: model.DomainWaste, Amount: "6.5", Category: "landfill"})
	if err != nil {
		t.Fatalf("Add waste: %v", err)
	}
	if len(alerts) != 1 || !strings.Contains(alerts[0].Message, "2.5 kg") {
		t.Fatalf("waste alerts = %+v", alerts)
	}
	st, _ := svc.Status(model.DomainWaste)
	if st.Waste == nil || st.Waste.RecyclableKg != 6 {
		t.Fatalf("waste summary = %+v", st.Waste)
	}
}

func TestMarkAllReadAndPrune(t *testing.T) {
	svc, clock := newTestService(t, WithKeep(2))
	for i := 0; i < 4; i++ {
		_, _, _ = svc.Add(expenseDraft("1500", "Food"))
		_, _ = svc.MarkAllRead()
		clock.t = clock.t.Add(24 * time.Hour)
	}
	list, _ := svc.Notifications()
	if len(list) > 2 {
		t.Fatalf("notifications = %d, want pruned to 2", len(list))
	}
	if n, _ := svc.UnreadCount(); n != 0 {
		t.Fatalf("UnreadCount after MarkAllRead = %d", n)
	}
}

func TestResetCorruptCollection(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	if err := db.Put(model.DomainExpense.StorageKey(), []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := svc.Entries(model.DomainExpense); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("Entries on corrupt data err = %v, want ErrCorrupt", err)
	}
	if err := svc.Reset(model.DomainExpense.StorageKey()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if entries, err := svc.Entries(model.DomainExpense); err != nil || len(entries) != 0 {
		t.Fatalf("after Reset: %d entries, %v", len(entries), err)
	}
	if err := svc.Reset("bogus"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("Reset bogus err = %v", err)
	}
}

func TestApplySeedUpdatesDefaultLimitsOnly(t *testing.T) {
	svc, _ := newTestService(t)

	custom, _, err := svc.AddLimit(LimitDraft{Domain: model.DomainExpense, Category: "Food", Period: model.PeriodDaily, Amount: "300"})
	if err != nil {
		t.Fatalf("AddLimit: %v", err)
	}
	if _, _, err := svc.Add(expenseDraft("700", "Travel")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	seed := DefaultSeedBudget()
	seed.ExpenseDaily = 500
	alerts, err := svc.ApplySeed(seed)
	if err != nil {
		t.Fatalf("ApplySeed: %v", err)
	}
	if len(alerts) != 1 || !strings.Contains(alerts[0].Message, "₹200.00") {
		t.Fatalf("alerts after lowering the daily limit = %+v", alerts)
	}

	limits, _ := svc.Limits()
	for _, l := range limits {
		switch {
		case l.ID == custom.ID && l.Amount != 300:
			t.Fatalf("custom limit changed to %.2f", l.Amount)
		case l.Domain == model.DomainExpense && l.Category == "" && l.Period == model.PeriodDaily && l.Amount != 500:
			t.Fatalf("default daily limit = %.2f, want 500", l.Amount)
		}
	}

	again, err := svc.ApplySeed(seed)
	if err != nil || len(again) != 0 {
		t.Fatalf("second ApplySeed = %v, %v", again, err)
	}
}

func TestApplySeedRoundsFractionalAmounts(t *testing.T) {
	obs := &countingObserver{}
	svc, _ := newTestService(t, WithObserver(obs))
	if _, err := svc.Limits(); err != nil {
		t.Fatalf("Limits: %v", err)
	}

	seed := DefaultSeedBudget()
	seed.ExpenseDaily = 1000.555
	if _, err := svc.ApplySeed(seed); err != nil {
		t.Fatalf("ApplySeed: %v", err)
	}
	first := obs.mutations
	if first != 1 {
		t.Fatalf("first ApplySeed mutations = %d, want 1", first)
	}

	limits, _ := svc.Limits()
	for _, l := range limits {
		if l.Domain == model.DomainExpense && l.Category == "" && l.Period == model.PeriodDaily && l.Amount != 1000.56 {
			t.Fatalf("daily limit = %v, want 1000.56", l.Amount)
		}
	}

	if _, err := svc.ApplySeed(seed); err != nil {
		t.Fatalf("second ApplySeed: %v", err)
	}
	if obs.mutations != first {
		t.Fatalf("second ApplySeed updated %d limits, want 0", obs.mutations-first)
	}
}

func TestConcurrentAddsFromTwoHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rupee.db")
	var services []*Service
	for i := 0; i < 2; i++ {
		db, err := store.Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		services = append(services, NewService(db))
	}

	const perHandle = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*perHandle)
	for _, svc := range services {
		for i := 0; i < perHandle; i++ {
			wg.Add(1)
			go func(svc *Service) {
				defer wg.Done()
				_, _, err := svc.Add(expenseDraft("10", "Tea"))
				errs <- err
			}(svc)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	entries, err := services[1].Entries(model.DomainExpense)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2*perHandle {
		t.Fatalf("entries after %d adds from two handles = %d", 2*perHandle, len(entries))
	}
}
