package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/tui/theme"
)

// entryValues backs the add-entry form. The form writes through pointers, so
// it must outlive every App copy that references the form.
type entryValues struct {
	domain      model.Domain
	kind        string
	amount      string
	category    string
	description string
	date        string
	provider    string
	recurring   bool
}

func newEntryValues(d model.Domain) *entryValues {
	v := &entryValues{domain: d, kind: string(model.KindExpense)}
	if d == model.DomainWaste {
		v.category = model.WasteRecyclable
	}
	return v
}

// draft converts the form input to a ledger draft. Parse errors are left to
// Service.Add so they surface with the field name.
func (v *entryValues) draft() ledger.Draft {
	d := ledger.Draft{
		Domain:      v.domain,
		Kind:        model.Kind(v.kind),
		Amount:      v.amount,
		Category:    strings.TrimSpace(v.category),
		Description: strings.TrimSpace(v.description),
		Provider:    strings.TrimSpace(v.provider),
		Recurring:   v.recurring,
	}
	if date, err := ledger.ParseDate(v.date); err == nil {
		d.Date = date
	}
	return d
}

func validateAmount(s string) error {
	_, err := ledger.ParseAmount(s)
	return err
}

func validateDate(required bool) func(string) error {
	return func(s string) error {
		if required && strings.TrimSpace(s) == "" {
			return model.Missing("date")
		}
		_, err := ledger.ParseDate(s)
		return err
	}
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return model.Missing(field)
		}
		return nil
	}
}

func newEntryForm(v *entryValues) *huh.Form {
	var fields []huh.Field

	switch v.domain {
	case model.DomainExpense:
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(model.KindExpense)),
					huh.NewOption("Income", string(model.KindIncome)),
				).
				Value(&v.kind),
			huh.NewInput().Title("Amount (₹)").Value(&v.amount).Validate(validateAmount),
			huh.NewInput().Title("Category").Placeholder("Food").Value(&v.category).Validate(validateRequired("category")),
			huh.NewInput().Title("Description").Value(&v.description),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD, blank for today").Value(&v.date).Validate(validateDate(false)),
		)
	case model.DomainBill:
		fields = append(fields,
			huh.NewInput().Title("Bill").Placeholder("Electricity").Value(&v.category).Validate(validateRequired("category")),
			huh.NewInput().Title("Provider").Placeholder("BESCOM").Value(&v.provider),
			huh.NewInput().Title("Amount (₹)").Value(&v.amount).Validate(validateAmount),
			huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD").Value(&v.date).Validate(validateDate(true)),
			huh.NewConfirm().Title("Recurring monthly?").Value(&v.recurring),
		)
	case model.DomainWaste:
		opts := make([]huh.Option[string], 0, len(model.WasteStreams))
		for _, s := range model.WasteStreams {
			opts = append(opts, huh.NewOption(s, s))
		}
		fields = append(fields,
			huh.NewSelect[string]().Title("Stream").Options(opts...).Value(&v.category),
			huh.NewInput().Title("Quantity (kg)").Value(&v.amount).Validate(validateAmount),
			huh.NewInput().Title("Description").Value(&v.description),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD, blank for today").Value(&v.date).Validate(validateDate(false)),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(formTheme()).
		WithShowHelp(true)
}

// setupValues backs the first-run setup form.
type setupValues struct {
	theme   string
	daily   string
	monthly string
	repeat  bool
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		theme:   cfg.Appearance.Theme,
		daily:   strconv.FormatFloat(cfg.Budget.DailyINR, 'f', -1, 64),
		monthly: strconv.FormatFloat(cfg.Budget.MonthlyINR, 'f', -1, 64),
		repeat:  cfg.Alerts.Repeat,
	}
}

// apply copies the form answers onto cfg.
func (v *setupValues) apply(cfg config.Config) (config.Config, error) {
	daily, err := ledger.ParseAmount(v.daily)
	if err != nil {
		return cfg, err
	}
	monthly, err := ledger.ParseAmount(v.monthly)
	if err != nil {
		return cfg, err
	}
	cfg.Appearance.Theme = v.theme
	cfg.Budget.DailyINR = daily
	cfg.Budget.MonthlyINR = monthly
	cfg.Alerts.Repeat = v.repeat
	return cfg, nil
}

// NewSetupForm builds the setup wizard used both on first TUI launch and by
// `rupee setup`. Answers land in the returned apply func.
func NewSetupForm(cfg config.Config) (*huh.Form, func(config.Config) (config.Config, error)) {
	v := newSetupValues(cfg)
	return newSetupForm(v), v.apply
}

func newSetupForm(v *setupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to rupee").
				Description("Track expenses, bills and waste against limits.\nThese answers are saved to "+config.Path()+"."),
			huh.NewSelect[string]().Title("Color theme").Options(themes...).Value(&v.theme),
		),
		huh.NewGroup(
			huh.NewInput().Title("Daily spending limit (₹)").Value(&v.daily).Validate(validateAmount),
			huh.NewInput().Title("Monthly spending limit (₹)").Value(&v.monthly).Validate(validateAmount),
			huh.NewConfirm().
				Title("Repeat alerts while over a limit?").
				Description("No alerts once per period, when the limit is first crossed.").
				Value(&v.repeat),
		),
	).WithTheme(formTheme())
}

func formTheme() *huh.Theme {
	if theme.Active.Name == theme.Terminal.Name {
		return huh.ThemeBase16()
	}
	return huh.ThemeCharm()
}

func formWidth(termWidth int) int {
	w := termWidth - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}
