package alert

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
)

// severeOverageRatio is the overage, as a share of the limit, at which an alert
// is raised as an error instead of a warning.
const severeOverageRatio = 0.2

// LimitKey is the evaluator key for a limit.
func LimitKey(l model.Limit) string {
	return string(l.Domain) + "/" + l.ID
}

// ReminderKey is the evaluator key for a bill reminder.
func ReminderKey(billID string) string {
	return "remind/" + billID
}

// OverLimit builds the notification for a limit crossing. ID and CreatedAt are left
// for the notification log to assign.
func OverLimit(l model.Limit, res Result) model.Notification {
	unit := l.Domain.Unit()
	kind := model.NotifyWarning
	if l.Amount > 0 && res.Overage/l.Amount >= severeOverageRatio {
		kind = model.NotifyError
	}

	noun := "limit"
	if l.Domain == model.DomainWaste {
		noun = "goal"
	}

	return model.Notification{
		Kind: kind,
		Message: fmt.Sprintf("%s %s exceeded by %s (%s of %s)",
			capitalize(l.Label()), noun,
			cli.FormatAmount(unit, res.Overage),
			cli.FormatAmount(unit, res.Spent),
			cli.FormatAmount(unit, res.Limit),
		),
		Category: string(l.Domain),
	}
}

// BillDue builds the reminder notification for an unpaid bill.
func BillDue(bill model.Entry) model.Notification {
	what := bill.Category
	if bill.Bill != nil && bill.Bill.Provider != "" {
		what += " (" + bill.Bill.Provider + ")"
	}
	return model.Notification{
		Kind:     model.NotifyInfo,
		Message:  fmt.Sprintf("%s bill of %s is due on %s", capitalize(what), cli.FormatRupee(bill.Amount), cli.FormatDate(bill.Date)),
		Category: string(model.DomainBill),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
