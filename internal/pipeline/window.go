package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/rupee/internal/model"
)

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor returns the calendar window of period containing now, in now's location.
// Weeks start on Monday.
func WindowFor(p model.Period, now time.Time) Window {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch p {
	case model.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}
	case model.PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0)}
	default:
		return Window{Start: day, End: day.AddDate(0, 0, 1)}
	}
}

// PeriodKey names the period instance containing now: 2026-10-17, 2026-W42, 2026-10.
func PeriodKey(p model.Period, now time.Time) string {
	switch p {
	case model.PeriodWeekly:
		y, w := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case model.PeriodMonthly:
		return now.Format("2006-01")
	default:
		return now.Format("2006-01-02")
	}
}
