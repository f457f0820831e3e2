package ledger

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/source"
)

// Rejected is an import line that failed validation.
type Rejected struct {
	File string
	Line int
	Err  error
}

func (r Rejected) String() string {
	return fmt.Sprintf("%s:%d: %v", r.File, r.Line, r.Err)
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added    map[model.Domain]int
	Rejected []Rejected
	Alerts   []model.Notification
}

// Total is the number of entries added across domains.
func (r ImportResult) Total() int {
	n := 0
	for _, c := range r.Added {
		n += c
	}
	return n
}

// DraftFromRecord turns a parsed import line into a Draft. Expense lines with no
// type default to expense.
func DraftFromRecord(rec source.Record) (Draft, error) {
	raw := rec.Entry
	domain, ok := model.ParseDomain(strings.ToLower(strings.TrimSpace(raw.Domain)))
	if !ok {
		return Draft{}, model.Invalid("domain", "must be expense, bill or waste")
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Draft{}, err
	}

	d := Draft{
		Domain:      domain,
		Amount:      raw.AmountText(),
		Category:    raw.Category,
		Description: raw.Description,
		Date:        date,
		Provider:    raw.Provider,
		Recurring:   raw.Recurring,
	}
	if domain == model.DomainExpense {
		d.Kind = model.Kind(strings.ToLower(strings.TrimSpace(raw.Type)))
		if d.Kind == "" {
			d.Kind = model.KindExpense
		}
	}
	return d, nil
}

// Import validates every record and adds the valid ones, one write per domain.
// Limits are evaluated once per touched domain after all writes, so a bulk load
// raises at most one alert per limit. With dryRun nothing is written and Added
// counts what would have been added.
func (s *Service) Import(records []source.Record, dryRun bool) (ImportResult, error) {
	res := ImportResult{Added: make(map[model.Domain]int)}

	type pending struct {
		rec   source.Record
		draft Draft
	}
	byDomain := make(map[model.Domain][]pending)
	for _, rec := range records {
		d, err := DraftFromRecord(rec)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{File: rec.File, Line: rec.Line, Err: err})
			continue
		}
		byDomain[d.Domain] = append(byDomain[d.Domain], pending{rec: rec, draft: d})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var touched []model.Domain
	for _, domain := range model.Domains {
		batch := byDomain[domain]
		if len(batch) == 0 {
			continue
		}
		drafts := make([]Draft, len(batch))
		for i, p := range batch {
			drafts[i] = p.draft
		}

		var errs []error
		if dryRun {
			errs = make([]error, len(drafts))
			for i, d := range drafts {
				_, errs[i] = d.build(domain, now)
			}
		} else {
			b, err := s.book(domain)
			if err != nil {
				return res, err
			}
			added, addErrs, err := b.AddAll(drafts)
			if err != nil {
				return res, err
			}
			errs = addErrs
			for _, e := range added {
				s.mutated(domain, "import", e.ID)
			}
		}

		for i, err := range errs {
			if err != nil {
				res.Rejected = append(res.Rejected, Rejected{File: batch[i].rec.File, Line: batch[i].rec.Line, Err: err})
				continue
			}
			res.Added[domain]++
		}
		if res.Added[domain] > 0 {
			touched = append(touched, domain)
		}
	}

	if dryRun {
		return res, nil
	}
	for _, domain := range touched {
		alerts, err := s.evaluate(domain)
		res.Alerts = append(res.Alerts, alerts...)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
