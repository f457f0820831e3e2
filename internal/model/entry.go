// Package model defines domain types for rupee ledgers, limits and notifications.
package model

import "time"

// Domain names one ledger collection. Each domain is persisted under its own key.
type Domain string

const (
	DomainExpense Domain = "expense"
	DomainBill    Domain = "bill"
	DomainWaste   Domain = "waste"
)

// Domains lists every ledger domain in display order.
var Domains = []Domain{DomainExpense, DomainBill, DomainWaste}

// ParseDomain accepts a domain name, its plural, or a short alias.
func ParseDomain(s string) (Domain, bool) {
	switch s {
	case "expense", "expenses", "e":
		return DomainExpense, true
	case "bill", "bills", "b":
		return DomainBill, true
	case "waste", "w":
		return DomainWaste, true
	}
	return "", false
}

// StorageKey is the collection key the domain's entries live under.
func (d Domain) StorageKey() string {
	return "entries." + string(d)
}

// FlagLabel is the user-facing name of the domain's boolean flag.
func (d Domain) FlagLabel() string {
	switch d {
	case DomainBill:
		return "paid"
	case DomainWaste:
		return "disposed"
	default:
		return "cleared"
	}
}

// Unit is the unit amounts of this domain are measured in.
func (d Domain) Unit() string {
	if d == DomainWaste {
		return "kg"
	}
	return "INR"
}

// Kind separates money coming in from money going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Waste streams used as the category of waste entries.
const (
	WasteRecyclable = "recyclable"
	WasteOrganic    = "organic"
	WasteHazardous  = "hazardous"
	WasteLandfill   = "landfill"
)

// WasteStreams lists the accepted waste categories.
var WasteStreams = []string{WasteRecyclable, WasteOrganic, WasteHazardous, WasteLandfill}

// Entry is one ledger record. Domain selects which detail block, if any, is set.
type Entry struct {
	ID          string    `json:"id"`
	Domain      Domain    `json:"domain"`
	Kind        Kind      `json:"kind"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	Flag        bool      `json:"flag"`

	Bill  *BillDetails  `json:"bill,omitempty"`
	Waste *WasteDetails `json:"waste,omitempty"`
}

// BillDetails holds bill-only fields. Entry.Date is the due date.
type BillDetails struct {
	Provider  string `json:"provider,omitempty"`
	Recurring bool   `json:"recurring"`
}

// WasteDetails holds waste-only fields. Entry.Amount is the quantity.
type WasteDetails struct {
	Unit string `json:"unit"`
}

// RecordID implements store.Record.
func (e Entry) RecordID() string { return e.ID }

// IsIncome reports whether the entry adds to the balance.
func (e Entry) IsIncome() bool { return e.Kind == KindIncome }
