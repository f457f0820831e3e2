package source

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawEntry is one line of an import file. Fields mirror `rupee add` flags.
type RawEntry struct {
	Domain      string          `json:"domain"`
	Type        string          `json:"type,omitempty"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	Recurring   bool            `json:"recurring,omitempty"`
}

// AmountText returns the amount as written, whether it was a JSON number or string.
func (r RawEntry) AmountText() string {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return strings.TrimSpace(string(raw))
}

// DiscoveredFile is an import file found during scanning.
type DiscoveredFile struct {
	Path   string
	Domain string // hint from the file name, e.g. "bills.jsonl" -> "bill"
}

// Record is one parsed line, tagged with where it came from.
type Record struct {
	File  string
	Line  int
	Entry RawEntry
}
