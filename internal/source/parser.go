// Package source discovers and parses JSONL files of ledger entries for bulk import.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
)

// ParseResult holds the output of parsing a single import file.
type ParseResult struct {
	Records     []Record
	Lines       int
	ParseErrors int
	Err         error
}

// ParseFile reads one JSONL import file. Blank lines and lines starting with '#'
// are skipped. Lines that are not JSON objects, or that name no domain while the
// file name gives no hint, are counted in ParseErrors and dropped.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var result ParseResult

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		result.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if line[0] != '{' {
			result.ParseErrors++
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			result.ParseErrors++
			continue
		}
		if entry.Domain == "" {
			entry.Domain = df.Domain
		}
		if entry.Domain == "" {
			result.ParseErrors++
			continue
		}

		result.Records = append(result.Records, Record{
			File:  df.Path,
			Line:  result.Lines,
			Entry: entry,
		})
	}
	if err := scanner.Err(); err != nil {
		result.Err = err
	}

	return result
}
