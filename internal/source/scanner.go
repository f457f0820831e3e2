package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theirongolddev/rupee/internal/model"
)

// Extensions accepted by ScanPath.
var importExts = map[string]bool{".jsonl": true, ".ndjson": true}

// ScanPath returns the import files at path. A file is returned as is; a directory
// is walked for .jsonl and .ndjson files, sorted by path. A missing path is an error.
func ScanPath(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []DiscoveredFile{discover(path)}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !importExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		files = append(files, discover(p))
		return nil
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func discover(path string) DiscoveredFile {
	return DiscoveredFile{Path: path, Domain: domainHint(filepath.Base(path))}
}

// domainHint maps a file name such as "expenses-2026.jsonl" to its domain.
// Names that match no domain yield "" and each line must carry its own domain.
//
//	"bills.jsonl"         -> "bill"
//	"waste_oct.ndjson"    -> "waste"
//	"expenses-2026.jsonl" -> "expense"
func domainHint(name string) string {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	head := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	if len(head) == 0 {
		return ""
	}
	if d, ok := model.ParseDomain(head[0]); ok && len(head[0]) > 1 {
		return string(d)
	}
	return ""
}
