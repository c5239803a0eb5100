// Package tables names, discovers and opens exported news tables on disk.
package tables

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/FranksOps/newsbrief/internal/storage/csvbackend"
	"github.com/FranksOps/newsbrief/internal/storage/jsonbackend"
	"github.com/FranksOps/newsbrief/internal/storage/xlsxbackend"
)

// Supported table formats, by file extension without the dot.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// TimestampLayout is embedded at the end of every table file name.
const TimestampLayout = "20060102_150405"

var (
	// ErrUnsupportedFormat is returned for a file extension without a backend.
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrNoTable is returned by Latest when nothing matches.
	ErrNoTable = errors.New("no matching table file")
)

// ValidFormat reports whether format names a supported table format.
func ValidFormat(format string) bool {
	switch format {
	case FormatXLSX, FormatCSV, FormatJSONL:
		return true
	}
	return false
}

// Open returns the backend matching path's extension.
func Open(path string) (storage.Backend, error) {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext {
	case FormatXLSX:
		return xlsxbackend.New(path)
	case FormatCSV:
		return csvbackend.New(path)
	case FormatJSONL, "ndjson":
		return jsonbackend.New(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// FileName builds "<prefix>_<keyword>_<YYYYMMDD_HHMMSS>.<format>". Path
// separators in the keyword are replaced so the name stays a single file.
func FileName(prefix, keyword, format string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(keyword))
	return fmt.Sprintf("%s_%s_%s.%s", prefix, safe, at.Format(TimestampLayout), format)
}

// Latest returns the path of the newest table in dir whose name contains
// prefix and ends in ".<format>". Tables are ordered by the timestamp at the
// end of the name, then by name. Files without one are ignored.
func Latest(dir, prefix, format string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}

	type candidate struct {
		name string
		at   time.Time
	}

	suffix := "." + format
	var found []candidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) || !strings.Contains(name, prefix) {
			continue
		}
		at, ok := nameTimestamp(strings.TrimSuffix(name, suffix))
		if !ok {
			continue
		}
		found = append(found, candidate{name: name, at: at})
	}

	if len(found) == 0 {
		return "", fmt.Errorf("%w: *%s*%s in %s", ErrNoTable, prefix, suffix, dir)
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.Before(found[j].at)
		}
		return found[i].name < found[j].name
	})
	return filepath.Join(dir, found[len(found)-1].name), nil
}

// nameTimestamp parses the trailing "YYYYMMDD_HHMMSS" of a base name.
func nameTimestamp(base string) (time.Time, bool) {
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	at, err := time.Parse(TimestampLayout, strings.Join(parts[len(parts)-2:], "_"))
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
