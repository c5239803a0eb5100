package storage

import (
	"context"
	"strings"
)

const (
	// Unknown replaces a publisher, date or summary the result page did not carry.
	Unknown = "unknown"
	// NotAvailable replaces a cell that is missing or empty when a table is read back.
	NotAvailable = "not available"
)

// Column names of an exported table, in write order.
const (
	ColTitle     = "title"
	ColPublisher = "publisher"
	ColDate      = "date"
	ColSummary   = "summary"
	ColLink      = "link"
)

// Columns is the header row of every exported table.
var Columns = []string{ColTitle, ColPublisher, ColDate, ColSummary, ColLink}

// Record is one parsed news item. Link identifies it within a collection run.
type Record struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
}

// Row returns the record's cells in Columns order.
func (r Record) Row() []string {
	return []string{r.Title, r.Publisher, r.Date, r.Summary, r.Link}
}

// Normalized replaces empty or whitespace-only fields with NotAvailable.
func (r Record) Normalized() Record {
	fill := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return NotAvailable
		}
		return s
	}
	return Record{
		Title:     fill(r.Title),
		Publisher: fill(r.Publisher),
		Date:      fill(r.Date),
		Summary:   fill(r.Summary),
		Link:      fill(r.Link),
	}
}

// Header maps column names to their position in a table's header row.
type Header map[string]int

// ParseHeader indexes a header row. Names are matched case-insensitively.
func ParseHeader(row []string) Header {
	h := make(Header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

// Record builds a normalized Record from a data row. Columns absent from the
// header or cut short in the row read as NotAvailable.
func (h Header) Record(row []string) Record {
	cell := func(name string) string {
		i, ok := h[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return Record{
		Title:     cell(ColTitle),
		Publisher: cell(ColPublisher),
		Date:      cell(ColDate),
		Summary:   cell(ColSummary),
		Link:      cell(ColLink),
	}.Normalized()
}

// Filter narrows a Query. The zero value returns every record.
type Filter struct {
	Link   string
	Limit  int
	Offset int
}

// Apply filters records in memory, keeping their order.
func (f Filter) Apply(records []*Record) []*Record {
	out := records
	if f.Link != "" {
		out = make([]*Record, 0, 1)
		for _, r := range records {
			if r.Link == f.Link {
				out = append(out, r)
			}
		}
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Record{}
		}
		out = out[f.Offset:]
	}

	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}

	return out
}

// Backend stores records of one exported table. Query returns records in
// the order they were saved.
type Backend interface {
	Save(ctx context.Context, record *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}

// SaveAll writes records to b in order and stops at the first error.
func SaveAll(ctx context.Context, b Backend, records []Record) error {
	for i := range records {
		if err := b.Save(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}
