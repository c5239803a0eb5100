package xlsxbackend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet new tables are written to. Existing workbooks
// are read from their first sheet whatever its name.
const SheetName = "news"

// ensure xlsxBackend implements storage.Backend
var _ storage.Backend = (*xlsxBackend)(nil)

// xlsxBackend keeps the workbook in memory and writes it to disk on Close.
type xlsxBackend struct {
	mu    sync.Mutex
	path  string
	file  *excelize.File
	sheet string
	next  int // 1-based row number of the next Save
	dirty bool
}

// New opens the workbook at filePath, or starts a new one with a header row
// if the file does not exist yet.
func New(filePath string) (storage.Backend, error) {
	b := &xlsxBackend{path: filePath}

	f, err := excelize.OpenFile(filePath)
	switch {
	case err == nil:
		if err := b.attach(f); err != nil {
			_ = f.Close()
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := b.create(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("xlsx: open %s: %w", filePath, err)
	}

	return b, nil
}

func (b *xlsxBackend) attach(f *excelize.File) error {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx: %s has no worksheets", b.path)
	}
	b.file = f
	b.sheet = sheets[0]

	rows, err := f.GetRows(b.sheet)
	if err != nil {
		return fmt.Errorf("xlsx: read %s: %w", b.path, err)
	}
	if len(rows) == 0 {
		return b.writeHeader()
	}
	b.next = len(rows) + 1
	return nil
}

func (b *xlsxBackend) create() error {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return fmt.Errorf("xlsx: name sheet: %w", err)
	}
	b.file = f
	b.sheet = SheetName
	return b.writeHeader()
}

func (b *xlsxBackend) writeHeader() error {
	b.next = 1
	return b.writeRow(storage.Columns)
}

func (b *xlsxBackend) writeRow(cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, b.next)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", b.next, err)
	}

	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	if err := b.file.SetSheetRow(b.sheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", b.next, err)
	}

	b.next++
	b.dirty = true
	return nil
}

func (b *xlsxBackend) Save(ctx context.Context, record *storage.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeRow(record.Row())
}

func (b *xlsxBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.file.GetRows(b.sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %s: %w", b.path, err)
	}
	if len(rows) == 0 {
		return []*storage.Record{}, nil
	}

	header := storage.ParseHeader(rows[0])
	records := make([]*storage.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := header.Record(row)
		records = append(records, &rec)
	}

	return filter.Apply(records), nil
}

// Close flushes pending rows to disk and releases the workbook.
func (b *xlsxBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var saveErr error
	if b.dirty {
		if err := b.file.SaveAs(b.path); err != nil {
			saveErr = fmt.Errorf("xlsx: save %s: %w", b.path, err)
		}
		b.dirty = false
	}
	return errors.Join(saveErr, b.file.Close())
}
