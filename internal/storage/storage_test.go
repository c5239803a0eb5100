package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Row(t *testing.T) {
	r := Record{Title: "t", Publisher: "p", Date: "d", Summary: "s", Link: "l"}
	assert.Equal(t, []string{"t", "p", "d", "s", "l"}, r.Row())
	assert.Len(t, Columns, len(r.Row()))
}

func TestRecord_Normalized(t *testing.T) {
	r := Record{Title: "t", Publisher: " ", Summary: "", Link: "l"}.Normalized()
	assert.Equal(t, "t", r.Title)
	assert.Equal(t, NotAvailable, r.Publisher)
	assert.Equal(t, NotAvailable, r.Date)
	assert.Equal(t, NotAvailable, r.Summary)
	assert.Equal(t, "l", r.Link)
}

func TestHeader_Record(t *testing.T) {
	// Reordered columns, one missing, and a short row.
	h := ParseHeader([]string{"Link", "Title", "Summary", "Date"})

	r := h.Record([]string{"https://a", "A title", "sum"})
	assert.Equal(t, "A title", r.Title)
	assert.Equal(t, "https://a", r.Link)
	assert.Equal(t, "sum", r.Summary)
	assert.Equal(t, NotAvailable, r.Date)
	assert.Equal(t, NotAvailable, r.Publisher)
}

func TestFilter_Apply(t *testing.T) {
	records := []*Record{{Link: "a"}, {Link: "b"}, {Link: "c"}}

	assert.Len(t, Filter{}.Apply(records), 3)

	byLink := Filter{Link: "b"}.Apply(records)
	require.Len(t, byLink, 1)
	assert.Equal(t, "b", byLink[0].Link)

	page := Filter{Offset: 1, Limit: 1}.Apply(records)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Link)

	assert.Empty(t, Filter{Offset: 5}.Apply(records))
}

type memBackend struct {
	saved  []*Record
	failAt int
}

func (m *memBackend) Save(ctx context.Context, r *Record) error {
	if m.failAt > 0 && len(m.saved)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memBackend) Query(ctx context.Context, f Filter) ([]*Record, error) {
	return f.Apply(m.saved), nil
}

func (m *memBackend) Close() error { return nil }

func TestSaveAll(t *testing.T) {
	b := &memBackend{}
	require.NoError(t, SaveAll(context.Background(), b, []Record{{Link: "a"}, {Link: "b"}}))
	assert.Len(t, b.saved, 2)

	failing := &memBackend{failAt: 2}
	err := SaveAll(context.Background(), failing, []Record{{Link: "a"}, {Link: "b"}, {Link: "c"}})
	require.Error(t, err)
	assert.Len(t, failing.saved, 1)
}
