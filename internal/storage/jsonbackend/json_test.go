package jsonbackend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "navernews_economy_20250403_101010.jsonl")

	b, err := New(filePath)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	records := []storage.Record{
		{Title: "Rates hold", Publisher: "Hankyung", Date: "3 hours ago", Summary: "The central bank held.", Link: "https://n.news/a"},
		{Title: "Won weakens", Publisher: "MK", Date: "2025.04.03.", Summary: "Currency slides.", Link: "https://n.news/b"},
		{Title: "Exports up", Link: "https://n.news/c"},
	}
	require.NoError(t, storage.SaveAll(ctx, b, records))

	all, err := b.Query(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, records[0], *all[0])
	assert.Equal(t, records[1], *all[1])
	assert.Equal(t, storage.NotAvailable, all[2].Publisher)

	offset, err := b.Query(ctx, storage.Filter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, offset, 1)
	assert.Equal(t, "Exports up", offset[0].Title)
}

func TestJSONBackend_CorruptLine(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "broken.jsonl")
	require.NoError(t, os.WriteFile(filePath, []byte("{\"title\":\"ok\"}\nnot json\n"), 0o644))

	b, err := New(filePath)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Query(context.Background(), storage.Filter{})
	require.Error(t, err)
}
