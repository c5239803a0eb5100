package digest

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranksOps/newsbrief/internal/storage"
)

func rows(n int) []storage.Record {
	out := make([]storage.Record, n)
	for i := range out {
		out[i] = storage.Record{
			Title:     fmt.Sprintf("headline %d", i+1),
			Publisher: fmt.Sprintf("press %d", i+1),
			Date:      "1시간 전",
			Summary:   fmt.Sprintf("summary %d", i+1),
			Link:      fmt.Sprintf("https://news.example/%d", i+1),
		}
	}
	return out
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("가", 200)
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("가", 250)
	got := truncate(long)
	assert.Equal(t, 200, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("가", 197)+"...", got)
}

func TestSelectFeatured_ValidRecommendations(t *testing.T) {
	records := rows(8)
	featured, used := selectFeatured(records, []Recommendation{
		{Index: 3, Summary: "why 3 matters"},
		{Index: 0, Summary: "out of range"},
		{Index: 99, Summary: "out of range"},
		{Index: 3, Summary: "repeat"},
		{Index: 8, Summary: "last row"},
	})

	require.Len(t, featured, 2)
	assert.Equal(t, "headline 3", featured[0].Title)
	assert.Equal(t, "why 3 matters", featured[0].Summary)
	assert.Equal(t, "https://news.example/3", featured[0].Link)
	assert.Equal(t, "headline 8", featured[1].Title)
	assert.True(t, featured[0].Separator)
	assert.True(t, featured[1].Separator)
	assert.Equal(t, map[int]bool{2: true, 7: true}, used)
}

func TestSelectFeatured_CapsAtFive(t *testing.T) {
	var recs []Recommendation
	for i := 1; i <= 7; i++ {
		recs = append(recs, Recommendation{Index: i, Summary: "s"})
	}
	featured, _ := selectFeatured(rows(10), recs)
	assert.Len(t, featured, 5)
}

func TestSelectFeatured_PositionalFallback(t *testing.T) {
	records := rows(7)
	records[0].Summary = strings.Repeat("x", 300)

	featured, used := selectFeatured(records, []Recommendation{{Index: 42}})

	require.Len(t, featured, 5)
	assert.Equal(t, strings.Repeat("x", 197)+"...", featured[0].Summary)
	for i, a := range featured {
		assert.Equal(t, fmt.Sprintf("headline %d", i+1), a.Title)
		assert.Equal(t, i < 4, a.Separator, "separator after item %d", i)
	}
	assert.Len(t, used, 5)
}

func TestSelectFeatured_FewRows(t *testing.T) {
	featured, _ := selectFeatured(rows(2), nil)
	require.Len(t, featured, 2)
	assert.True(t, featured[0].Separator)
	assert.False(t, featured[1].Separator)

	featured, _ = selectFeatured(nil, nil)
	assert.Empty(t, featured)
}

func TestSelectAdditional_ExcludesFeatured(t *testing.T) {
	records := rows(10)
	got := selectAdditional(records, map[int]bool{0: true, 2: true, 3: true})

	require.Len(t, got, 5)
	var titles []string
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"headline 2", "headline 5", "headline 6", "headline 7", "headline 8"}, titles)

	assert.Empty(t, selectAdditional(rows(5), map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc...", Preview("abc", 500))
	assert.Equal(t, "가나...", Preview("가나다라", 2))
}
