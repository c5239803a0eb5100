package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranksOps/newsbrief/internal/storage"
)

func firstItem(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find("div.news_area").First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestExtractItem_AllFields(t *testing.T) {
	sel := firstItem(t, `<div class="news_area">
		<div class="info_group"><a class="press">  연합뉴스 </a><span class="info">3시간 전</span></div>
		<a class="news_tit" href="https://n.news/1">
			탄핵 심판
			선고
		</a>
		<div class="news_dsc"><a>헌법재판소가 오늘</a> 선고한다</div>
	</div>`)

	rec, err := extractItem(sel, DefaultSelectors())
	require.NoError(t, err)
	assert.Equal(t, storage.Record{
		Title:     "탄핵 심판 선고",
		Publisher: "연합뉴스",
		Date:      "3시간 전",
		Summary:   "헌법재판소가 오늘 선고한다",
		Link:      "https://n.news/1",
	}, rec)
}

func TestExtractItem_DefaultsMissingFields(t *testing.T) {
	sel := firstItem(t, `<div class="news_area"><a class="news_tit" href="/a">Only title</a></div>`)

	rec, err := extractItem(sel, DefaultSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Only title", rec.Title)
	assert.Equal(t, storage.Unknown, rec.Publisher)
	assert.Equal(t, storage.Unknown, rec.Date)
	assert.Equal(t, storage.Unknown, rec.Summary)
}

func TestExtractItem_Errors(t *testing.T) {
	cases := map[string]struct {
		html string
		want error
	}{
		"no anchor":   {`<div class="news_area"><a class="press">p</a></div>`, ErrMissingTitle},
		"blank title": {`<div class="news_area"><a class="news_tit" href="/a">   </a></div>`, ErrMissingTitle},
		"no href":     {`<div class="news_area"><a class="news_tit">t</a></div>`, ErrMissingLink},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := extractItem(firstItem(t, tc.html), DefaultSelectors())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
