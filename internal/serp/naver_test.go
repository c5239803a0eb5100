package serp

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNaver() *Naver {
	return &Naver{Endpoint: "https://search.naver.com/search.naver", Days: 1, Photo: 3}
}

func TestWindow(t *testing.T) {
	now := time.Date(2025, 4, 3, 0, 30, 0, 0, time.UTC)
	from, to := Window(now, 1)

	assert.Equal(t, "2025-04-02", from.Format(DateLayout))
	assert.Equal(t, now, to)
}

func TestNaver_PageURL(t *testing.T) {
	from, to := Window(time.Date(2025, 4, 3, 22, 25, 36, 0, time.UTC), 1)

	raw, err := testNaver().PageURL(Query{Keyword: "탄핵 심판", From: from, To: to, Start: 11})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "search.naver.com", u.Host)
	assert.Equal(t, "/search.naver", u.Path)

	q := u.Query()
	for key, want := range map[string]string{
		"where":        "news",
		"query":        "탄핵 심판",
		"sm":           "tab_opt",
		"sort":         "0",
		"photo":        "3",
		"field":        "0",
		"pd":           "4",
		"ds":           "2025-04-02",
		"de":           "2025-04-03",
		"office_type":  "0",
		"nso":          "so:r,p:1d",
		"service_area": "2",
		"start":        "11",
	} {
		assert.Equal(t, want, q.Get(key), key)
	}
	assert.True(t, q.Has("docid"))
	assert.True(t, q.Has("news_office_checked"))
}

func TestNaver_PageURL_Invalid(t *testing.T) {
	n := testNaver()
	now := time.Now()

	_, err := n.PageURL(Query{Keyword: "", From: now, To: now, Start: 1})
	assert.Error(t, err)

	_, err = n.PageURL(Query{Keyword: "x", From: now, To: now, Start: 0})
	assert.Error(t, err)

	_, err = n.PageURL(Query{Keyword: "x", From: now, To: now.Add(-time.Hour), Start: 1})
	assert.Error(t, err)

	bad := &Naver{Endpoint: "://bad"}
	_, err = bad.PageURL(Query{Keyword: "x", From: now, To: now, Start: 1})
	assert.Error(t, err)
}
