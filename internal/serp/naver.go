package serp

import (
	"fmt"
	"net/url"
	"strconv"
)

// Naver builds news tab URLs for search.naver.com.
type Naver struct {
	Endpoint string

	Days       int
	Sort       int
	Photo      int
	Field      int
	OfficeType int
}

// PageURL encodes the full parameter set the news tab expects, with the
// window bounds sent both as explicit dates and as the nso period.
func (n *Naver) PageURL(q Query) (string, error) {
	if err := validate(q); err != nil {
		return "", err
	}

	v := url.Values{}
	v.Set("where", "news")
	v.Set("query", q.Keyword)
	v.Set("sm", "tab_opt")
	v.Set("sort", strconv.Itoa(n.Sort))
	v.Set("photo", strconv.Itoa(n.Photo))
	v.Set("field", strconv.Itoa(n.Field))
	v.Set("pd", "4")
	v.Set("ds", q.From.Format(DateLayout))
	v.Set("de", q.To.Format(DateLayout))
	v.Set("docid", "")
	v.Set("related", "0")
	v.Set("mynews", "0")
	v.Set("office_type", strconv.Itoa(n.OfficeType))
	v.Set("office_section_code", "0")
	v.Set("news_office_checked", "")
	v.Set("nso", fmt.Sprintf("so:r,p:%dd", n.Days))
	v.Set("is_sug_officeid", "0")
	v.Set("office_category", "0")
	v.Set("service_area", "2")
	v.Set("start", strconv.Itoa(q.Start))

	return encode(n.Endpoint, v)
}

var _ Provider = (*Naver)(nil)
