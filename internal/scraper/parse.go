package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/newsbrief/internal/storage"
)

var (
	// ErrMissingTitle marks an item without a usable title anchor. Such items
	// are skipped silently.
	ErrMissingTitle = errors.New("item has no title")
	ErrMissingLink  = errors.New("item title has no link")
)

// Selectors locate the parts of one result item.
type Selectors struct {
	Item      string
	Title     string
	Publisher string
	Summary   string
	Date      string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Item:      "div.news_area",
		Title:     "a.news_tit",
		Publisher: "a.press",
		Summary:   "div.news_dsc",
		Date:      "span.info",
	}
}

// extractItem reads one result item. Publisher, summary and date fall back
// to storage.Unknown independently.
func extractItem(sel *goquery.Selection, s Selectors) (storage.Record, error) {
	anchor := sel.Find(s.Title).First()
	if anchor.Length() == 0 {
		return storage.Record{}, ErrMissingTitle
	}

	title := cleanText(anchor.Text())
	if title == "" {
		return storage.Record{}, ErrMissingTitle
	}

	link, ok := anchor.Attr("href")
	link = strings.TrimSpace(link)
	if !ok || link == "" {
		return storage.Record{}, ErrMissingLink
	}

	return storage.Record{
		Title:     title,
		Publisher: textOr(sel, s.Publisher, storage.Unknown),
		Date:      textOr(sel, s.Date, storage.Unknown),
		Summary:   textOr(sel, s.Summary, storage.Unknown),
		Link:      link,
	}, nil
}

func textOr(sel *goquery.Selection, selector, fallback string) string {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return fallback
	}
	return cleanText(found.Text())
}

// cleanText collapses runs of whitespace left over from markup indentation.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
