// Package serp builds result page URLs for the news search endpoint.
package serp

import (
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the upstream format for the ds/de window bounds.
const DateLayout = "2006-01-02"

// Query identifies one result page of a news search.
type Query struct {
	Keyword string
	From    time.Time
	To      time.Time
	// Start is the 1-based position of the first item on the page.
	Start int
}

// Window returns the lookback window [now - days, now].
func Window(now time.Time, days int) (from, to time.Time) {
	return now.AddDate(0, 0, -days), now
}

// Provider turns a Query into a request URL.
type Provider interface {
	PageURL(q Query) (string, error)
}

func validate(q Query) error {
	if q.Keyword == "" {
		return fmt.Errorf("serp: empty keyword")
	}
	if q.Start < 1 {
		return fmt.Errorf("serp: start must be >= 1, got %d", q.Start)
	}
	if q.To.Before(q.From) {
		return fmt.Errorf("serp: window ends before it starts")
	}
	return nil
}

func encode(endpoint string, v url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("serp: parse endpoint: %w", err)
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}
