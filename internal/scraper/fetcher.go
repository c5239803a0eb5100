package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FranksOps/newsbrief/internal/bypass"
	"github.com/FranksOps/newsbrief/internal/fingerprint"
	"github.com/FranksOps/newsbrief/internal/metrics"
	"github.com/FranksOps/newsbrief/pkg/httpclient"
	"github.com/FranksOps/newsbrief/pkg/useragent"
)

// FetchConfig configures the HTTP side of a collection run.
type FetchConfig struct {
	Timeout     time.Duration
	Fingerprint fingerprint.Profile
	UAPool      *useragent.Pool
	// Headers are sent with every request in addition to User-Agent.
	Headers map[string]string
	// Transport overrides the fingerprinted transport (tests).
	Transport http.RoundTripper
}

// Page is one fetched search result page.
type Page struct {
	URL         string
	StatusCode  int
	Header      http.Header
	Body        []byte
	Duration    time.Duration
	Blocked     bool
	BlockSource string
}

// PageFetcher retrieves a result page. A non-nil error means no usable
// response was received; HTTP status problems are reported on the Page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Fetcher performs GETs with browser-like headers over a single client, so
// cookies set by the first page are replayed on the following ones.
type Fetcher struct {
	config    FetchConfig
	client    *httpclient.Client
	detectors []bypass.Detector
}

func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = httpclient.DefaultTimeout
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	transport := cfg.Transport
	if transport == nil {
		var err error
		transport, err = fingerprint.Transport(cfg.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("failed to setup transport: %w", err)
		}
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		UseCookieJar: true,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{
		config:    cfg,
		client:    client,
		detectors: bypass.DefaultDetectors(),
	}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	for k, v := range f.config.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	page := &Page{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}
	metrics.ObserveFetch(page.Duration, len(body))

	page.Blocked, page.BlockSource = bypass.Analyze(bypass.Response{
		StatusCode: page.StatusCode,
		Header:     page.Header,
		Body:       page.Body,
	}, f.detectors)

	return page, nil
}

var _ PageFetcher = (*Fetcher)(nil)
