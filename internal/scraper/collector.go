package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/metrics"
	"github.com/FranksOps/newsbrief/internal/serp"
	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/FranksOps/newsbrief/pkg/ratelimit"
)

// StopReason records why a collection run ended.
type StopReason string

const (
	StopTargetReached StopReason = "target reached"
	StopExhausted     StopReason = "no more results"
	StopStatus        StopReason = "unexpected status"
	StopBlocked       StopReason = "blocked"
	StopFetchFailed   StopReason = "fetch failed"
	StopCanceled      StopReason = "canceled"
)

// FetchErrorKind classifies a failed page.
type FetchErrorKind string

const (
	KindTransport FetchErrorKind = "transport"
	KindStatus    FetchErrorKind = "status"
	KindBlocked   FetchErrorKind = "blocked"
	KindParse     FetchErrorKind = "parse"
	KindCanceled  FetchErrorKind = "canceled"
)

// FetchError ends a run. The records gathered before it are kept.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Source     string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("page request failed: status %d", e.StatusCode)
	case KindBlocked:
		return fmt.Sprintf("page blocked by %s (status %d)", e.Source, e.StatusCode)
	default:
		return fmt.Sprintf("page %s error: %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// PageOutcome counts what happened to the items of one scanned page.
type PageOutcome struct {
	Items      int
	Accepted   int
	Duplicates int
	Skipped    int
	Failed     int
}

// Run is the state of one keyword search. Records is in discovery order.
type Run struct {
	ID      string
	Keyword string
	Target  int
	From    time.Time
	To      time.Time
	Offset  int

	Records []storage.Record
	Seen    map[string]struct{}

	Pages            int
	Duplicates       int
	Skipped          int
	ExtractionErrors int
	StopReason       StopReason
	Err              error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Collector runs paginated searches for one keyword at a time. It is not
// safe for concurrent use; the cookie jar and pacing are per collector.
type Collector struct {
	search    config.SearchConfig
	provider  serp.Provider
	fetcher   PageFetcher
	pacer     ratelimit.Pacer
	selectors Selectors
	logger    *zap.Logger
	now       func() time.Time
}

func NewCollector(search config.SearchConfig, fetcher PageFetcher, pacer ratelimit.Pacer, logger *zap.Logger) *Collector {
	if pacer == nil {
		pacer = ratelimit.NewJittered(search.MinDelay, search.MaxDelay)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		search: search,
		provider: &serp.Naver{
			Endpoint:   search.Endpoint,
			Days:       search.Days,
			Sort:       search.Sort,
			Photo:      search.Photo,
			Field:      search.Field,
			OfficeType: search.OfficeType,
		},
		fetcher:   fetcher,
		pacer:     pacer,
		selectors: DefaultSelectors(),
		logger:    logger,
		now:       time.Now,
	}
}

// Collect returns at most the target number of records for keyword. Fetch
// failures end the run early and are only logged.
func (c *Collector) Collect(ctx context.Context, keyword string) []storage.Record {
	return c.Run(ctx, keyword).Records
}

func (c *Collector) Run(ctx context.Context, keyword string) *Run {
	now := c.now()
	from, to := serp.Window(now, c.search.Days)

	run := &Run{
		ID:        uuid.New().String(),
		Keyword:   keyword,
		Target:    c.search.TargetCount,
		From:      from,
		To:        to,
		Offset:    1,
		Seen:      make(map[string]struct{}),
		StartedAt: now,
	}

	logger := c.logger.With(zap.String("run_id", run.ID), zap.String("keyword", keyword))
	logger.Info("collection started",
		zap.String("from", from.Format(serp.DateLayout)),
		zap.String("to", to.Format(serp.DateLayout)),
		zap.Int("target", run.Target),
	)

	for len(run.Records) < run.Target {
		out, err := c.scanPage(ctx, run, logger)
		if reason, stop := nextStep(out, err); stop {
			run.StopReason = reason
			run.Err = err
			if err != nil {
				logger.Warn("collection stopped", zap.Int("offset", run.Offset), zap.Error(err))
			} else {
				logger.Info("no more news items", zap.Int("offset", run.Offset))
			}
			break
		}

		if err := c.pacer.Wait(ctx); err != nil {
			run.StopReason = StopCanceled
			run.Err = err
			break
		}
	}

	if run.StopReason == "" {
		run.StopReason = StopTargetReached
	}
	if len(run.Records) > run.Target {
		run.Records = run.Records[:run.Target]
	}
	run.FinishedAt = c.now()

	logger.Info("collection finished",
		zap.Int("records", len(run.Records)),
		zap.Int("pages", run.Pages),
		zap.String("stop_reason", string(run.StopReason)),
	)
	return run
}

// nextStep decides from the latest page alone whether the loop goes on.
func nextStep(out PageOutcome, err error) (StopReason, bool) {
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		switch fe.Kind {
		case KindStatus:
			return StopStatus, true
		case KindBlocked:
			return StopBlocked, true
		case KindCanceled:
			return StopCanceled, true
		default:
			return StopFetchFailed, true
		}
	case err != nil:
		return StopFetchFailed, true
	case out.Items == 0:
		return StopExhausted, true
	}
	return "", false
}

// scanPage fetches the page at run.Offset and appends its new records. The
// offset advances by the raw item count, accepted or not.
func (c *Collector) scanPage(ctx context.Context, run *Run, logger *zap.Logger) (PageOutcome, error) {
	var out PageOutcome

	pageURL, err := c.provider.PageURL(serp.Query{
		Keyword: run.Keyword,
		From:    run.From,
		To:      run.To,
		Start:   run.Offset,
	})
	if err != nil {
		metrics.RecordPage(string(KindParse))
		return out, &FetchError{Kind: KindParse, Err: err}
	}

	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		kind := KindTransport
		if ctx.Err() != nil {
			kind = KindCanceled
		}
		metrics.RecordPage(string(kind))
		return out, &FetchError{Kind: kind, URL: pageURL, Err: err}
	}

	if page.Blocked {
		metrics.RecordPage(string(KindBlocked))
		return out, &FetchError{Kind: KindBlocked, URL: pageURL, StatusCode: page.StatusCode, Source: page.BlockSource}
	}
	if page.StatusCode != 200 {
		metrics.RecordPage(string(KindStatus))
		return out, &FetchError{Kind: KindStatus, URL: pageURL, StatusCode: page.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		metrics.RecordPage(string(KindParse))
		return out, &FetchError{Kind: KindParse, URL: pageURL, StatusCode: page.StatusCode, Err: err}
	}

	items := doc.Find(c.selectors.Item)
	out.Items = items.Length()
	if out.Items == 0 {
		metrics.RecordPage("empty")
		return out, nil
	}

	items.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(run.Records) >= run.Target {
			return false
		}

		rec, err := extractItem(sel, c.selectors)
		switch {
		case errors.Is(err, ErrMissingTitle):
			out.Skipped++
			logger.Debug("item without title skipped", zap.Int("offset", run.Offset))
			return true
		case err != nil:
			out.Failed++
			logger.Warn("item extraction failed", zap.Int("offset", run.Offset), zap.Error(err))
			return true
		}

		if _, dup := run.Seen[rec.Link]; dup {
			out.Duplicates++
			return true
		}
		run.Seen[rec.Link] = struct{}{}
		run.Records = append(run.Records, rec)
		out.Accepted++

		if len(run.Records)%10 == 0 {
			logger.Info("collection progress", zap.Int("records", len(run.Records)))
		}
		return true
	})

	run.Offset += out.Items
	run.Pages++
	run.Duplicates += out.Duplicates
	run.Skipped += out.Skipped
	run.ExtractionErrors += out.Failed

	metrics.RecordPage("ok")
	metrics.RecordItems("accepted", out.Accepted)
	metrics.RecordItems("duplicate", out.Duplicates)
	metrics.RecordItems("skipped", out.Skipped)
	metrics.RecordItems("failed", out.Failed)

	logger.Debug("page scanned",
		zap.String("url", pageURL),
		zap.Int("items", out.Items),
		zap.Int("accepted", out.Accepted),
		zap.Int("next_offset", run.Offset),
	)
	return out, nil
}
