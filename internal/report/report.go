package report

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/scraper"
)

// Summary describes one finished collection run.
type Summary struct {
	RunID            string
	Keyword          string
	From             time.Time
	To               time.Time
	Records          int
	Pages            int
	Duplicates       int
	Skipped          int
	ExtractionErrors int
	FinalOffset      int
	StopReason       string
	Error            string
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	OutputFile       string
}

func GenerateSummary(run *scraper.Run, outputFile string) Summary {
	if run == nil {
		return Summary{}
	}

	s := Summary{
		RunID:            run.ID,
		Keyword:          run.Keyword,
		From:             run.From,
		To:               run.To,
		Records:          len(run.Records),
		Pages:            run.Pages,
		Duplicates:       run.Duplicates,
		Skipped:          run.Skipped,
		ExtractionErrors: run.ExtractionErrors,
		FinalOffset:      run.Offset,
		StopReason:       string(run.StopReason),
		StartTime:        run.StartedAt,
		EndTime:          run.FinishedAt,
		Duration:         run.FinishedAt.Sub(run.StartedAt),
		OutputFile:       outputFile,
	}
	if run.Err != nil {
		s.Error = run.Err.Error()
	}
	return s
}

var bannerTmpl = template.Must(template.New("banner").Parse(`==================================================
Naver News Collector
==================================================
Settings:
- Period: {{.Days}} day(s)
- Sort: relevance
- Publishers: primary desktop publishers
- Max articles: {{.TargetCount}}
==================================================
`))

// WriteBanner prints the fixed search settings before a run.
func WriteBanner(w io.Writer, search config.SearchConfig) error {
	if err := bannerTmpl.Execute(w, search); err != nil {
		return fmt.Errorf("banner: %w", err)
	}
	return nil
}

var textTmpl = template.Must(template.New("textReport").Parse(`Collection Summary
------------------
Run:           {{.RunID}}
Keyword:       {{.Keyword}}
Window:        {{.From.Format "2006-01-02"}} - {{.To.Format "2006-01-02"}}
Duration:      {{.Duration}}
Pages:         {{.Pages}}
Articles:      {{.Records}}
Duplicates:    {{.Duplicates}}
No title:      {{.Skipped}}
Item errors:   {{.ExtractionErrors}}
Next offset:   {{.FinalOffset}}
Stopped:       {{.StopReason}}{{if .Error}} ({{.Error}}){{end}}
{{- if .OutputFile}}
Saved to:      {{.OutputFile}}
{{- else}}
Saved to:      nothing to save
{{- end}}
`))

// WriteText writes a human-readable run summary.
func WriteText(w io.Writer, summary Summary) error {
	if err := textTmpl.Execute(w, summary); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return nil
}
