package digest

import (
	"encoding/json"
	"fmt"
	"regexp"
)

type Recommendation struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Analysis is the structured reply requested from the generation service.
type Analysis struct {
	MainSummary    string           `json:"main_summary"`
	OneLineSummary string           `json:"one_line_summary"`
	Keywords       []string         `json:"keywords"`
	Recommended    []Recommendation `json:"recommended_articles"`
	Perspectives   string           `json:"perspectives"`
}

type Kind int

const (
	KindParsed Kind = iota
	KindFallback
)

func (k Kind) String() string {
	if k == KindParsed {
		return "parsed"
	}
	return "fallback"
}

// Result is either a parsed analysis or the fixed fallback. Analysis is
// always fully populated, so rendering never checks for missing fields.
type Result struct {
	Kind     Kind
	Analysis Analysis
	// Reason says why a fallback was used. Empty for parsed results.
	Reason string
}

const noSummary = "No summary available."

// jsonBlock is greedy: it spans from the first '{' to the last '}'.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

func Extract(raw, topic string) Result {
	block := jsonBlock.FindString(raw)
	if block == "" {
		return Fallback(topic, "no JSON object in response")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(block), &a); err != nil {
		return Fallback(topic, fmt.Sprintf("parse response: %v", err))
	}

	return Result{Kind: KindParsed, Analysis: normalize(a, topic)}
}

// Fallback is the same for every cause; only reason differs.
func Fallback(topic, reason string) Result {
	return Result{
		Kind: KindFallback,
		Analysis: Analysis{
			MainSummary:    fmt.Sprintf("An automated analysis of today's news about %s is not available.", topic),
			OneLineSummary: oneLiner(topic),
			Keywords:       defaultKeywords(topic),
			Recommended:    []Recommendation{},
			Perspectives:   "Multiple perspectives exist on this issue.",
		},
		Reason: reason,
	}
}

func normalize(a Analysis, topic string) Analysis {
	if a.MainSummary == "" {
		a.MainSummary = noSummary
	}
	if a.OneLineSummary == "" {
		a.OneLineSummary = oneLiner(topic)
	}
	if len(a.Keywords) == 0 {
		a.Keywords = defaultKeywords(topic)
	}
	if a.Recommended == nil {
		a.Recommended = []Recommendation{}
	}
	for i := range a.Recommended {
		if a.Recommended[i].Summary == "" {
			a.Recommended[i].Summary = noSummary
		}
	}
	if a.Perspectives == "" {
		a.Perspectives = "No perspective information available."
	}
	return a
}

func oneLiner(topic string) string {
	return fmt.Sprintf("Top news about %s.", topic)
}

func defaultKeywords(topic string) []string {
	return []string{topic, "news", "issue", "analysis", "summary"}
}
