package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Parsed(t *testing.T) {
	raw := "Sure, here is the analysis:\n```json\n" + `{
		"main_summary": "The court ruled.",
		"one_line_summary": "Court rules today.",
		"keywords": ["court", "ruling"],
		"recommended_articles": [{"index": 2, "title": "t", "summary": "s"}],
		"perspectives": "Opinions differ."
	}` + "\n```"

	res := Extract(raw, "election")
	require.Equal(t, KindParsed, res.Kind)
	assert.Empty(t, res.Reason)
	assert.Equal(t, "The court ruled.", res.Analysis.MainSummary)
	assert.Equal(t, "Court rules today.", res.Analysis.OneLineSummary)
	assert.Equal(t, []string{"court", "ruling"}, res.Analysis.Keywords)
	assert.Equal(t, []Recommendation{{Index: 2, Title: "t", Summary: "s"}}, res.Analysis.Recommended)
	assert.Equal(t, "Opinions differ.", res.Analysis.Perspectives)
}

func TestExtract_PartialKeysNormalized(t *testing.T) {
	res := Extract(`{"main_summary": "only this", "recommended_articles": [{"index": 1}]}`, "economy")

	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "only this", res.Analysis.MainSummary)
	assert.Equal(t, "Top news about economy.", res.Analysis.OneLineSummary)
	assert.Equal(t, []string{"economy", "news", "issue", "analysis", "summary"}, res.Analysis.Keywords)
	assert.Equal(t, noSummary, res.Analysis.Recommended[0].Summary)
	assert.NotEmpty(t, res.Analysis.Perspectives)
}

func TestExtract_FallbackIsIdenticalForEveryCause(t *testing.T) {
	noBlock := Extract("I cannot help with that.", "election")
	badJSON := Extract(`{"main_summary": "unterminated`+"}", "election")
	greedy := Extract(`{"a": 1} and then {"b": 2}`, "election")
	service := Fallback("election", "generation: timeout")

	for _, res := range []Result{noBlock, badJSON, greedy, service} {
		assert.Equal(t, KindFallback, res.Kind)
		assert.NotEmpty(t, res.Reason)
		assert.Equal(t, service.Analysis, res.Analysis)
	}

	assert.NotEqual(t, noBlock.Reason, badJSON.Reason)
	assert.Equal(t, "Top news about election.", service.Analysis.OneLineSummary)
	assert.Contains(t, service.Analysis.MainSummary, "election")
	assert.Empty(t, service.Analysis.Recommended)
	assert.Equal(t, []string{"election", "news", "issue", "analysis", "summary"}, service.Analysis.Keywords)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "parsed", KindParsed.String())
	assert.Equal(t, "fallback", KindFallback.String())
}
