package digest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/llm/mock"
	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/FranksOps/newsbrief/internal/storage/tables"
)

var fixedNow = time.Date(2025, 4, 3, 22, 30, 0, 0, time.UTC)

func writeTable(t *testing.T, name string, records []storage.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	b, err := tables.Open(path)
	require.NoError(t, err)
	require.NoError(t, storage.SaveAll(context.Background(), b, records))
	require.NoError(t, b.Close())
	return path
}

func testBuilder(client *mock.Client) *Builder {
	b := NewBuilder(config.DefaultNewsletter(), client, zap.NewNop())
	b.now = func() time.Time { return fixedNow }
	return b
}

func TestBuild_ParsedAnalysis(t *testing.T) {
	path := writeTable(t, "navernews_election_20250403_222536.xlsx", rows(8))
	client := mock.New().WithResponse(`{
		"main_summary": "Candidates met today.",
		"one_line_summary": "Debate night.",
		"keywords": ["debate", "polls"],
		"recommended_articles": [{"index": 2, "title": "x", "summary": "second is key"}],
		"perspectives": "Parties disagree."
	}`)

	doc, err := testBuilder(client).Build(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, client.CallCount)
	assert.Equal(t, SystemPrompt, client.LastSystem)
	assert.Contains(t, client.LastPrompt, "about 'election'")
	assert.Contains(t, client.LastPrompt, "1. Title: headline 1\n   Publisher: press 1\n   Summary: summary 1\n")
	assert.Contains(t, client.LastPrompt, "8. Title: headline 8")

	assert.Contains(t, doc, "# Daily News Briefing")
	assert.Contains(t, doc, "**April 3, 2025 | election special edition**")
	assert.Contains(t, doc, "**Debate night.**")
	assert.Contains(t, doc, "Candidates met today.")
	assert.Contains(t, doc, "- **debate**\n- **polls**\n")
	assert.Contains(t, doc, "### headline 2\n\n**Source**: press 2\n\nsecond is key\n\n[Read the original](https://news.example/2)\n\n---")
	assert.Contains(t, doc, "Parties disagree.")
	assert.Contains(t, doc, "1. [headline 1](https://news.example/1) - press 1")
	assert.Contains(t, doc, "2. [headline 3](https://news.example/3) - press 3")
	assert.NotContains(t, doc, "[headline 2](")
	assert.Contains(t, doc, "© 2025 AI News Service. All rights reserved.")

	tw := strings.Index(doc, "- [Twitter]")
	fb := strings.Index(doc, "- [Facebook]")
	li := strings.Index(doc, "- [LinkedIn]")
	assert.True(t, tw >= 0 && tw < fb && fb < li, "social links keep their order")
}

func TestBuild_GenerationErrorUsesFallback(t *testing.T) {
	path := writeTable(t, "navernews_election_20250403_222536.xlsx", rows(3))
	client := mock.New().WithError(errors.New("service unavailable"))

	doc, err := testBuilder(client).Build(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, doc)

	assert.Contains(t, doc, "**Top news about election.**")
	// Positional featuring: all three rows, no additional list entries.
	assert.Contains(t, doc, "### headline 1")
	assert.Contains(t, doc, "### headline 3")
	assert.NotContains(t, doc, "1. [headline")
}

func TestBuild_NoBlockMatchesParseFailure(t *testing.T) {
	path := writeTable(t, "navernews_economy_20250403_222536.xlsx", rows(6))

	noBlock, err := testBuilder(mock.New().WithResponse("Sorry, no JSON today.")).Build(context.Background(), path)
	require.NoError(t, err)
	badJSON, err := testBuilder(mock.New().WithResponse(`{"main_summary": }`)).Build(context.Background(), path)
	require.NoError(t, err)
	failed, err := testBuilder(mock.New().WithError(errors.New("boom"))).Build(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, noBlock, badJSON)
	assert.Equal(t, noBlock, failed)
	assert.Contains(t, noBlock, "Top news about economy.")
}

func TestBuild_MissingTable(t *testing.T) {
	client := mock.New()
	_, err := testBuilder(client).Build(context.Background(), filepath.Join(t.TempDir(), "navernews_x_20250101_000000.xlsx"))
	require.Error(t, err)
	assert.Equal(t, 0, client.CallCount)
}

func TestBuild_MissingCellsReadAsNotAvailable(t *testing.T) {
	path := writeTable(t, "navernews_election_20250403_222536.csv", []storage.Record{
		{Title: "only title", Link: "https://news.example/1"},
	})
	client := mock.New().WithResponse("no json")

	doc, err := testBuilder(client).Build(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, client.LastPrompt, "Publisher: "+storage.NotAvailable)
	assert.Contains(t, doc, "**Source**: "+storage.NotAvailable)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "election", Topic("/data/navernews_election_20250403_222536.xlsx", "issue"))
	assert.Equal(t, "탄핵", Topic("navernews_탄핵_20250403_222536.csv", "issue"))
	assert.Equal(t, "election", Topic("navernews_election.xlsx", "issue"))
	assert.Equal(t, "issue", Topic("news.xlsx", "issue"))
	assert.Equal(t, "issue", Topic("navernews__20250403.xlsx", "issue"))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "newsletter_election_20250403.md", OutputName("election", fixedNow))
}
