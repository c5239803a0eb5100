package digest

import (
	"fmt"
	"strings"

	"github.com/FranksOps/newsbrief/internal/storage"
)

const SystemPrompt = "You are a news analysis expert. Analyze the news articles, summarize the key points and recommend the most important articles. Always answer in the JSON format you are given."

const instructions = `Analyze the news articles above and do the following:

1. Main summary: summarize the core topic and key points of all the news in 3-4 sentences.
2. Keywords: extract 5-7 important keywords that appear frequently in the news.
3. Recommended articles: choose the 5 most important articles and summarize each in 2-3 sentences.
4. Perspectives: if there are differing views or opinions on the issue, outline them briefly.
5. One-line summary: summarize the whole issue in one sentence.

Write in the language of the articles. Respond in JSON:
{
    "main_summary": "overall summary...",
    "one_line_summary": "one-line summary...",
    "keywords": ["keyword1", "keyword2", ...],
    "recommended_articles": [
        {"index": 1, "title": "article title", "summary": "article summary..."},
        ...
    ],
    "perspectives": "differing perspectives..."
}

Follow the JSON format above exactly and include every field.`

// BuildPrompt lists the records with 1-based indices, which the model
// refers back to in recommended_articles.
func BuildPrompt(topic string, records []storage.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are today's top news articles about '%s':\n\n", topic)
	for i, r := range records {
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   Publisher: %s\n", r.Publisher)
		fmt.Fprintf(&b, "   Summary: %s\n\n", r.Summary)
	}
	b.WriteString(instructions)
	return b.String()
}
