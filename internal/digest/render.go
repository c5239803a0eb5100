package digest

import (
	"fmt"
	"io"
	"text/template"
	"unicode/utf8"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/storage"
)

const (
	maxFeatured    = 5
	maxAdditional  = 5
	maxSummaryLen  = 200
	truncatedLen   = 197
	dateLayout     = "January 2, 2006"
	outputDateForm = "20060102"
)

type Article struct {
	Title     string
	Publisher string
	Summary   string
	Link      string
	// Separator draws a rule after the article.
	Separator bool
}

// Newsletter is everything the document template needs.
type Newsletter struct {
	Brand          config.NewsletterConfig
	Date           string
	Year           int
	Topic          string
	OneLineSummary string
	MainSummary    string
	Keywords       []string
	Featured       []Article
	Perspectives   string
	Additional     []Article
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var newsletterTmpl = template.Must(template.New("newsletter").Funcs(funcs).Parse(`
# {{.Brand.Name}}

![logo]({{.Brand.LogoURL}})

**{{.Date}} | {{.Topic}} special edition**

---

Hello, {{.Brand.Name}} subscribers!

Here are the key stories and analysis on today's top issue, **{{.Topic}}**.
The most important articles were selected and summarized with AI, so you can catch up on what matters even on a busy day.

---

## ⚡ Today in one line

**{{.OneLineSummary}}**

## 📋 Key summary

{{.MainSummary}}

## 📊 Keywords

{{range .Keywords}}- **{{.}}**
{{end}}
## 🔥 Top stories

{{range .Featured}}### {{.Title}}

**Source**: {{.Publisher}}

{{.Summary}}

[Read the original]({{.Link}})

{{if .Separator}}---

{{end}}{{end}}
## 🔍 Perspectives

{{.Perspectives}}


## 📰 More news

{{range $i, $a := .Additional}}{{inc $i}}. [{{$a.Title}}]({{$a.Link}}) - {{$a.Publisher}}

{{end}}
---

## 📱 Find us on social media

{{range .Brand.Social}}- [{{.Platform}}]({{.URL}})
{{end}}
## 📝 Manage your subscription

- [Change subscription settings]({{.Brand.SubscriptionURL}})
- [Past newsletters]({{.Brand.WebsiteURL}}/archives)
- [Leave feedback]({{.Brand.WebsiteURL}}/feedback)

This newsletter was generated automatically with AI assistance from Naver News search results.
We try to provide accurate news and a range of perspectives, but please check the original articles to verify any facts.

© {{.Year}} {{.Brand.Company}}. All rights reserved.
`))

func Render(w io.Writer, n Newsletter) error {
	if err := newsletterTmpl.Execute(w, n); err != nil {
		return fmt.Errorf("render newsletter: %w", err)
	}
	return nil
}

// selectFeatured prefers the analysis's recommendations that point at real
// rows. Without any, the first rows are featured with shortened summaries.
// The returned set holds the featured row indices.
func selectFeatured(records []storage.Record, recommended []Recommendation) ([]Article, map[int]bool) {
	used := make(map[int]bool)
	var featured []Article

	for _, rec := range recommended {
		idx := rec.Index - 1
		if idx < 0 || idx >= len(records) || used[idx] {
			continue
		}
		r := records[idx]
		used[idx] = true
		featured = append(featured, Article{
			Title:     r.Title,
			Publisher: r.Publisher,
			Summary:   rec.Summary,
			Link:      r.Link,
			Separator: true,
		})
		if len(featured) == maxFeatured {
			break
		}
	}
	if len(featured) > 0 {
		return featured, used
	}

	n := min(maxFeatured, len(records))
	for i := 0; i < n; i++ {
		r := records[i]
		used[i] = true
		featured = append(featured, Article{
			Title:     r.Title,
			Publisher: r.Publisher,
			Summary:   truncate(r.Summary),
			Link:      r.Link,
			Separator: i < n-1,
		})
	}
	return featured, used
}

func selectAdditional(records []storage.Record, featured map[int]bool) []Article {
	var out []Article
	for i, r := range records {
		if len(out) == maxAdditional {
			break
		}
		if featured[i] {
			continue
		}
		out = append(out, Article{Title: r.Title, Publisher: r.Publisher, Link: r.Link})
	}
	return out
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSummaryLen {
		return s
	}
	return string([]rune(s)[:truncatedLen]) + "..."
}

// Preview returns the first n runes of doc followed by an ellipsis.
func Preview(doc string, n int) string {
	if utf8.RuneCountInString(doc) <= n {
		return doc + "..."
	}
	return string([]rune(doc)[:n]) + "..."
}
