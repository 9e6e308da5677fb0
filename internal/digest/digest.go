// Package digest renders a week's bucket into a markdown digest with YAML
// frontmatter, optionally annotated with AI summaries.
package digest

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"weekly-chronicle/internal/ai"
	"weekly-chronicle/internal/model"
	"weekly-chronicle/internal/week"
)

// Item is one digest entry.
type Item struct {
	Title        string
	URL          string
	Author       string
	Summary      string
	Score        int
	CommentCount int
}

// Data feeds the digest template.
type Data struct {
	Title      string
	SourceID   string
	SourceName string
	WeekStart  string
	Generated  string
	Items      []Item
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(digestTpl))

type frontmatter struct {
	Title     string `yaml:"title"`
	Source    string `yaml:"source"`
	Week      string `yaml:"week"`
	Generated string `yaml:"generated"`
	Items     int    `yaml:"items"`
}

// Render produces the full markdown document for d.
func Render(d Data) (string, error) {
	fm, err := yaml.Marshal(frontmatter{
		Title:     d.Title,
		Source:    d.SourceID,
		Week:      d.WeekStart,
		Generated: d.Generated,
		Items:     len(d.Items),
	})
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := compiled.Execute(&body, d); err != nil {
		return "", err
	}
	return "---\n" + string(fm) + "---\n\n" + body.String(), nil
}

// Build selects the top records of a bucket by score and renders them. When a
// summarizer is given, each item gets a short description; summary failures
// degrade to no summary rather than failing the digest.
func Build(ctx context.Context, b *model.Bucket, wk time.Time, topN int, s ai.Summarizer) (string, error) {
	records := append([]model.Record(nil), b.Data...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	if topN > 0 && len(records) > topN {
		records = records[:topN]
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		it := Item{
			Title:        rec.Title,
			URL:          rec.URL,
			Author:       rec.Author,
			Score:        rec.Score,
			CommentCount: len(rec.Comments),
		}
		if s != nil {
			summary, err := s.SummarizeItem(ctx, rec.Title, rec.Content)
			if err != nil {
				slog.Warn("digest: summarize failed", "record", rec.ID, "error", err)
			} else {
				it.Summary = summary
			}
		}
		items = append(items, it)
	}

	weekKey := week.FormatDate(wk)
	return Render(Data{
		Title:      fmt.Sprintf("%s weekly digest %s", b.Meta.SourceName, weekKey),
		SourceID:   b.Meta.SourceID,
		SourceName: b.Meta.SourceName,
		WeekStart:  weekKey,
		Generated:  time.Now().UTC().Format(time.RFC3339),
		Items:      items,
	})
}
