// Package hackernews produces Ask HN posts with their top-level comments via
// the Firebase HN API. Docs: https://github.com/HackerNews/API
package hackernews

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"weekly-chronicle/internal/config"
	"weekly-chronicle/internal/fetch"
	"weekly-chronicle/internal/model"
)

const siteURL = "https://news.ycombinator.com"

type Producer struct {
	baseAPI      string
	httpc        *fetch.Client
	limit        int
	commentLimit int
}

func New(cfg config.HNConfig, httpc *fetch.Client) *Producer {
	return &Producer{
		baseAPI:      strings.TrimRight(cfg.BaseAPI, "/"),
		httpc:        httpc,
		limit:        cfg.Limit,
		commentLimit: cfg.CommentLimit,
	}
}

func (p *Producer) SourceID() string   { return "hackernews" }
func (p *Producer) SourceName() string { return "Hacker News" }

// hnItem mirrors the subset of HN item fields we care about.
type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"` // story, comment, job, poll
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Time        int64  `json:"time"`
	Kids        []int  `json:"kids"`
	Descendants int    `json:"descendants"`
	Score       int    `json:"score"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
}

func (p *Producer) Scrape(ctx context.Context) (*model.Batch, error) {
	var ids []int
	if err := p.httpc.GetJSON(ctx, p.baseAPI+"/askstories.json", nil, &ids); err != nil {
		return nil, fmt.Errorf("hackernews: ask stories: %w", err)
	}
	if p.limit > 0 && len(ids) > p.limit {
		ids = ids[:p.limit]
	}

	records := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		it, err := p.item(ctx, id)
		if err != nil {
			slog.Warn("hackernews: skip story", "id", id, "error", err)
			continue
		}
		if it.Dead || it.Deleted {
			continue
		}
		rec := model.Record{
			ID:      strconv.Itoa(it.ID),
			Title:   it.Title,
			Content: it.Text,
			Author:  it.By,
			Date:    time.Unix(it.Time, 0).UTC(),
			URL:     fmt.Sprintf("%s/item?id=%d", siteURL, it.ID),
			Score:   it.Score,
		}
		rec.Comments = p.comments(ctx, it.Kids)
		records = append(records, rec)
	}

	return &model.Batch{
		Meta: model.Meta{
			SourceID:   p.SourceID(),
			SourceName: p.SourceName(),
			Timestamp:  time.Now().UTC(),
			Version:    1,
			Icon:       p.SourceID() + ".webp",
		},
		Data: records,
	}, nil
}

// comments resolves a story's top-level kids, skipping ones that fail.
func (p *Producer) comments(ctx context.Context, kids []int) []model.Comment {
	if p.commentLimit > 0 && len(kids) > p.commentLimit {
		kids = kids[:p.commentLimit]
	}
	out := make([]model.Comment, 0, len(kids))
	for _, id := range kids {
		it, err := p.item(ctx, id)
		if err != nil {
			slog.Warn("hackernews: skip comment", "id", id, "error", err)
			continue
		}
		if it.Type != "comment" || it.Dead || it.Deleted {
			continue
		}
		out = append(out, model.Comment{
			ID:      strconv.Itoa(it.ID),
			Author:  it.By,
			Content: it.Text,
			Date:    time.Unix(it.Time, 0).UTC(),
		})
	}
	return out
}

func (p *Producer) item(ctx context.Context, id int) (hnItem, error) {
	var it hnItem
	err := p.httpc.GetJSON(ctx, fmt.Sprintf("%s/item/%d.json", p.baseAPI, id), nil, &it)
	return it, err
}
