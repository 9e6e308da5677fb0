// Package reddit produces a subreddit's weekly top posts with their top-level
// comments via the public JSON endpoints.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"weekly-chronicle/internal/config"
	"weekly-chronicle/internal/fetch"
	"weekly-chronicle/internal/model"
)

type Producer struct {
	baseURL   string
	subreddit string
	limit     int
	httpc     *fetch.Client
}

func New(cfg config.RedditConfig, httpc *fetch.Client) *Producer {
	return &Producer{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		subreddit: cfg.Subreddit,
		limit:     cfg.Limit,
		httpc:     httpc,
	}
}

func (p *Producer) SourceID() string   { return "reddit" }
func (p *Producer) SourceName() string { return "Reddit r/" + p.subreddit }

// thing is reddit's generic envelope; kind t1 is a comment, t3 a post.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

type comment struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
	Author     string  `json:"author"`
	Score      int     `json:"score"`
}

func jsonHeader() http.Header {
	return http.Header{"Accept": {"application/json"}}
}

func (p *Producer) Scrape(ctx context.Context) (*model.Batch, error) {
	url := fmt.Sprintf("%s/r/%s/top/.json?t=week&limit=%d", p.baseURL, p.subreddit, p.limit)
	var top listing
	if err := p.httpc.GetJSON(ctx, url, jsonHeader(), &top); err != nil {
		return nil, fmt.Errorf("reddit: top listing: %w", err)
	}

	records := make([]model.Record, 0, len(top.Data.Children))
	for _, child := range top.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var po post
		if err := json.Unmarshal(child.Data, &po); err != nil {
			slog.Warn("reddit: skip malformed post", "error", err)
			continue
		}
		rec := model.Record{
			ID:      po.ID,
			Title:   po.Title,
			Content: po.Selftext,
			Author:  po.Author,
			Date:    time.Unix(int64(po.CreatedUTC), 0).UTC(),
			URL:     p.baseURL + po.Permalink,
			Score:   po.Score,
		}
		rec.Comments = p.comments(ctx, po.Permalink)
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

// comments fetches a post's comment page. The endpoint returns a two-element
// array: the post listing, then the comment listing.
func (p *Producer) comments(ctx context.Context, permalink string) []model.Comment {
	var pages []listing
	url := strings.TrimSuffix(p.baseURL+permalink, "/") + ".json"
	if err := p.httpc.GetJSON(ctx, url, jsonHeader(), &pages); err != nil {
		slog.Warn("reddit: comments fetch failed", "permalink", permalink, "error", err)
		return nil
	}
	if len(pages) < 2 {
		return nil
	}
	var out []model.Comment
	for _, child := range pages[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var co comment
		if err := json.Unmarshal(child.Data, &co); err != nil {
			continue
		}
		out = append(out, model.Comment{
			ID:      co.ID,
			Author:  co.Author,
			Content: co.Body,
			Date:    time.Unix(int64(co.CreatedUTC), 0).UTC(),
			Votes:   co.Score,
		})
	}
	return out
}
