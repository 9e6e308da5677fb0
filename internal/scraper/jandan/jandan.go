// Package jandan produces the Jandan top-comments board. The board itself is
// HTML; the per-post "tucao" replies come from a JSON API.
package jandan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"weekly-chronicle/internal/config"
	"weekly-chronicle/internal/fetch"
	"weekly-chronicle/internal/model"
)

type Producer struct {
	baseURL string
	httpc   *fetch.Client
}

func New(cfg config.JandanConfig, httpc *fetch.Client) *Producer {
	return &Producer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   httpc,
	}
}

func (p *Producer) SourceID() string   { return "jandan" }
func (p *Producer) SourceName() string { return "煎蛋网" }

var bracketNumber = regexp.MustCompile(`\[?(\d+)\]?`)

func (p *Producer) Scrape(ctx context.Context) (*model.Batch, error) {
	body, err := p.httpc.Get(ctx, p.baseURL+"/top-comments", nil)
	if err != nil {
		return nil, fmt.Errorf("jandan: top comments page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jandan: parse page: %w", err)
	}

	now := time.Now().UTC()
	var records []model.Record
	doc.Find("ol.commentlist > li").Each(func(_ int, sel *goquery.Selection) {
		id := strings.TrimPrefix(sel.AttrOr("id", ""), "comment-")
		if id == "" {
			return
		}
		author := strings.TrimSpace(sel.Find(".author strong").First().Text())
		posted := parseRelativeTime(sel.Find(".author small").First().Text(), now)
		content := strings.TrimSpace(sel.Find(".text p").First().Text())
		oo := parseBracketCount(sel.Find(".jandan-vote .comment-like + span").First().Text())

		rec := model.Record{
			ID:      id,
			Title:   title(content),
			Content: content,
			Author:  author,
			Date:    posted,
			URL:     fmt.Sprintf("%s/t/%s", p.baseURL, id),
			Score:   oo,
		}
		rec.Comments = p.tucao(ctx, id)
		records = append(records, rec)
	})

	return &model.Batch{
		Meta: model.Meta{
			SourceID:   p.SourceID(),
			SourceName: p.SourceName(),
			Timestamp:  now,
			Version:    1,
			Icon:       p.SourceID() + ".webp",
		},
		Data: records,
	}, nil
}

type tucaoResponse struct {
	Hot  []tucaoItem `json:"hot_tucao"`
	Rest []tucaoItem `json:"tucao"`
}

type tucaoItem struct {
	ID       json.Number `json:"comment_ID"`
	Author   string      `json:"comment_author"`
	Content  string      `json:"comment_content"`
	Date     string      `json:"comment_date"`
	Positive json.Number `json:"vote_positive"`
}

// tucao fetches the replies for a post. Hot replies come first; ids seen in
// the hot list are not repeated from the full list.
func (p *Producer) tucao(ctx context.Context, postID string) []model.Comment {
	var resp tucaoResponse
	url := fmt.Sprintf("%s/api/tucao/list/%s", p.baseURL, postID)
	hdr := http.Header{"Accept": {"application/json"}}
	if err := p.httpc.GetJSON(ctx, url, hdr, &resp); err != nil {
		slog.Warn("jandan: tucao fetch failed", "post", postID, "error", err)
		return nil
	}

	seen := map[string]struct{}{}
	var out []model.Comment
	for _, t := range append(resp.Hot, resp.Rest...) {
		id := t.ID.String()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		votes, _ := strconv.Atoi(t.Positive.String())
		out = append(out, model.Comment{
			ID:      id,
			Author:  t.Author,
			Content: t.Content,
			Date:    parseTucaoDate(t.Date),
			Votes:   votes,
		})
	}
	return out
}

// parseRelativeTime resolves the board's "N分钟/小时/天" age labels against now.
// Unrecognized labels fall back to now.
func parseRelativeTime(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, unit := range []struct {
		suffix string
		d      time.Duration
	}{
		{"分钟", time.Minute},
		{"小时", time.Hour},
		{"天", 24 * time.Hour},
	} {
		if idx := strings.Index(s, unit.suffix); idx > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(s[:idx])); err == nil {
				return now.Add(-time.Duration(n) * unit.d)
			}
		}
	}
	return now
}

func parseTucaoDate(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(s))
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}

func parseBracketCount(s string) int {
	m := bracketNumber.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// title derives a listing title from the first line of a post, since the
// board has no separate titles.
func title(content string) string {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	r := []rune(strings.TrimSpace(line))
	if len(r) > 48 {
		r = r[:48]
	}
	return string(r)
}
