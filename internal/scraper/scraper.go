// Package scraper defines the producer contract and the registry of known
// sources. The store never sees how a producer fetches its data; it only
// consumes the batch.
package scraper

import (
	"context"
	"fmt"
	"sort"

	"weekly-chronicle/internal/config"
	"weekly-chronicle/internal/fetch"
	"weekly-chronicle/internal/model"
	"weekly-chronicle/internal/scraper/hackernews"
	"weekly-chronicle/internal/scraper/jandan"
	"weekly-chronicle/internal/scraper/reddit"
)

// Producer yields one source's batch per run. A failed run returns an error
// and no batch; existing buckets are left untouched by the caller.
type Producer interface {
	SourceID() string
	SourceName() string
	Scrape(ctx context.Context) (*model.Batch, error)
}

// Factory builds a producer from configuration and the shared fetch client.
type Factory func(cfg config.Config, httpc *fetch.Client) Producer

// registry is the explicit table of available sources. Adding a source means
// adding a line here, nothing in the core changes.
var registry = map[string]Factory{
	"hackernews": func(cfg config.Config, httpc *fetch.Client) Producer {
		return hackernews.New(cfg.Sources.HN, httpc)
	},
	"jandan": func(cfg config.Config, httpc *fetch.Client) Producer {
		return jandan.New(cfg.Sources.Jandan, httpc)
	},
	"reddit": func(cfg config.Config, httpc *fetch.Client) Producer {
		return reddit.New(cfg.Sources.Reddit, httpc)
	},
}

// Available lists the registered source ids, sorted.
func Available() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// New builds the producer for a source id.
func New(sourceID string, cfg config.Config, httpc *fetch.Client) (Producer, error) {
	f, ok := registry[sourceID]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceID)
	}
	return f(cfg, httpc), nil
}
