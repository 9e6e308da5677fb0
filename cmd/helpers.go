package cmd

import (
	"fmt"
	"time"

	"weekly-chronicle/internal/config"
	"weekly-chronicle/internal/fetch"
	"weekly-chronicle/internal/redisclient"
	"weekly-chronicle/internal/store"
	"weekly-chronicle/internal/week"
)

// newStore builds the weekly bucket store from configuration.
func newStore(cfg config.Config) (*store.Store, error) {
	day, err := week.ParseWeekday(cfg.Store.WeekStartWeekday)
	if err != nil {
		return nil, err
	}
	return store.New(store.Config{
		DataRoot:    cfg.Store.DataRoot,
		ArchiveRoot: cfg.Store.ArchiveRoot,
		Weeks:       week.NewIndexer(day),
	}), nil
}

// newFetchClient builds the shared HTTP client with the configured cache
// backend.
func newFetchClient(cfg config.Config) (*fetch.Client, error) {
	timeout, err := time.ParseDuration(cfg.Fetch.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch.timeout: %w", err)
	}
	interval, err := time.ParseDuration(cfg.Fetch.MinHostInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch.min_host_interval: %w", err)
	}
	ttl, err := time.ParseDuration(cfg.Fetch.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch.cache.ttl: %w", err)
	}

	var cache fetch.Cache
	switch cfg.Fetch.Cache.Backend {
	case "file":
		cache = fetch.NewFileCache(cfg.Fetch.Cache.Dir)
	case "redis":
		cache = fetch.NewRedisCache(redisclient.New(cfg.Redis))
	case "none":
		cache = nil
	default:
		return nil, fmt.Errorf("unknown fetch.cache.backend %q", cfg.Fetch.Cache.Backend)
	}

	return fetch.New(fetch.Options{
		Timeout:         timeout,
		MinHostInterval: interval,
		MaxRetries:      cfg.Fetch.MaxRetries,
		Cache:           cache,
		CacheTTL:        ttl,
	}), nil
}
