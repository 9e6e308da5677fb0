package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// StoreConfig holds the weekly bucket store layout and retention policy.
type StoreConfig struct {
	DataRoot         string `mapstructure:"data_root"`
	ArchiveRoot      string `mapstructure:"archive_root"` // default: <data_root>/archive
	IconsRoot        string `mapstructure:"icons_root"`
	RetentionWeeks   int    `mapstructure:"retention_weeks"`
	WeekStartWeekday string `mapstructure:"week_start_weekday"` // monday..sunday
}

// CacheConfig selects the fetch cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // file, redis, or none
	Dir     string `mapstructure:"dir"`     // file backend only
	TTL     string `mapstructure:"ttl"`     // duration string, e.g. "2h"
}

// FetchConfig controls the shared HTTP fetch layer.
type FetchConfig struct {
	Timeout         string      `mapstructure:"timeout"`           // e.g. "10s"
	MinHostInterval string      `mapstructure:"min_host_interval"` // per-host request spacing
	MaxRetries      int         `mapstructure:"max_retries"`
	Cache           CacheConfig `mapstructure:"cache"`
}

// RedisConfig holds redis connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HNConfig controls the Hacker News producer.
type HNConfig struct {
	BaseAPI      string `mapstructure:"base_api"`
	Limit        int    `mapstructure:"limit"`
	CommentLimit int    `mapstructure:"comment_limit"`
}

// JandanConfig controls the Jandan producer.
type JandanConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RedditConfig controls the Reddit producer.
type RedditConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Subreddit string `mapstructure:"subreddit"`
	Limit     int    `mapstructure:"limit"`
}

// DataSources groups available producers.
type DataSources struct {
	HN     HNConfig     `mapstructure:"hackernews"`
	Jandan JandanConfig `mapstructure:"jandan"`
	Reddit RedditConfig `mapstructure:"reddit"`
}

// OpenAIConfig enables AI summaries in digests when an API key is set.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// DigestConfig controls weekly digest output.
type DigestConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	TopN      int    `mapstructure:"top_n"`
}

// Config is the top-level configuration structure.
type Config struct {
	App     AppConfig    `mapstructure:"app"`
	Store   StoreConfig  `mapstructure:"store"`
	Fetch   FetchConfig  `mapstructure:"fetch"`
	Redis   RedisConfig  `mapstructure:"redis"`
	Sources DataSources  `mapstructure:"sources"`
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Digest  DigestConfig `mapstructure:"digest"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Store.DataRoot == "" {
		c.Store.DataRoot = "./data"
	}
	if c.Store.IconsRoot == "" {
		c.Store.IconsRoot = "./icons"
	}
	if c.Store.RetentionWeeks == 0 {
		c.Store.RetentionWeeks = 12
	}
	if c.Store.WeekStartWeekday == "" {
		c.Store.WeekStartWeekday = "monday"
	}
	if c.Fetch.Timeout == "" {
		c.Fetch.Timeout = "10s"
	}
	if c.Fetch.MinHostInterval == "" {
		c.Fetch.MinHostInterval = "1s"
	}
	if c.Fetch.MaxRetries == 0 {
		c.Fetch.MaxRetries = 3
	}
	if c.Fetch.Cache.Backend == "" {
		c.Fetch.Cache.Backend = "file"
	}
	if c.Fetch.Cache.Dir == "" {
		c.Fetch.Cache.Dir = ".cache"
	}
	if c.Fetch.Cache.TTL == "" {
		c.Fetch.Cache.TTL = "2h"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Sources.HN.BaseAPI == "" {
		c.Sources.HN.BaseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Sources.HN.Limit == 0 {
		c.Sources.HN.Limit = 15
	}
	if c.Sources.HN.CommentLimit == 0 {
		c.Sources.HN.CommentLimit = 20
	}
	if c.Sources.Jandan.BaseURL == "" {
		c.Sources.Jandan.BaseURL = "https://jandan.net"
	}
	if c.Sources.Reddit.BaseURL == "" {
		c.Sources.Reddit.BaseURL = "https://www.reddit.com"
	}
	if c.Sources.Reddit.Subreddit == "" {
		c.Sources.Reddit.Subreddit = "confessions"
	}
	if c.Sources.Reddit.Limit == 0 {
		c.Sources.Reddit.Limit = 10
	}
	if c.Digest.OutputDir == "" {
		c.Digest.OutputDir = "./out"
	}
	if c.Digest.TopN == 0 {
		c.Digest.TopN = 10
	}
}
