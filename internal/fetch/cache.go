package fetch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw response bodies keyed by request. Both backends treat an
// expired entry the same as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// cacheKey derives a stable key from the request method and URL.
func cacheKey(method, url string) string {
	sum := md5.Sum([]byte(method + ":" + url))
	return hex.EncodeToString(sum[:])
}

// FileCache keeps one JSON envelope per entry under a directory. Expiry is
// recorded in the envelope since the filesystem has no native TTL.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

type fileCacheEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Body      []byte    `json:"body"`
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e fileCacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		// An unreadable cache entry is a miss, not a failure.
		return nil, false, nil
	}
	if time.Now().After(e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Body, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(fileCacheEntry{ExpiresAt: time.Now().Add(ttl), Body: body})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0o644)
}

// RedisCache stores entries in redis and lets the server expire them.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func redisKey(key string) string {
	return "fetch:cache:" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, redisKey(key), body, ttl).Err()
}
