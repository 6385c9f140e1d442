package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/stmfeed/pkg/config"
)

// RunSummary describes the outcome of one feed within one run.
type RunSummary struct {
	Feed      config.FeedKind `json:"feed"`
	StartedAt time.Time       `json:"startedat"`
	Duration  time.Duration   `json:"duration"`
	Records   int             `json:"records"`
	Error     string          `json:"error,omitempty"`
}

type StatusRecorder interface {
	Record(ctx context.Context, summary RunSummary) error
}

// CacheStatusRecorder keeps the latest summary of every feed in a cache.
type CacheStatusRecorder struct {
	cache *cache.Cache[string]
}

func NewCacheStatusRecorder(cacheStore store.StoreInterface) *CacheStatusRecorder {
	return &CacheStatusRecorder{cache: cache.New[string](cacheStore)}
}

// NewRedisStatusRecorder stores summaries in Redis, expiring after ttl.
func NewRedisStatusRecorder(client *redis.Client, ttl time.Duration) *CacheStatusRecorder {
	return NewCacheStatusRecorder(redisstore.NewRedis(client, store.WithExpiration(ttl)))
}

func statusKey(feed config.FeedKind) string {
	return fmt.Sprintf("stmfeed/lastrun/%s", feed)
}

func (r *CacheStatusRecorder) Record(ctx context.Context, summary RunSummary) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return r.cache.Set(ctx, statusKey(summary.Feed), string(encoded))
}

// Last returns the most recent summary recorded for feed.
func (r *CacheStatusRecorder) Last(ctx context.Context, feed config.FeedKind) (RunSummary, error) {
	encoded, err := r.cache.Get(ctx, statusKey(feed))
	if err != nil {
		return RunSummary{}, err
	}

	var summary RunSummary
	if err := json.Unmarshal([]byte(encoded), &summary); err != nil {
		return RunSummary{}, err
	}

	return summary, nil
}
