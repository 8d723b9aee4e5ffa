package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
)

// CacheConfig configures the two-level content cache.
type CacheConfig struct {
	RedisURL string        `json:"redis_url"`
	TTL      time.Duration `json:"ttl"`
	LRUSize  int           `json:"lru_size"`
}

// cachedDocument wraps a document with cache metadata. A nil Data entry is a
// cached miss, so a missing document does not hit the backing store on every
// request.
type cachedDocument struct {
	Data      *domain.ContentDocument `json:"data"`
	CachedAt  time.Time               `json:"cached_at"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// CachedStore layers an in-process LRU and Redis in front of a backing
// content store. Content is read-mostly and versioned, so a short TTL is
// enough; cache failures fall through to the backing store.
type CachedStore struct {
	logger *logrus.Logger
	inner  domain.ContentStore
	redis  *redis.Client
	local  *lru.Cache[string, *cachedDocument]
	ttl    time.Duration
}

// NewCachedStore creates the cache wrapper. Redis is optional: an empty
// RedisURL leaves only the in-process LRU.
func NewCachedStore(logger *logrus.Logger, inner domain.ContentStore, cfg CacheConfig) (*CachedStore, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.LRUSize == 0 {
		cfg.LRUSize = 512
	}

	local, err := lru.New[string, *cachedDocument](cfg.LRUSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create content LRU: %w", err)
	}

	store := &CachedStore{logger: logger, inner: inner, local: local, ttl: cfg.TTL}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store.redis = client
	}

	return store, nil
}

// Get serves from the LRU, then Redis, then the backing store.
func (s *CachedStore) Get(ctx context.Context, contentID, tone, language string) (*domain.ContentDocument, error) {
	key := fmt.Sprintf("content:%s:%s:%s", contentID, tone, language)

	if cached, ok := s.local.Get(key); ok {
		if time.Now().Before(cached.ExpiresAt) {
			return cached.Data, nil
		}
		s.local.Remove(key)
	}

	if s.redis != nil {
		if cached, ok := s.redisGet(ctx, key); ok {
			s.local.Add(key, cached)
			return cached.Data, nil
		}
	}

	doc, err := s.inner.Get(ctx, contentID, tone, language)
	if err != nil {
		return nil, err
	}

	cached := &cachedDocument{
		Data:      doc,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	s.local.Add(key, cached)
	if s.redis != nil {
		s.redisSet(ctx, key, cached)
	}
	return doc, nil
}

func (s *CachedStore) redisGet(ctx context.Context, key string) (*cachedDocument, bool) {
	val, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Content cache read failed")
		return nil, false
	}

	var cached cachedDocument
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		s.redis.Del(ctx, key)
		return nil, false
	}
	if time.Now().After(cached.ExpiresAt) {
		s.redis.Del(ctx, key)
		return nil, false
	}
	return &cached, true
}

func (s *CachedStore) redisSet(ctx context.Context, key string, cached *cachedDocument) {
	data, err := json.Marshal(cached)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to marshal content cache entry")
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Content cache write failed")
	}
}

// Close releases the Redis connection.
func (s *CachedStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
