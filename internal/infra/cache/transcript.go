// Package cache keeps fetched transcripts in Redis so repeated analyses of the
// same product do not scrape the same watch pages again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"yt-sentiment/internal/observability/metrics"
)

// DefaultTTL is how long a transcript stays cached.
const DefaultTTL = 24 * time.Hour

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

// TranscriptFetcher is the fetcher being cached.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) ([]string, error)
}

// Store is a byte-oriented key-value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements Store with go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// ConnectRedis parses redisURL, pings the server and returns a store.
func ConnectRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	slog.Info("redis connected", slog.String("addr", opts.Addr))
	return NewRedisStore(client), nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks that the server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// TranscriptCache decorates a TranscriptFetcher with a read-through cache.
// Cache errors are logged and never fail a fetch. Failed fetches are not cached.
type TranscriptCache struct {
	next  TranscriptFetcher
	store Store
	ttl   time.Duration
}

// NewTranscriptCache creates the decorator. A non-positive ttl uses DefaultTTL.
func NewTranscriptCache(next TranscriptFetcher, store Store, ttl time.Duration) *TranscriptCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TranscriptCache{next: next, store: store, ttl: ttl}
}

// Fetch implements TranscriptFetcher.
func (c *TranscriptCache) Fetch(ctx context.Context, videoID string, languages []string) ([]string, error) {
	key := transcriptKey(videoID, languages)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var segments []string
		if jsonErr := json.Unmarshal(data, &segments); jsonErr == nil {
			metrics.RecordTranscriptCache("hit")
			return segments, nil
		}
		slog.WarnContext(ctx, "corrupt transcript cache entry", slog.String("video_id", videoID))
		metrics.RecordTranscriptCache("error")
	case errors.Is(err, ErrMiss):
		metrics.RecordTranscriptCache("miss")
	default:
		slog.WarnContext(ctx, "transcript cache read failed",
			slog.String("video_id", videoID),
			slog.Any("error", err))
		metrics.RecordTranscriptCache("error")
	}

	segments, err := c.next.Fetch(ctx, videoID, languages)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(segments); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			slog.WarnContext(ctx, "transcript cache write failed",
				slog.String("video_id", videoID),
				slog.Any("error", err))
		}
	}
	return segments, nil
}

// transcriptKey scopes the entry to the video and the language preference.
func transcriptKey(videoID string, languages []string) string {
	sum := sha256.Sum256([]byte(strings.Join(languages, "|")))
	return fmt.Sprintf("transcript:%s:%x", videoID, sum[:6])
}
