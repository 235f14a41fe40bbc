package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const suggestionKeyPrefix = "slotbook:suggestions:"

// RedisSuggestionCache stores generated suggestion text per normalized query.
type RedisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisSuggestionCache pings the server so a bad address fails at startup.
func NewRedisSuggestionCache(ctx context.Context, client *redis.Client, ttl time.Duration) (*RedisSuggestionCache, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisSuggestionCache{client: client, ttl: ttl}, nil
}

// SuggestionKey hashes the case- and whitespace-normalized query.
func SuggestionKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return suggestionKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached suggestion and whether it was present.
func (c *RedisSuggestionCache) Get(ctx context.Context, query string) (string, bool, error) {
	val, err := c.client.Get(ctx, SuggestionKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisSuggestionCache) Set(ctx context.Context, query, suggestion string) error {
	return c.client.Set(ctx, SuggestionKey(query), suggestion, c.ttl).Err()
}

func (c *RedisSuggestionCache) Close() error {
	return c.client.Close()
}
