package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiterInterface defines the contract for rate limiting operations.
type RateLimiterInterface interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (LimitResult, error)
}

// LimitResult describes one counted request.
type LimitResult struct {
	Allowed    bool
	Count      int64
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitService counts requests per key in fixed Redis windows.
// It implements the RateLimiterInterface.
type RateLimitService struct {
	redis     redis.UniversalClient
	keyPrefix string
}

func NewRateLimitService(client redis.UniversalClient) *RateLimitService {
	return &RateLimitService{
		redis:     client,
		keyPrefix: "ratelimit:",
	}
}

// CheckLimit counts one request against key. The window starts with the
// first request and is not extended by later ones.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (LimitResult, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.ExpireNX(ctx, rKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return LimitResult{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incr.Val()
	if count <= int64(limit) {
		return LimitResult{
			Allowed:   true,
			Count:     count,
			Remaining: limit - int(count),
		}, nil
	}

	ttl, err := s.redis.TTL(ctx, rKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return LimitResult{
		Allowed:    false,
		Count:      count,
		RetryAfter: ttl,
	}, nil
}
