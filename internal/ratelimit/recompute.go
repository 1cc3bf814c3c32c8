package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/fieldside/rightsdesk/internal/config"
)

const (
	keyRecomputeActor = "pricing:recompute:actor:%s"
	keyRecomputeLock  = "pricing:recompute:lock:%s"
)

// RecomputeLimiter throttles pricing recomputes per actor and serializes
// concurrent recomputes of the same event. Disabled when rate limiting is
// off in config; all checks then pass.
type RecomputeLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewRecomputeLimiter(cfg config.Config) (*RecomputeLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.RecomputeRate <= 0 || cfg.RecomputeBurst <= 0 {
		return nil, errors.New("recompute rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &RecomputeLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.RecomputeRate,
		burst:   cfg.RecomputeBurst,
		lockTTL: time.Duration(cfg.RecomputeLockTTL) * time.Second,
	}, nil
}

func (l *RecomputeLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *RecomputeLimiter) AllowActor(ctx context.Context, actorID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyRecomputeActor, strings.TrimSpace(actorID)), l.rate, l.burst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

func (l *RecomputeLimiter) TryLockEvent(ctx context.Context, eventID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyRecomputeLock, strings.TrimSpace(eventID)), l.lockTTL)
}

func (l *RecomputeLimiter) ReleaseEvent(ctx context.Context, eventID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyRecomputeLock, strings.TrimSpace(eventID)), token)
}
