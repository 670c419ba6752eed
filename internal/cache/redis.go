package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripweaver/config"
	"tripweaver/internal/service/itinerary"
)

type RedisCache struct {
	client    *redis.Client
	reportTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, reportTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		reportTTL: reportTTL,
	}
}

// GetFillReport returns the last stored fill report for an itinerary, or
// nil when none is cached.
func (c *RedisCache) GetFillReport(ctx context.Context, itineraryID string) (*itinerary.FillReport, error) {
	data, err := c.client.Get(ctx, reportKey(itineraryID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var report itinerary.FillReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *RedisCache) SetFillReport(ctx context.Context, report *itinerary.FillReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(report.ItineraryID), payload, c.reportTTL).Err()
}

// AcquireFillLock takes the per-itinerary fill lock. It returns false when
// another holder already owns it.
func (c *RedisCache) AcquireFillLock(ctx context.Context, itineraryID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, fillLockKey(itineraryID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseFillLock(ctx context.Context, itineraryID string) error {
	return c.client.Del(ctx, fillLockKey(itineraryID)).Err()
}

// AlreadyProcessed reports whether a revision was handled before, so
// redelivered events do not trigger duplicate fill runs.
func (c *RedisCache) AlreadyProcessed(ctx context.Context, itineraryID string, revision int64) (bool, error) {
	n, err := c.client.Exists(ctx, processedKey(itineraryID, revision)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) MarkProcessed(ctx context.Context, itineraryID string, revision int64, ttl time.Duration) error {
	return c.client.Set(ctx, processedKey(itineraryID, revision), "done", ttl).Err()
}

func reportKey(itineraryID string) string {
	return fmt.Sprintf("cache:itinerary:%s:report", itineraryID)
}

func fillLockKey(itineraryID string) string {
	return fmt.Sprintf("lock:itinerary:%s:fill", itineraryID)
}

func processedKey(itineraryID string, revision int64) string {
	return fmt.Sprintf("processed:itinerary:%s:%d", itineraryID, revision)
}
