package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"interview-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ReportLoader fetches a completed session's report from the backing store.
type ReportLoader interface {
	LoadReport(ctx context.Context, sessionID string) (domain.Report, error)
}

// ReportCache keeps completed reports in Redis (JSON per session) and falls
// back to the loader on cache miss. Reports never change after completion,
// so the TTL only bounds memory, not staleness.
type ReportCache struct {
	client *redis.Client
	loader ReportLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewReportCache(client *redis.Client, loader ReportLoader, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ReportCache) LoadReport(ctx context.Context, sessionID string) (domain.Report, error) {
	key := c.key(sessionID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var report domain.Report
		if err := json.Unmarshal(raw, &report); err == nil {
			return report, nil
		}
		// Corrupt entry: drop it and reload.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(sessionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var report domain.Report
			if err := json.Unmarshal(raw, &report); err == nil {
				return report, nil
			}
		}

		report, err := c.loader.LoadReport(ctx, sessionID)
		if err != nil {
			return domain.Report{}, err
		}

		if raw, err := json.Marshal(report); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return report, nil
	})
	if err != nil {
		return domain.Report{}, err
	}
	return result.(domain.Report), nil
}

func (c *ReportCache) key(sessionID string) string {
	return fmt.Sprintf("interview:report:%s", sessionID)
}

func (c *ReportCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
