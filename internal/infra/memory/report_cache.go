package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"interview-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ReportLoader fetches a completed session's report from the backing store.
type ReportLoader interface {
	LoadReport(ctx context.Context, sessionID string) (domain.Report, error)
}

// ReportCache caches completed reports with TTL. Reports are written once at
// completion and immutable after, so a cache hit is always current.
type ReportCache struct {
	loader ReportLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedReport
}

type cachedReport struct {
	report    domain.Report
	expiresAt time.Time
}

func NewReportCache(loader ReportLoader, ttl time.Duration) *ReportCache {
	return &ReportCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedReport),
	}
}

func (c *ReportCache) LoadReport(ctx context.Context, sessionID string) (domain.Report, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[sessionID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.report, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(sessionID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[sessionID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.report, nil
		}
		c.mu.RUnlock()

		report, err := c.loader.LoadReport(ctx, sessionID)
		if err != nil {
			return domain.Report{}, err
		}

		c.mu.Lock()
		c.cache[sessionID] = cachedReport{
			report:    report,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return report, nil
	})
	if err != nil {
		return domain.Report{}, err
	}
	return result.(domain.Report), nil
}

func (c *ReportCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
