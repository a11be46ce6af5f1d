package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"interview-service/internal/domain"
)

type countingLoader struct {
	mu     sync.Mutex
	calls  int
	report domain.Report
	err    error
}

func (l *countingLoader) LoadReport(_ context.Context, _ string) (domain.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return domain.Report{}, l.err
	}
	return l.report, nil
}

func (l *countingLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestCache(t *testing.T, loader ReportLoader) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, loader, time.Minute), mr
}

func TestReportCacheFillsRedis(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 73}}
	cache, mr := newTestCache(t, loader)

	report, err := cache.LoadReport(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.AverageScore != 73 {
		t.Fatalf("unexpected report %+v", report)
	}

	raw, err := mr.Get("interview:report:session-1")
	if err != nil {
		t.Fatalf("expected cached entry in redis: %v", err)
	}
	var cached domain.Report
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached entry is not valid JSON: %v", err)
	}
	if cached.AverageScore != 73 {
		t.Fatalf("cached report mismatch: %+v", cached)
	}
}

func TestReportCacheServesFromRedis(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 73}}
	cache, _ := newTestCache(t, loader)

	for i := 0; i < 3; i++ {
		if _, err := cache.LoadReport(ctx, "session-1"); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if loader.callCount() != 1 {
		t.Fatalf("expected one loader hit, got %d", loader.callCount())
	}
}

func TestReportCacheDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 73}}
	cache, mr := newTestCache(t, loader)

	if err := mr.Set("interview:report:session-1", "not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	report, err := cache.LoadReport(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.AverageScore != 73 {
		t.Fatalf("expected reload from store, got %+v", report)
	}
	if loader.callCount() != 1 {
		t.Fatalf("expected one loader hit, got %d", loader.callCount())
	}
}

func TestReportCachePropagatesLoaderErrors(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{err: domain.ErrReportNotReady}
	cache, mr := newTestCache(t, loader)

	if _, err := cache.LoadReport(ctx, "session-1"); !errors.Is(err, domain.ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady, got %v", err)
	}
	if mr.Exists("interview:report:session-1") {
		t.Fatalf("errors must not be cached")
	}
}
