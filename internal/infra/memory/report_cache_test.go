package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"interview-service/internal/domain"
)

// countingLoader records how often the backing store is hit.
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

func TestReportCacheHit(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 81}}
	cache := NewReportCache(loader, time.Minute)

	for i := 0; i < 3; i++ {
		report, err := cache.LoadReport(ctx, "session-1")
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if report.AverageScore != 81 {
			t.Fatalf("load %d: unexpected report %+v", i, report)
		}
	}
	if loader.callCount() != 1 {
		t.Fatalf("expected one store hit, got %d", loader.callCount())
	}
}

func TestReportCacheExpiry(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 81}}
	cache := NewReportCache(loader, time.Minute)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return current }

	if _, err := cache.LoadReport(ctx, "session-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	// jitter adds at most 10%, so 90 minutes is safely past expiry
	current = current.Add(90 * time.Minute)
	if _, err := cache.LoadReport(ctx, "session-1"); err != nil {
		t.Fatalf("load after expiry: %v", err)
	}
	if loader.callCount() != 2 {
		t.Fatalf("expected reload after expiry, got %d store hits", loader.callCount())
	}
}

func TestReportCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{err: domain.ErrReportNotReady}
	cache := NewReportCache(loader, time.Minute)

	if _, err := cache.LoadReport(ctx, "session-1"); !errors.Is(err, domain.ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady, got %v", err)
	}

	// Report becomes available once the session completes.
	loader.mu.Lock()
	loader.err = nil
	loader.report = domain.Report{AverageScore: 64}
	loader.mu.Unlock()

	report, err := cache.LoadReport(ctx, "session-1")
	if err != nil {
		t.Fatalf("load after completion: %v", err)
	}
	if report.AverageScore != 64 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestReportCacheConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{report: domain.Report{AverageScore: 81}}
	cache := NewReportCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.LoadReport(ctx, "session-1"); err != nil {
				t.Errorf("concurrent load: %v", err)
			}
		}()
	}
	wg.Wait()

	if loader.callCount() > 2 {
		t.Fatalf("expected singleflight to collapse loads, got %d store hits", loader.callCount())
	}
}
