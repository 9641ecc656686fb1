package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"worldquiz/internal/domain"
)

func TestResultHistoryCaches(t *testing.T) {
	loader := &countingLoader{results: sampleResults()}
	history := NewResultHistory(loader, time.Minute)

	if _, err := history.ListAllResults(context.Background()); err != nil {
		t.Fatalf("list results: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	got, err := history.ListAllResults(context.Background())
	if err != nil {
		t.Fatalf("list results 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
	if len(got) != 2 || got[0].Score != 5 {
		t.Fatalf("unexpected cached results %+v", got)
	}
}

func TestResultHistoryExpires(t *testing.T) {
	loader := &countingLoader{results: sampleResults()}
	history := NewResultHistory(loader, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	history.clock = func() time.Time { return now }

	_, _ = history.ListAllResults(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = history.ListAllResults(context.Background())

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls.Load())
	}
}

func TestResultHistoryInvalidate(t *testing.T) {
	loader := &countingLoader{results: sampleResults()}
	history := NewResultHistory(loader, time.Hour)

	_, _ = history.ListAllResults(context.Background())
	if err := history.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = history.ListAllResults(context.Background())

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls.Load())
	}
}

func TestResultHistoryZeroTTLDisablesCache(t *testing.T) {
	loader := &countingLoader{results: sampleResults()}
	history := NewResultHistory(loader, 0)

	_, _ = history.ListAllResults(context.Background())
	_, _ = history.ListAllResults(context.Background())

	if loader.calls.Load() != 2 {
		t.Fatalf("expected every read to hit the loader, got %d", loader.calls.Load())
	}
}

func TestResultHistoryDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{err: errors.New("db down")}
	history := NewResultHistory(loader, time.Minute)

	if _, err := history.ListAllResults(context.Background()); err == nil {
		t.Fatalf("expected loader error")
	}
	loader.err = nil
	loader.results = sampleResults()
	got, err := history.ListAllResults(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("expected recovery, got %v %+v", err, got)
	}
}

func TestResultHistoryConcurrentReads(t *testing.T) {
	loader := &countingLoader{results: sampleResults(), delay: 20 * time.Millisecond}
	history := NewResultHistory(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := history.ListAllResults(context.Background()); err != nil {
				t.Errorf("list results: %v", err)
			}
		}()
	}
	wg.Wait()

	if loader.calls.Load() > 2 {
		t.Fatalf("expected concurrent reads to share a load, got %d", loader.calls.Load())
	}
}

func TestResultHistoryInvalidateDuringLoadIsNotCached(t *testing.T) {
	loader := &gatedLoader{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	history := NewResultHistory(loader, time.Hour)

	done := make(chan []domain.ResultSummary, 1)
	go func() {
		results, err := history.ListAllResults(context.Background())
		if err != nil {
			t.Errorf("list results: %v", err)
		}
		done <- results
	}()

	<-loader.started
	loader.add(domain.ResultSummary{Score: 4, Total: 6, Date: time.Now()})
	if err := history.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	// a read after Invalidate must not join the load that began before it
	fresh, err := history.ListAllResults(context.Background())
	if err != nil {
		t.Fatalf("list results after invalidate: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Score != 4 {
		t.Fatalf("expected the recorded result, got %+v", fresh)
	}

	close(loader.release)
	if stale := <-done; len(stale) != 0 {
		t.Fatalf("expected the early load to see the empty table, got %+v", stale)
	}

	got, err := history.ListAllResults(context.Background())
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(got) != 1 || got[0].Score != 4 {
		t.Fatalf("expected the recorded result after the early load finished, got %+v", got)
	}
}

// gatedLoader blocks its first load on release after taking a snapshot.
type gatedLoader struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	rows  []domain.ResultSummary
	calls int
}

func (l *gatedLoader) add(row domain.ResultSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append([]domain.ResultSummary{row}, l.rows...)
}

func (l *gatedLoader) ListAllResults(_ context.Context) ([]domain.ResultSummary, error) {
	l.mu.Lock()
	snapshot := append([]domain.ResultSummary(nil), l.rows...)
	l.calls++
	first := l.calls == 1
	l.mu.Unlock()

	if first {
		close(l.started)
		<-l.release
	}
	return snapshot, nil
}

type countingLoader struct {
	results []domain.ResultSummary
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (l *countingLoader) ListAllResults(_ context.Context) ([]domain.ResultSummary, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.results, nil
}

func sampleResults() []domain.ResultSummary {
	return []domain.ResultSummary{
		{Score: 5, Total: 6, Date: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
		{Score: 2, Total: 6, Date: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
}
