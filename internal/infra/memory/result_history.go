package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"worldquiz/internal/domain"
)

const historyKey = "results"

// ResultLoader reads the result history from the backing store.
type ResultLoader interface {
	ListAllResults(ctx context.Context) ([]domain.ResultSummary, error)
}

// ResultHistory caches the result history with TTL to avoid repeated DB hits.
// A non-positive TTL disables caching.
type ResultHistory struct {
	loader ResultLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	results   []domain.ResultSummary
	expiresAt time.Time
	cached    bool
	gen       uint64
}

func NewResultHistory(loader ResultLoader, ttl time.Duration) *ResultHistory {
	return &ResultHistory{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *ResultHistory) ListAllResults(ctx context.Context) ([]domain.ResultSummary, error) {
	if results, ok := h.lookup(h.clock()); ok {
		return results, nil
	}

	gen := h.generation()
	result, err, _ := h.sf.Do(historyKey+":"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		now := h.clock()
		if results, ok := h.lookup(now); ok {
			return results, nil
		}

		results, err := h.loader.ListAllResults(ctx)
		if err != nil {
			return nil, err
		}

		if ttl := h.ttlWithJitter(); ttl > 0 {
			h.mu.Lock()
			// an Invalidate during the load means these rows may predate a write
			if h.gen == gen {
				h.results = results
				h.expiresAt = now.Add(ttl)
				h.cached = true
			}
			h.mu.Unlock()
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return copyResults(result.([]domain.ResultSummary)), nil
}

// Invalidate drops the cached history so the next read goes to the loader.
// Loads already in flight are not cached.
func (h *ResultHistory) Invalidate(_ context.Context) error {
	h.mu.Lock()
	h.gen++
	h.results = nil
	h.cached = false
	h.mu.Unlock()
	return nil
}

func (h *ResultHistory) generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gen
}

func (h *ResultHistory) lookup(now time.Time) ([]domain.ResultSummary, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.cached || !h.expiresAt.After(now) {
		return nil, false
	}
	return copyResults(h.results), true
}

func (h *ResultHistory) ttlWithJitter() time.Duration {
	if h.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(h.ttl) / 10
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ttl + time.Duration(h.rnd.Int63n(jitterMax+1))
}

func copyResults(results []domain.ResultSummary) []domain.ResultSummary {
	out := make([]domain.ResultSummary, len(results))
	copy(out, results)
	return out
}
