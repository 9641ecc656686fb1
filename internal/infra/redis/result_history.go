package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"worldquiz/internal/domain"
)

const (
	// HistoryKey prefixes the JSON-encoded result history. The history for
	// generation N lives under HistoryKey:N.
	HistoryKey = "quiz:results"
	// GenerationKey is incremented by every Invalidate.
	GenerationKey = HistoryKey + ":gen"
)

// ResultLoader reads the result history from the backing store.
type ResultLoader interface {
	ListAllResults(ctx context.Context) ([]domain.ResultSummary, error)
}

// ResultHistory caches the result history in Redis and falls back to a loader on cache miss.
// The cache is shared by every process pointing at the same Redis. A fill
// only ever writes the key of the generation it started under, so a load that
// overlaps an Invalidate cannot resurrect pre-write rows.
type ResultHistory struct {
	client *redis.Client
	loader ResultLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewResultHistory(client *redis.Client, loader ResultLoader, ttl time.Duration) *ResultHistory {
	return &ResultHistory{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *ResultHistory) ListAllResults(ctx context.Context) ([]domain.ResultSummary, error) {
	gen, err := h.generation(ctx)
	if err != nil {
		glog.Warningf("read result history generation: %v", err)
		return h.loader.ListAllResults(ctx)
	}

	key := CacheKey(gen)
	if results, ok := h.cached(ctx, key); ok {
		return results, nil
	}

	result, err, _ := h.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if results, ok := h.cached(ctx, key); ok {
			return results, nil
		}

		results, err := h.loader.ListAllResults(ctx)
		if err != nil {
			return nil, err
		}

		if ttl := h.ttlWithJitter(); ttl > 0 {
			payload, err := json.Marshal(results)
			if err != nil {
				return nil, errors.Wrap(err, "encode result history")
			}
			if err := h.client.Set(ctx, key, payload, ttl).Err(); err != nil {
				glog.Warningf("cache result history: %v", err)
			}
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ResultSummary), nil
}

// Invalidate moves readers to a new generation and drops the previous one.
func (h *ResultHistory) Invalidate(ctx context.Context) error {
	gen, err := h.client.Incr(ctx, GenerationKey).Result()
	if err != nil {
		return errors.Wrap(err, "invalidate result history")
	}
	if err := h.client.Del(ctx, CacheKey(uint64(gen-1))).Err(); err != nil {
		glog.Warningf("drop stale result history: %v", err)
	}
	return nil
}

// CacheKey is the key holding the history of generation gen.
func CacheKey(gen uint64) string {
	return HistoryKey + ":" + strconv.FormatUint(gen, 10)
}

func (h *ResultHistory) generation(ctx context.Context) (uint64, error) {
	gen, err := h.client.Get(ctx, GenerationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (h *ResultHistory) cached(ctx context.Context, key string) ([]domain.ResultSummary, bool) {
	payload, err := h.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			glog.Warningf("read cached result history: %v", err)
		}
		return nil, false
	}

	var results []domain.ResultSummary
	if err := json.Unmarshal(payload, &results); err != nil {
		glog.Warningf("decode cached result history: %v", err)
		return nil, false
	}
	return results, true
}

func (h *ResultHistory) ttlWithJitter() time.Duration {
	if h.ttl <= 0 {
		return 0
	}
	jitterMax := int64(h.ttl) / 10
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ttl + time.Duration(h.rnd.Int63n(jitterMax+1))
}
