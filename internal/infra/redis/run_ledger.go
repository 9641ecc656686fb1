package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RunLedger records completed runs in Redis so a run is persisted at most
// once across processes. Markers expire after ttl.
type RunLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLedger(client *redis.Client, ttl time.Duration) *RunLedger {
	return &RunLedger{
		client: client,
		ttl:    ttl,
	}
}

func (l *RunLedger) MarkCompleted(ctx context.Context, runID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(runID), "1", l.ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "mark run %s", runID)
	}
	return ok, nil
}

func (l *RunLedger) Release(ctx context.Context, runID string) error {
	if err := l.client.Del(ctx, l.key(runID)).Err(); err != nil {
		return errors.Wrapf(err, "release run %s", runID)
	}
	return nil
}

func (l *RunLedger) key(runID string) string {
	return "quiz:run:" + runID + ":completed"
}
