package memory

import (
	"context"
	"sync"
)

// RunLedger is an in-memory implementation of app.CompletionLedger.
type RunLedger struct {
	mu        sync.Mutex
	completed map[string]struct{}
}

func NewRunLedger() *RunLedger {
	return &RunLedger{
		completed: make(map[string]struct{}),
	}
}

func (l *RunLedger) MarkCompleted(_ context.Context, runID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.completed[runID]; ok {
		return false, nil
	}
	l.completed[runID] = struct{}{}
	return true, nil
}

func (l *RunLedger) Release(_ context.Context, runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.completed, runID)
	return nil
}
