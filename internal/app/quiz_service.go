package app

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"worldquiz/internal/domain"
)

// DefaultSessionLabel prefixes the label of every persisted quiz session.
const DefaultSessionLabel = "Quiz"

// ResultLoader reads the full result history, most recent first.
type ResultLoader interface {
	ListAllResults(ctx context.Context) ([]domain.ResultSummary, error)
}

// ResultRecorder persists a finished run and reads the history back
// uncached when the history cache cannot be trusted.
type ResultRecorder interface {
	ResultLoader
	RecordQuizResult(ctx context.Context, label string, score, total int) (domain.QuizResult, error)
}

// ResultHistory serves the result history (usually cached) and drops it after a write.
type ResultHistory interface {
	ResultLoader
	Invalidate(ctx context.Context) error
}

// CompletionLedger remembers which runs have been persisted (in-memory, Redis, etc).
type CompletionLedger interface {
	// MarkCompleted reports true only for the first mark of runID.
	MarkCompleted(ctx context.Context, runID string) (bool, error)
	Release(ctx context.Context, runID string) error
}

type ServiceOption func(*QuizService)

func WithSessionLabel(label string) ServiceOption {
	return func(s *QuizService) {
		if label != "" {
			s.label = label
		}
	}
}

// QuizService contains the quiz use cases: start a run, finish it, review history.
type QuizService struct {
	results   ResultRecorder
	questions QuestionSource
	ledger    CompletionLedger
	history   ResultHistory
	label     string

	// stale is set when an Invalidate after a write failed.
	stale atomic.Bool
}

func NewQuizService(results ResultRecorder, questions QuestionSource, ledger CompletionLedger, history ResultHistory, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		results:   results,
		questions: questions,
		ledger:    ledger,
		history:   history,
		label:     DefaultSessionLabel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRun generates a fresh question set. It fails with ErrNoReferenceData
// when nothing has been imported yet.
func (s *QuizService) StartRun(ctx context.Context) (*QuizRun, error) {
	questions, err := s.questions.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoReferenceData
	}
	return NewQuizRun(questions, s.questions), nil
}

// Finish persists a completed run. Only the first call for a run writes;
// later calls return recorded=false. A failed write can be retried.
func (s *QuizService) Finish(ctx context.Context, run *QuizRun) (domain.QuizResult, bool, error) {
	if !run.IsComplete() {
		return domain.QuizResult{}, false, domain.ErrRunIncomplete
	}

	first, err := s.ledger.MarkCompleted(ctx, run.ID())
	if err != nil {
		return domain.QuizResult{}, false, errors.Wrap(err, "mark run completed")
	}
	if !first {
		glog.V(2).Infof("run %s already recorded", run.ID())
		return domain.QuizResult{}, false, nil
	}

	result, err := s.results.RecordQuizResult(ctx, s.sessionLabel(run), run.Score(), run.Total())
	if err != nil {
		if releaseErr := s.ledger.Release(ctx, run.ID()); releaseErr != nil {
			glog.Warningf("release run %s: %v", run.ID(), releaseErr)
		}
		return domain.QuizResult{}, false, err
	}

	s.stale.Store(true)
	if err := s.history.Invalidate(ctx); err != nil {
		glog.Warningf("invalidate result history: %v", err)
	} else {
		s.stale.Store(false)
	}
	glog.V(2).Infof("run %s recorded as session %d", run.ID(), result.SessionID)
	return result, true, nil
}

// Results returns every recorded result, most recent first. Until a pending
// invalidation succeeds the history is read from the store directly.
func (s *QuizService) Results(ctx context.Context) ([]domain.ResultSummary, error) {
	if s.stale.Load() {
		if err := s.history.Invalidate(ctx); err != nil {
			glog.V(2).Infof("result history still stale: %v", err)
			return s.results.ListAllResults(ctx)
		}
		s.stale.Store(false)
	}
	return s.history.ListAllResults(ctx)
}

// ResultsAsync reads the history off the caller's goroutine.
func (s *QuizService) ResultsAsync(ctx context.Context) *Future[[]domain.ResultSummary] {
	return Go(func() ([]domain.ResultSummary, error) {
		return s.Results(ctx)
	})
}

func (s *QuizService) sessionLabel(run *QuizRun) string {
	return s.label + " " + run.ID()[:8]
}
