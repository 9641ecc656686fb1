package app

import (
	"context"

	"github.com/google/uuid"

	"worldquiz/internal/domain"
)

// QuestionSource produces a fresh question set for a run.
type QuestionSource interface {
	Generate(ctx context.Context) ([]domain.Question, error)
}

// QuizRun tracks progress through one quiz. It is driven from a single
// goroutine and is discarded when the run ends or is abandoned.
type QuizRun struct {
	id        string
	source    QuestionSource
	questions []domain.Question
	current   int
	score     int
}

// NewQuizRun starts a run over questions; source is used by Restart.
func NewQuizRun(questions []domain.Question, source QuestionSource) *QuizRun {
	return &QuizRun{
		id:        uuid.NewString(),
		source:    source,
		questions: questions,
	}
}

// ID identifies this run; Restart assigns a new one.
func (r *QuizRun) ID() string {
	return r.id
}

func (r *QuizRun) Questions() []domain.Question {
	return r.questions
}

func (r *QuizRun) Total() int {
	return len(r.questions)
}

func (r *QuizRun) Index() int {
	return r.current
}

func (r *QuizRun) Score() int {
	return r.score
}

// Current returns the question at the current index, if any.
func (r *QuizRun) Current() (domain.Question, bool) {
	if r.current < 0 || r.current >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[r.current], true
}

// Advance moves forward without an upper clamp; IsComplete is authoritative.
func (r *QuizRun) Advance() {
	r.current++
}

// Retreat moves back one question, stopping at the first.
func (r *QuizRun) Retreat() {
	if r.current > 0 {
		r.current--
	}
}

func (r *QuizRun) RecordCorrectAnswer() {
	r.score++
}

func (r *QuizRun) IsComplete() bool {
	return r.current >= len(r.questions)
}

// Answer scores choice (0-based) against the current question and advances.
func (r *QuizRun) Answer(choice int) (bool, error) {
	question, ok := r.Current()
	if !ok {
		return false, domain.ErrRunComplete
	}
	if choice < 0 || choice >= len(question.Options) {
		return false, domain.ErrOptionOutOfRange
	}

	correct := choice == question.CorrectIndex
	if correct {
		r.RecordCorrectAnswer()
	}
	r.Advance()
	return correct, nil
}

// Restart draws a new question set and resets progress. On error the run is unchanged.
func (r *QuizRun) Restart(ctx context.Context) error {
	questions, err := r.source.Generate(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return domain.ErrNoReferenceData
	}

	r.id = uuid.NewString()
	r.questions = questions
	r.current = 0
	r.score = 0
	return nil
}
