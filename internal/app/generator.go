package app

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/pkg/errors"

	"worldquiz/internal/domain"
)

const (
	// DefaultQuestionCount is the length of one quiz run.
	DefaultQuestionCount = 6
	// OptionCount is the number of choices per question.
	OptionCount = 3

	promptFormat = "In which continent is %s located?"
)

// ReferenceSampler draws random reference pairs keyed by name.
type ReferenceSampler interface {
	SampleRandomReferenceEntries(ctx context.Context, count int) (map[string]string, error)
}

type GeneratorOption func(*QuestionGenerator)

func WithQuestionCount(n int) GeneratorOption {
	return func(g *QuestionGenerator) {
		if n > 0 {
			g.count = n
		}
	}
}

// WithGroups replaces the distractor enumeration.
func WithGroups(groups []string) GeneratorOption {
	return func(g *QuestionGenerator) {
		g.groups = groups
	}
}

func WithRand(rnd *rand.Rand) GeneratorOption {
	return func(g *QuestionGenerator) {
		g.rnd = rnd
	}
}

// QuestionGenerator turns sampled pairs into multiple-choice questions.
// Not safe for concurrent use.
type QuestionGenerator struct {
	sampler ReferenceSampler
	count   int
	groups  []string
	rnd     *rand.Rand
}

func NewQuestionGenerator(sampler ReferenceSampler, opts ...GeneratorOption) *QuestionGenerator {
	g := &QuestionGenerator{
		sampler: sampler,
		count:   DefaultQuestionCount,
		groups:  domain.Continents,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate samples up to the configured number of pairs and builds one question per pair.
func (g *QuestionGenerator) Generate(ctx context.Context) ([]domain.Question, error) {
	pairs, err := g.sampler.SampleRandomReferenceEntries(ctx, g.count)
	if err != nil {
		return nil, errors.Wrap(err, "sample reference entries")
	}
	return BuildQuestions(pairs, g.groups, g.count, g.rnd)
}

// BuildQuestions creates at most limit questions, one per pair. It never pads:
// fewer pairs yield fewer questions.
func BuildQuestions(pairs map[string]string, groups []string, limit int, rnd *rand.Rand) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, min(limit, len(pairs)))
	for name, correct := range pairs {
		if len(questions) >= limit {
			break
		}
		question, err := buildQuestion(name, correct, groups, rnd)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// buildQuestion draws distractors by rejection sampling. It requires at least
// OptionCount-1 distinct groups other than correct, which guarantees the loop ends.
func buildQuestion(name, correct string, groups []string, rnd *rand.Rand) (domain.Question, error) {
	if distinctOthers(groups, correct) < OptionCount-1 {
		return domain.Question{}, errors.Wrapf(domain.ErrNotEnoughGroups, "question for %q", name)
	}

	choices := make([]string, 1, OptionCount)
	choices[0] = correct
	for len(choices) < OptionCount {
		candidate := groups[rnd.Intn(len(groups))]
		if slices.Contains(choices, candidate) {
			continue
		}
		choices = append(choices, candidate)
	}

	rnd.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	correctIndex := slices.Index(choices, correct)

	options := make([]domain.Option, len(choices))
	for idx, text := range choices {
		options[idx] = domain.Option{Number: idx + 1, Text: text}
	}

	return domain.Question{
		Subject:      name,
		Prompt:       fmt.Sprintf(promptFormat, name),
		Options:      options,
		CorrectIndex: correctIndex,
	}, nil
}

func distinctOthers(groups []string, correct string) int {
	seen := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		if group != correct {
			seen[group] = struct{}{}
		}
	}
	return len(seen)
}
