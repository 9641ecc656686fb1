package domain

import (
	"fmt"
	"time"
)

// DateLayout is the sortable text form used for persisted timestamps (always UTC).
const DateLayout = "2006-01-02 15:04:05.000000"

// DisplayDateLayout is the minute-precision form shown in result listings.
const DisplayDateLayout = "2006-01-02 15:04"

// ReferenceEntry is one imported dataset row, e.g. a country and its continent.
type ReferenceEntry struct {
	ID    int64
	Name  string
	Group string
}

// ReferencePair is a not-yet-persisted dataset row.
type ReferencePair struct {
	Name  string
	Group string
}

// QuizSession is written once per completed quiz run.
type QuizSession struct {
	ID    int64
	Label string
	Date  time.Time
}

// QuizResult references its QuizSession and carries the final score of the run.
type QuizResult struct {
	ID        int64
	SessionID int64
	Score     int
	Total     int
	Date      time.Time
}

// ResultSummary is the history view of a QuizResult.
type ResultSummary struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}

func (r ResultSummary) String() string {
	return fmt.Sprintf("Date: %s | Score: %d/%d", r.Date.Local().Format(DisplayDateLayout), r.Score, r.Total)
}

// Option is one answer choice. Number is its 1-based display position.
type Option struct {
	Number int
	Text   string
}

func (o Option) String() string {
	return fmt.Sprintf("%d. %s", o.Number, o.Text)
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Subject      string
	Prompt       string
	Options      []Option
	CorrectIndex int
}

// Answer returns the text of the correct option.
func (q Question) Answer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex].Text
}

// Continents is the fixed enumeration distractors are drawn from.
var Continents = []string{
	"Africa",
	"Antarctica",
	"Asia",
	"Oceania",
	"Europe",
	"North America",
	"South America",
}
