package generator

import (
	"context"
	"errors"

	"github.com/adaptiq/assessment-engine/internal/models"
)

// ErrNoQuestions is returned when generation produced no usable questions
// after validation and the bounded retry.
var ErrNoQuestions = errors.New("generator: no usable questions produced")

// Request describes one generation round. The composer decides the focus
// topics and counts; the generator only turns them into questions.
type Request struct {
	Subject string
	// Topics the questions should draw from, already blended and deduplicated.
	// Empty means the general syllabus.
	Topics []string
	Count  int
	// TypeCounts fixes how many questions of each type to produce. When empty
	// every question is an MCQ.
	TypeCounts map[models.QuestionType]int
	// DifficultyMix skews generation toward reinforcement when set.
	DifficultyMix map[models.DifficultyLevel]int
}

// Generator produces a batch of well-formed questions for a request.
// Implementations must only return questions that pass boundary validation;
// malformed items are dropped, not surfaced.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]models.Question, error)
}
