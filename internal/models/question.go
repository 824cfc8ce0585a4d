package models

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

type QuestionType string

const (
	MCQ         QuestionType = "MCQ"
	FillInBlank QuestionType = "FillInBlank"
	ShortAnswer QuestionType = "ShortAnswer"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// Question is immutable once generated; the engine never edits it.
// Distractors are populated only for MCQ questions.
type Question struct {
	Text          string          `json:"question_text" validate:"required,min=1"`
	Type          QuestionType    `json:"question_type" validate:"required,question_type"`
	Topic         string          `json:"topic" validate:"required,min=1,max=200"`
	Difficulty    DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	CorrectAnswer string          `json:"answer" validate:"required,min=1"`
	Distractors   []string        `json:"distractors,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
}

// IsOpenForm reports whether grading this question requires semantic
// evaluation rather than exact matching.
func (q Question) IsOpenForm() bool {
	return q.Type == FillInBlank || q.Type == ShortAnswer
}

// WellFormed reports whether the question satisfies the generation contract:
// non-empty text, topic and answer, and for MCQs a non-empty distractor set
// that does not already contain the correct answer.
func (q Question) WellFormed() bool {
	if strings.TrimSpace(q.Text) == "" ||
		strings.TrimSpace(q.Topic) == "" ||
		strings.TrimSpace(q.CorrectAnswer) == "" {
		return false
	}
	switch q.Type {
	case MCQ:
		if len(q.Distractors) == 0 {
			return false
		}
		for _, d := range q.Distractors {
			if strings.EqualFold(strings.TrimSpace(d), strings.TrimSpace(q.CorrectAnswer)) {
				return false
			}
		}
		return true
	case FillInBlank, ShortAnswer:
		return true
	default:
		return false
	}
}

// Options returns the presentation-order option list for an MCQ: the
// distractors plus the correct answer, shuffled so the answer's position
// carries no signal. The shuffle is seeded from the question itself, so the
// order is stable across calls for the same question. Empty for open-form
// questions.
func (q Question) Options() []string {
	if q.Type != MCQ {
		return nil
	}
	opts := make([]string, 0, len(q.Distractors)+1)
	opts = append(opts, q.Distractors...)
	opts = append(opts, q.CorrectAnswer)

	rng := rand.New(rand.NewSource(q.optionSeed()))
	rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	return opts
}

func (q Question) optionSeed() int64 {
	h := fnv.New64a()
	h.Write([]byte(q.Text))
	h.Write([]byte{0})
	h.Write([]byte(q.CorrectAnswer))
	return int64(h.Sum64())
}
