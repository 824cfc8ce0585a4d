package grader

import (
	"context"
	"errors"
)

// Result is a semantic grading verdict. Score is always one of 0, 0.5 or 1.0.
type Result struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ErrUnusableVerdict is returned when the grading backend answered but the
// verdict could not be parsed or carried a score outside the allowed set.
// Callers degrade to a zero score rather than failing the submission.
var ErrUnusableVerdict = errors.New("grader: unusable grading verdict")

// Grader judges open-form answers for semantic correctness against the
// reference answer.
type Grader interface {
	Grade(ctx context.Context, question, correctAnswer, userAnswer string) (*Result, error)
}

// ValidScore reports whether s is in the discrete score set graders may
// return.
func ValidScore(s float64) bool {
	return s == 0.0 || s == 0.5 || s == 1.0
}
