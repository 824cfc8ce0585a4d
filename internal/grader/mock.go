package grader

import (
	"context"
	"strings"
)

// MockGrader is a deterministic Grader for tests. When Result is nil it
// falls back to exact (case-insensitive, trimmed) matching.
type MockGrader struct {
	Result *Result
	Err    error
	// Calls records every (question, correctAnswer, userAnswer) triple.
	Calls [][3]string
}

func (m *MockGrader) Grade(ctx context.Context, question, correctAnswer, userAnswer string) (*Result, error) {
	m.Calls = append(m.Calls, [3]string{question, correctAnswer, userAnswer})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	if strings.EqualFold(strings.TrimSpace(correctAnswer), strings.TrimSpace(userAnswer)) {
		return &Result{Score: 1.0, Feedback: "Well done, that is exactly right."}, nil
	}
	return &Result{Score: 0.0, Feedback: "Not quite, review this topic again."}, nil
}
