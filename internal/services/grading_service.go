package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adaptiq/assessment-engine/internal/grader"
	"github.com/adaptiq/assessment-engine/internal/models"
)

// Canonical feedback strings. MCQ feedback is fully deterministic; the
// degraded string doubles as the fail-soft marker for open-form grading.
const (
	FeedbackCorrect         = "Correct!"
	FeedbackNoAnswer        = "No answer provided"
	FeedbackGradingDegraded = "Could not automatically grade this answer"
)

// GradingService turns a (question, answer) pair into a QuestionResult. It
// never returns an error for grading trouble: external grading failures
// degrade to a zero score with Degraded set, so a submission always succeeds.
type GradingService interface {
	GradeAnswer(ctx context.Context, question models.Question, userAnswer string) (*GradeOutcome, error)
}

type gradingService struct {
	grader grader.Grader
	logger *slog.Logger
}

func NewGradingService(semanticGrader grader.Grader, logger *slog.Logger) GradingService {
	return &gradingService{
		grader: semanticGrader,
		logger: logger,
	}
}

// ===== DATA STRUCTURES =====

type GradeOutcome struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`

	// IsCorrect mirrors the ledger's exact-credit rule: only a full score
	// counts.
	IsCorrect bool `json:"is_correct"`

	// Degraded marks a fail-soft verdict; callers log it, never surface it.
	Degraded bool `json:"-"`
}

// ===== OPERATIONS =====

func (s *gradingService) GradeAnswer(ctx context.Context, question models.Question, userAnswer string) (*GradeOutcome, error) {
	if question.Type == models.MCQ {
		return s.gradeMCQ(question, userAnswer), nil
	}
	return s.gradeOpenForm(ctx, question, userAnswer), nil
}

// gradeMCQ is pure: trimmed, case-insensitive equality against the reference
// answer.
func (s *gradingService) gradeMCQ(question models.Question, userAnswer string) *GradeOutcome {
	if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.CorrectAnswer)) {
		return &GradeOutcome{
			Score:     1.0,
			IsCorrect: true,
			Feedback:  FeedbackCorrect,
		}
	}
	return &GradeOutcome{
		Score:    0.0,
		Feedback: fmt.Sprintf("Not quite, the answer was %s", question.CorrectAnswer),
	}
}

func (s *gradingService) gradeOpenForm(ctx context.Context, question models.Question, userAnswer string) *GradeOutcome {
	// A blank answer is settled locally; the grader is never consulted.
	if strings.TrimSpace(userAnswer) == "" {
		return &GradeOutcome{
			Score:    0.0,
			Feedback: FeedbackNoAnswer,
		}
	}

	verdict, err := s.grader.Grade(ctx, question.Text, question.CorrectAnswer, userAnswer)
	if err != nil {
		s.logger.Warn("semantic grading degraded",
			"topic", question.Topic,
			"error", err)
		return &GradeOutcome{
			Score:    0.0,
			Feedback: FeedbackGradingDegraded,
			Degraded: true,
		}
	}

	return &GradeOutcome{
		Score:     verdict.Score,
		Feedback:  verdict.Feedback,
		IsCorrect: verdict.Score >= models.ExactCreditScore,
	}
}
