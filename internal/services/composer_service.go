package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/generator"
	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/google/uuid"
)

const (
	// MaxFocusTopics caps how many topics one quiz blends.
	MaxFocusTopics = 3

	// WeakTopicsPerQuiz is how many weak topics the composer asks the
	// analyzer for when a seed topic is present.
	WeakTopicsPerQuiz = 2

	minQuizQuestions = 1
	maxQuizQuestions = 50
)

// ComposerService assembles quiz sessions: it blends focus topics from the
// seed and the analyzer's weak-topic ranking, delegates generation, and opens
// the session.
type ComposerService interface {
	ComposeQuiz(ctx context.Context, req ComposeQuizRequest) (*models.QuizSession, error)
	ComposeMockTest(ctx context.Context, req ComposeQuizRequest) (*models.QuizSession, error)
}

type composerService struct {
	mastery   MasteryService
	generator generator.Generator
	sessions  repositories.SessionStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewComposerService(
	mastery MasteryService,
	questionGenerator generator.Generator,
	sessions repositories.SessionStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ComposerService {
	return &composerService{
		mastery:   mastery,
		generator: questionGenerator,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== DATA STRUCTURES =====

type ComposeQuizRequest struct {
	LearnerID string `json:"learner_id" validate:"required,min=1,max=100"`
	Subject   string `json:"subject" validate:"required,min=1,max=100"`
	// SeedTopic is optional; without it the quiz leans entirely on the
	// weak-topic ranking (or the general syllabus).
	SeedTopic     string `json:"seed_topic" validate:"omitempty,max=200"`
	QuestionCount int    `json:"question_count" validate:"required,min=1,max=50"`
}

// ===== OPERATIONS =====

func (s *composerService) ComposeQuiz(ctx context.Context, req ComposeQuizRequest) (*models.QuizSession, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	focus, err := s.blendFocusTopics(ctx, req)
	if err != nil {
		return nil, err
	}

	questions, err := s.generator.Generate(ctx, generator.Request{
		Subject:       req.Subject,
		Topics:        focus,
		Count:         req.QuestionCount,
		DifficultyMix: reinforcementMix(req.QuestionCount),
	})
	if err != nil || len(questions) == 0 {
		return nil, s.generationFailure(req, err)
	}

	return s.openSession(ctx, req, models.KindTopicQuiz, questions)
}

// ComposeMockTest builds an exam-style session with a fixed type
// distribution: half MCQ, three tenths fill-in-the-blank, the remainder
// short answer.
func (s *composerService) ComposeMockTest(ctx context.Context, req ComposeQuizRequest) (*models.QuizSession, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	var focus []string
	if req.SeedTopic != "" {
		focus = []string{req.SeedTopic}
	}

	questions, err := s.generator.Generate(ctx, generator.Request{
		Subject:    req.Subject,
		Topics:     focus,
		Count:      req.QuestionCount,
		TypeCounts: MockTypeCounts(req.QuestionCount),
	})
	if err != nil || len(questions) == 0 {
		return nil, s.generationFailure(req, err)
	}

	return s.openSession(ctx, req, models.KindMockTest, questions)
}

// ===== HELPERS =====

func (s *composerService) validateRequest(req *ComposeQuizRequest) error {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	req.Subject = strings.TrimSpace(req.Subject)
	req.SeedTopic = strings.TrimSpace(req.SeedTopic)

	if req.LearnerID == "" || req.Subject == "" {
		return fmt.Errorf("%w: learner id and subject are required", ErrInvalidArgument)
	}
	if req.QuestionCount < minQuizQuestions || req.QuestionCount > maxQuizQuestions {
		return fmt.Errorf("%w: question count must be between %d and %d",
			ErrInvalidQuizRequest, minQuizQuestions, maxQuizQuestions)
	}
	return s.validator.Validate(*req)
}

// blendFocusTopics combines the seed topic with the analyzer's weakest
// topics: seed first, duplicates dropped case-insensitively, at most
// MaxFocusTopics entries.
func (s *composerService) blendFocusTopics(ctx context.Context, req ComposeQuizRequest) ([]string, error) {
	var focus []string
	seen := make(map[string]bool)

	add := func(topic string) {
		key := strings.ToLower(strings.TrimSpace(topic))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		focus = append(focus, strings.TrimSpace(topic))
	}

	weakLimit := WeakTopicsPerQuiz
	if req.SeedTopic != "" {
		add(req.SeedTopic)
	} else {
		weakLimit = MaxFocusTopics
	}

	weak, err := s.mastery.GetWeakestTopics(ctx, WeakTopicsRequest{
		LearnerID: req.LearnerID,
		Subject:   req.Subject,
		Limit:     weakLimit,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range weak {
		if len(focus) >= MaxFocusTopics {
			break
		}
		add(w.Topic)
	}
	return focus, nil
}

// reinforcementMix skews the quiz toward confidence building: two fifths
// Easy, two fifths Medium, the rest Hard.
func reinforcementMix(count int) map[models.DifficultyLevel]int {
	easy := count * 2 / 5
	medium := count * 2 / 5
	return map[models.DifficultyLevel]int{
		models.DifficultyEasy:   easy,
		models.DifficultyMedium: medium,
		models.DifficultyHard:   count - easy - medium,
	}
}

// MockTypeCounts returns the mock-test type distribution. Integer truncation
// rounds MCQ and fill-in-the-blank down; short answer absorbs the remainder,
// so the counts always sum to n.
func MockTypeCounts(n int) map[models.QuestionType]int {
	mcq := n / 2
	fib := n * 3 / 10
	return map[models.QuestionType]int{
		models.MCQ:         mcq,
		models.FillInBlank: fib,
		models.ShortAnswer: n - mcq - fib,
	}
}

func (s *composerService) generationFailure(req ComposeQuizRequest, err error) error {
	if err != nil {
		s.logger.Error("question generation failed",
			"learner_id", req.LearnerID,
			"subject", req.Subject,
			"error", err)
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	s.logger.Error("question generation returned no questions",
		"learner_id", req.LearnerID,
		"subject", req.Subject)
	return ErrGenerationFailed
}

func (s *composerService) openSession(ctx context.Context, req ComposeQuizRequest, kind models.QuizKind, questions []models.Question) (*models.QuizSession, error) {
	session := &models.QuizSession{
		ID:        uuid.NewString(),
		LearnerID: req.LearnerID,
		Subject:   req.Subject,
		SeedTopic: req.SeedTopic,
		Kind:      kind,
		State:     models.SessionActive,
		Questions: questions,
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save quiz session: %w", err)
	}

	if pubErr := s.publisher.PublishEngineEvent(ctx,
		events.NewSessionStartedEvent(session.ID, session.LearnerID, session.Subject, session.SeedTopic, len(questions))); pubErr != nil {
		s.logger.Warn("failed to publish session started event",
			"session_id", session.ID,
			"error", pubErr)
	}

	s.logger.Info("quiz session opened",
		"session_id", session.ID,
		"learner_id", session.LearnerID,
		"subject", session.Subject,
		"kind", kind,
		"questions", len(questions))
	return session, nil
}
