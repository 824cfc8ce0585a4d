package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
)

// SessionService drives an open quiz session through its lifecycle: question
// delivery, answer submission with grading and ledger recording, summary, and
// abandonment.
type SessionService interface {
	GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error)
	GetCurrentQuestion(ctx context.Context, sessionID string) (*CurrentQuestion, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*SubmitAnswerResponse, error)
	GetSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error)
	AbandonSession(ctx context.Context, sessionID string) error
	GetHistory(ctx context.Context, learnerID string, filters repositories.RecordFilters) ([]*models.QuizRecord, int64, error)
}

type sessionService struct {
	repo      repositories.Repository
	sessions  repositories.SessionStore
	grading   GradingService
	ledger    LedgerService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewSessionService(
	repo repositories.Repository,
	sessions repositories.SessionStore,
	grading GradingService,
	ledger LedgerService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		repo:      repo,
		sessions:  sessions,
		grading:   grading,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== DATA STRUCTURES =====

// CurrentQuestion is the learner-facing view of the question awaiting an
// answer. The correct answer and explanation are withheld until grading.
type CurrentQuestion struct {
	SessionID  string                 `json:"session_id"`
	Index      int                    `json:"index"`
	Total      int                    `json:"total"`
	Text       string                 `json:"question_text"`
	Type       models.QuestionType    `json:"question_type"`
	Topic      string                 `json:"topic"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Options    []string               `json:"options,omitempty"`
}

type SubmitAnswerResponse struct {
	Result    models.QuestionResult `json:"result"`
	State     models.SessionState   `json:"state"`
	NextIndex int                   `json:"next_index"`
	Remaining int                   `json:"remaining"`
}

// ===== OPERATIONS =====

func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	return s.loadSession(ctx, sessionID)
}

func (s *sessionService) GetCurrentQuestion(ctx context.Context, sessionID string) (*CurrentQuestion, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == models.SessionComplete {
		return nil, ErrSessionComplete
	}
	question := session.CurrentQuestion()
	if question == nil {
		return nil, ErrSessionNotActive
	}

	return &CurrentQuestion{
		SessionID:  session.ID,
		Index:      session.CurrentIndex,
		Total:      len(session.Questions),
		Text:       question.Text,
		Type:       question.Type,
		Topic:      question.Topic,
		Difficulty: question.Difficulty,
		Options:    question.Options(),
	}, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*SubmitAnswerResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.State {
	case models.SessionComplete:
		return nil, ErrSessionComplete
	case models.SessionActive:
	default:
		return nil, ErrSessionNotReady
	}

	question := session.CurrentQuestion()
	if question == nil {
		return nil, ErrSessionNotActive
	}

	outcome, err := s.grading.GradeAnswer(ctx, *question, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to grade answer: %w", err)
	}
	if outcome.Degraded {
		if pubErr := s.publisher.PublishEngineEvent(ctx,
			events.NewGradingDegradedEvent(session.ID, session.LearnerID, question.Topic, outcome.Feedback)); pubErr != nil {
			s.logger.Warn("failed to publish grading degraded event",
				"session_id", session.ID,
				"error", pubErr)
		}
	}

	result := models.QuestionResult{
		Question:   *question,
		UserAnswer: answer,
		Score:      outcome.Score,
		IsCorrect:  outcome.IsCorrect,
		Feedback:   outcome.Feedback,
	}
	session.Advance(result)

	// Ledger first, then the session snapshot: a failed save must not leave
	// the attempt unrecorded.
	if err := s.ledger.RecordAttempt(ctx, RecordAttemptRequest{
		LearnerID: session.LearnerID,
		Subject:   session.Subject,
		Topic:     question.Topic,
		IsCorrect: outcome.IsCorrect,
	}); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save quiz session: %w", err)
	}

	if session.State == models.SessionComplete {
		s.finishSession(ctx, session)
	}

	return &SubmitAnswerResponse{
		Result:    result,
		State:     session.State,
		NextIndex: session.CurrentIndex,
		Remaining: len(session.Questions) - session.CurrentIndex,
	}, nil
}

func (s *sessionService) GetSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == models.SessionSetup {
		return nil, ErrSessionNotReady
	}

	summary := session.Summarize()
	return &summary, nil
}

// AbandonSession discards the live session. Attempts already recorded stay
// in the ledger; only the unplayed remainder disappears.
func (s *sessionService) AbandonSession(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete quiz session: %w", err)
	}
	s.logger.Info("quiz session abandoned",
		"session_id", session.ID,
		"answered", len(session.Results))
	return nil
}

func (s *sessionService) GetHistory(ctx context.Context, learnerID string, filters repositories.RecordFilters) ([]*models.QuizRecord, int64, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, 0, fmt.Errorf("%w: learner id must not be empty", ErrInvalidArgument)
	}

	profile, err := s.ledger.GetProfile(ctx, learnerID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return s.repo.Record().ListByProfile(ctx, profile.ID, filters)
}

// ===== HELPERS =====

func (s *sessionService) loadSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id must not be empty", ErrInvalidArgument)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load quiz session %s: %w", sessionID, err)
	}
	return session, nil
}

// finishSession archives the completed session and announces it. Neither
// step may fail the submission that completed the quiz; trouble here is
// logged and absorbed.
func (s *sessionService) finishSession(ctx context.Context, session *models.QuizSession) {
	summary := session.Summarize()

	resultsJSON, err := json.Marshal(session.Results)
	if err != nil {
		s.logger.Error("failed to marshal session results for archive",
			"session_id", session.ID,
			"error", err)
		resultsJSON = []byte("[]")
	}

	profile, err := s.ledger.GetProfile(ctx, session.LearnerID)
	if err != nil {
		s.logger.Error("failed to load profile for session archive",
			"session_id", session.ID,
			"error", err)
		return
	}

	record := &models.QuizRecord{
		ProfileID:      profile.ID,
		SessionID:      session.ID,
		Subject:        session.Subject,
		SeedTopic:      session.SeedTopic,
		Kind:           session.Kind,
		Score:          summary.TotalScore,
		TotalQuestions: len(session.Questions),
		Results:        resultsJSON,
	}
	if err := s.repo.Record().Create(ctx, record); err != nil {
		s.logger.Error("failed to archive quiz record",
			"session_id", session.ID,
			"error", err)
	}

	if pubErr := s.publisher.PublishEngineEvent(ctx,
		events.NewSessionCompletedEvent(session.ID, session.LearnerID, session.Subject,
			summary.TotalScore, len(session.Questions), summary.Percentage)); pubErr != nil {
		s.logger.Warn("failed to publish session completed event",
			"session_id", session.ID,
			"error", pubErr)
	}

	s.logger.Info("quiz session completed",
		"session_id", session.ID,
		"learner_id", session.LearnerID,
		"score", summary.TotalScore,
		"total", len(session.Questions))
}
