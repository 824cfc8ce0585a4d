package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/adaptiq/assessment-engine/internal/cache"
	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"gorm.io/gorm"
)

const topicStatsCacheTTL = 5 * time.Minute

// LedgerService is the single writer of the performance ledger. Every graded
// answer flows through RecordAttempt; nothing else mutates events or stats.
type LedgerService interface {
	RecordAttempt(ctx context.Context, req RecordAttemptRequest) error

	// GetTopicStats returns the topic -> stat snapshot for one subject.
	// Learners with no attempts get an empty map, not an error.
	GetTopicStats(ctx context.Context, learnerID, subject string) (map[string]*models.TopicStat, error)

	// GetAttemptDates returns the distinct calendar dates with at least one
	// attempt, ascending. A nil subject means all subjects.
	GetAttemptDates(ctx context.Context, learnerID string, subject *string) ([]time.Time, error)

	GetProfile(ctx context.Context, learnerID string) (*models.PerformanceProfile, error)
	SetGoals(ctx context.Context, req SetGoalsRequest) (*models.PerformanceProfile, error)
}

type ledgerService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewLedgerService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) LedgerService {
	return &ledgerService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== DATA STRUCTURES =====

type RecordAttemptRequest struct {
	LearnerID string `json:"learner_id" validate:"required,min=1,max=100"`
	Subject   string `json:"subject" validate:"required,min=1,max=100"`
	Topic     string `json:"topic" validate:"required,min=1,max=200"`
	IsCorrect bool   `json:"is_correct"`

	// OccurredAt defaults to now when unset.
	OccurredAt *time.Time `json:"occurred_at"`
}

type SetGoalsRequest struct {
	LearnerID   string     `json:"learner_id" validate:"required,min=1,max=100"`
	TargetScore *int       `json:"target_score" validate:"omitempty,min=0,max=100"`
	ExamDate    *time.Time `json:"exam_date"`
}

// ===== OPERATIONS =====

func (s *ledgerService) RecordAttempt(ctx context.Context, req RecordAttemptRequest) error {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Topic = strings.TrimSpace(req.Topic)

	if req.LearnerID == "" {
		return fmt.Errorf("%w: learner id must not be empty", ErrInvalidArgument)
	}
	if req.Subject == "" {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, ErrEmptySubject)
	}
	if req.Topic == "" {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, ErrEmptyTopic)
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	profile, err := s.repo.Profile().GetOrCreate(ctx, req.LearnerID)
	if err != nil {
		return fmt.Errorf("failed to load profile for %s: %w", req.LearnerID, err)
	}

	// Event append and stat increment commit or roll back together, so the
	// stat rollup always equals the fold of the event log.
	err = s.repo.WithTransaction(ctx, func(repo repositories.Repository) error {
		event := &models.AttemptEvent{
			ProfileID:  profile.ID,
			OccurredAt: occurredAt,
			Subject:    req.Subject,
			Topic:      req.Topic,
			IsCorrect:  req.IsCorrect,
		}
		if err := repo.Event().Append(ctx, event); err != nil {
			return err
		}
		return repo.Stat().Increment(ctx, profile.ID, req.Subject, req.Topic, req.IsCorrect)
	})
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	s.invalidateStatsCache(ctx, req.LearnerID, req.Subject)

	if pubErr := s.publisher.PublishEngineEvent(ctx,
		events.NewAttemptRecordedEvent(req.LearnerID, req.Subject, req.Topic, req.IsCorrect, occurredAt)); pubErr != nil {
		s.logger.Warn("failed to publish attempt recorded event",
			"learner_id", req.LearnerID,
			"error", pubErr)
	}

	s.logger.Info("attempt recorded",
		"learner_id", req.LearnerID,
		"subject", req.Subject,
		"topic", req.Topic,
		"is_correct", req.IsCorrect)
	return nil
}

func (s *ledgerService) GetTopicStats(ctx context.Context, learnerID, subject string) (map[string]*models.TopicStat, error) {
	learnerID = strings.TrimSpace(learnerID)
	subject = strings.TrimSpace(subject)
	if learnerID == "" || subject == "" {
		return nil, fmt.Errorf("%w: learner id and subject are required", ErrInvalidArgument)
	}

	cacheKey := statsCacheKey(learnerID, subject)
	cached := make(map[string]*models.TopicStat)
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	profile, err := s.repo.Profile().GetByLearnerID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[string]*models.TopicStat{}, nil
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", learnerID, err)
	}

	stats, err := s.repo.Stat().ListByProfileSubject(ctx, profile.ID, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}

	snapshot := make(map[string]*models.TopicStat, len(stats))
	for _, stat := range stats {
		snapshot[stat.Topic] = stat
	}

	if err := s.cache.Set(ctx, cacheKey, snapshot, topicStatsCacheTTL); err != nil {
		s.logger.Debug("failed to cache topic stats", "key", cacheKey, "error", err)
	}
	return snapshot, nil
}

func (s *ledgerService) GetAttemptDates(ctx context.Context, learnerID string, subject *string) ([]time.Time, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, fmt.Errorf("%w: learner id must not be empty", ErrInvalidArgument)
	}

	profile, err := s.repo.Profile().GetByLearnerID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", learnerID, err)
	}

	filters := repositories.EventFilters{Subject: subject}
	eventList, err := s.repo.Event().ListByProfile(ctx, profile.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt events: %w", err)
	}

	return DistinctDates(eventList), nil
}

func (s *ledgerService) GetProfile(ctx context.Context, learnerID string) (*models.PerformanceProfile, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, fmt.Errorf("%w: learner id must not be empty", ErrInvalidArgument)
	}

	profile, err := s.repo.Profile().GetByLearnerID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", learnerID, err)
	}
	return profile, nil
}

func (s *ledgerService) SetGoals(ctx context.Context, req SetGoalsRequest) (*models.PerformanceProfile, error) {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	if req.LearnerID == "" {
		return nil, fmt.Errorf("%w: learner id must not be empty", ErrInvalidArgument)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.Profile().GetOrCreate(ctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", req.LearnerID, err)
	}

	profile.TargetScore = req.TargetScore
	profile.ExamDate = req.ExamDate
	if err := s.repo.Profile().Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile goals: %w", err)
	}
	return profile, nil
}

// ===== HELPERS =====

func statsCacheKey(learnerID, subject string) string {
	return fmt.Sprintf("topic_stats:%s:%s", learnerID, subject)
}

func (s *ledgerService) invalidateStatsCache(ctx context.Context, learnerID, subject string) {
	if err := s.cache.Delete(ctx, statsCacheKey(learnerID, subject)); err != nil {
		s.logger.Debug("failed to invalidate topic stats cache",
			"learner_id", learnerID,
			"subject", subject,
			"error", err)
	}
}

// DistinctDates collapses events to their distinct calendar dates in the
// engine's local time zone, ascending.
func DistinctDates(eventList []*models.AttemptEvent) []time.Time {
	seen := make(map[time.Time]bool, len(eventList))
	var dates []time.Time
	for _, event := range eventList {
		year, month, day := event.OccurredAt.Local().Date()
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
