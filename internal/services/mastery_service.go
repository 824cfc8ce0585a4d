package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/adaptiq/assessment-engine/internal/advisor"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/syllabus"
	"gorm.io/gorm"
)

// MinAttemptsForRanking is the default attempt threshold below which a topic
// is too thin to rank as weak.
const MinAttemptsForRanking = 3

// MasteryService derives analytics from the ledger. It never writes; every
// method is a pure fold over a ledger snapshot.
type MasteryService interface {
	GetMastery(ctx context.Context, learnerID, subject string) (*MasteryReport, error)
	GetWeakestTopics(ctx context.Context, req WeakTopicsRequest) ([]WeakTopic, error)
	PredictReadiness(ctx context.Context, learnerID, subject string) (*advisor.Forecast, error)
}

type masteryService struct {
	repo               repositories.Repository
	catalog            syllabus.Catalog
	advisor            advisor.Advisor
	logger             *slog.Logger
	studyMinutesPerDay int
}

func NewMasteryService(
	repo repositories.Repository,
	catalog syllabus.Catalog,
	readinessAdvisor advisor.Advisor,
	logger *slog.Logger,
	studyMinutesPerDay int,
) MasteryService {
	if studyMinutesPerDay <= 0 {
		studyMinutesPerDay = 5
	}
	return &masteryService{
		repo:               repo,
		catalog:            catalog,
		advisor:            readinessAdvisor,
		logger:             logger,
		studyMinutesPerDay: studyMinutesPerDay,
	}
}

// ===== DATA STRUCTURES =====

type MasteryReport struct {
	LearnerID string `json:"learner_id"`
	Subject   string `json:"subject"`

	// StreakDays is the length of the consecutive-day run ending at the most
	// recent attempt date, across all subjects.
	StreakDays int `json:"streak_days"`

	// AverageAccuracy is the percentage of correct attempts in this subject,
	// rounded to two decimals.
	AverageAccuracy float64 `json:"average_accuracy"`

	// CoveragePercent relates practiced topics to the syllabus size.
	CoveragePercent float64 `json:"topics_covered_percent"`

	// HoursSpent is a coarse study-time proxy from distinct practice dates.
	HoursSpent float64 `json:"hours_spent"`

	// TopicAccuracy lists accuracy per practiced topic; unattempted topics
	// are absent, never reported as zero.
	TopicAccuracy map[string]float64 `json:"performance_by_topic"`

	TotalAttempts int `json:"total_questions_answered"`
}

type WeakTopicsRequest struct {
	LearnerID string `json:"learner_id"`
	Subject   string `json:"subject"`
	// Limit caps the result; 0 means no cap.
	Limit int `json:"limit"`
	// MinAttempts defaults to MinAttemptsForRanking when 0.
	MinAttempts int `json:"min_attempts"`
}

type WeakTopic struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Total    int     `json:"total"`
}

// ===== OPERATIONS =====

func (s *masteryService) GetMastery(ctx context.Context, learnerID, subject string) (*MasteryReport, error) {
	learnerID = strings.TrimSpace(learnerID)
	subject = strings.TrimSpace(subject)
	if learnerID == "" || subject == "" {
		return nil, fmt.Errorf("%w: learner id and subject are required", ErrInvalidArgument)
	}

	report := &MasteryReport{
		LearnerID:     learnerID,
		Subject:       subject,
		TopicAccuracy: map[string]float64{},
	}

	profile, err := s.repo.Profile().GetByLearnerID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report, nil
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", learnerID, err)
	}

	allEvents, err := s.repo.Event().ListByProfile(ctx, profile.ID, repositories.EventFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt events: %w", err)
	}
	if len(allEvents) == 0 {
		return report, nil
	}

	// Streak and study time look at the whole log, not one subject: a
	// practice day counts regardless of what was practiced.
	dates := DistinctDates(allEvents)
	report.StreakDays = streakDays(dates)
	report.HoursSpent = round2(float64(len(dates)) * float64(s.studyMinutesPerDay) / 60)

	var subjectTotal, subjectCorrect int
	for _, event := range allEvents {
		if event.Subject != subject {
			continue
		}
		subjectTotal++
		if event.IsCorrect {
			subjectCorrect++
		}
	}
	report.TotalAttempts = subjectTotal
	if subjectTotal > 0 {
		report.AverageAccuracy = round2(float64(subjectCorrect) / float64(subjectTotal) * 100)
	}

	stats, err := s.repo.Stat().ListByProfileSubject(ctx, profile.ID, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}
	for _, stat := range stats {
		if stat.Total > 0 {
			report.TopicAccuracy[stat.Topic] = stat.Accuracy()
		}
	}

	syllabusTotal := s.catalog.TopicCount(subject)
	report.CoveragePercent = round2(float64(len(report.TopicAccuracy)) / float64(syllabusTotal) * 100)

	return report, nil
}

func (s *masteryService) GetWeakestTopics(ctx context.Context, req WeakTopicsRequest) ([]WeakTopic, error) {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.LearnerID == "" || req.Subject == "" {
		return nil, fmt.Errorf("%w: learner id and subject are required", ErrInvalidArgument)
	}
	minAttempts := req.MinAttempts
	if minAttempts <= 0 {
		minAttempts = MinAttemptsForRanking
	}

	profile, err := s.repo.Profile().GetByLearnerID(ctx, req.LearnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", req.LearnerID, err)
	}

	stats, err := s.repo.Stat().ListByProfileSubject(ctx, profile.ID, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}

	var weak []WeakTopic
	for _, stat := range stats {
		if stat.Total < minAttempts {
			continue
		}
		weak = append(weak, WeakTopic{
			Topic:    stat.Topic,
			Accuracy: stat.Accuracy(),
			Total:    stat.Total,
		})
	}

	// stable sort keeps the snapshot order for topics with equal accuracy
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].Accuracy < weak[j].Accuracy
	})

	if req.Limit > 0 && len(weak) > req.Limit {
		weak = weak[:req.Limit]
	}
	return weak, nil
}

func (s *masteryService) PredictReadiness(ctx context.Context, learnerID, subject string) (*advisor.Forecast, error) {
	report, err := s.GetMastery(ctx, learnerID, subject)
	if err != nil {
		return nil, err
	}

	metrics := advisor.Metrics{
		Subject:         subject,
		StreakDays:      report.StreakDays,
		AverageAccuracy: report.AverageAccuracy,
		CoveragePercent: report.CoveragePercent,
		TopicAccuracy:   report.TopicAccuracy,
	}

	if profile, err := s.repo.Profile().GetByLearnerID(ctx, strings.TrimSpace(learnerID)); err == nil {
		metrics.TargetScore = profile.TargetScore
		if profile.ExamDate != nil {
			metrics.ExamDate = profile.ExamDate.Format("2006-01-02")
		}
	}

	return s.advisor.PredictReadiness(ctx, metrics), nil
}

// ===== HELPERS =====

// streakDays walks the sorted distinct dates and returns the length of the
// run ending at the latest date: consecutive days extend the run, any gap
// resets it to one.
func streakDays(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	streak := 1
	for i := 1; i < len(dates); i++ {
		// AddDate instead of a 24h delta keeps DST days intact
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			streak++
		} else {
			streak = 1
		}
	}
	return streak
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
