package repositories

import (
	"context"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type EventFilters struct {
	Subject   *string    `json:"subject"`
	Topic     *string    `json:"topic"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type RecordFilters struct {
	Subject   *string          `json:"subject"`
	Kind      *models.QuizKind `json:"kind"`
	DateFrom  *time.Time       `json:"date_from"`
	DateTo    *time.Time       `json:"date_to"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "score"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// ProfileRepository manages performance profile roots.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.PerformanceProfile) error
	GetByID(ctx context.Context, id uint) (*models.PerformanceProfile, error)
	GetByLearnerID(ctx context.Context, learnerID string) (*models.PerformanceProfile, error)
	// GetOrCreate returns the existing profile for learnerID, creating an
	// empty one when none exists yet.
	GetOrCreate(ctx context.Context, learnerID string) (*models.PerformanceProfile, error)
	Update(ctx context.Context, profile *models.PerformanceProfile) error
	Delete(ctx context.Context, id uint) error
}

// EventRepository manages the append-only attempt log.
type EventRepository interface {
	Append(ctx context.Context, event *models.AttemptEvent) error
	// ListByProfile returns events ordered by occurrence, insertion order
	// breaking timestamp ties.
	ListByProfile(ctx context.Context, profileID uint, filters EventFilters) ([]*models.AttemptEvent, error)
	CountByProfile(ctx context.Context, profileID uint) (int64, error)
}

// StatRepository manages per-(subject, topic) rollups.
type StatRepository interface {
	// Increment bumps total (and correct when isCorrect) for the stat row,
	// creating it on first attempt. Implementations must be safe under
	// concurrent increments for the same key.
	Increment(ctx context.Context, profileID uint, subject, topic string, isCorrect bool) error
	Get(ctx context.Context, profileID uint, subject, topic string) (*models.TopicStat, error)
	ListByProfile(ctx context.Context, profileID uint) ([]*models.TopicStat, error)
	ListByProfileSubject(ctx context.Context, profileID uint, subject string) ([]*models.TopicStat, error)
}

// RecordRepository archives completed quiz sessions.
type RecordRepository interface {
	Create(ctx context.Context, record *models.QuizRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.QuizRecord, error)
	ListByProfile(ctx context.Context, profileID uint, filters RecordFilters) ([]*models.QuizRecord, int64, error)
}

// Repository aggregates the persistence layer behind a single handle.
type Repository interface {
	Profile() ProfileRepository
	Event() EventRepository
	Stat() StatRepository
	Record() RecordRepository

	// WithTransaction runs fn against a Repository bound to one transaction;
	// any error rolls the whole unit back.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// ===== SESSION STORE =====

// SessionStore holds live quiz sessions between question fetches and answer
// submissions. Sessions are short-lived working state, not history.
type SessionStore interface {
	Save(ctx context.Context, session *models.QuizSession) error
	Get(ctx context.Context, sessionID string) (*models.QuizSession, error)
	Delete(ctx context.Context, sessionID string) error
}
