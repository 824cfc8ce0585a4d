package models

import (
	"math"
	"time"
)

// PerformanceProfile is the aggregate root for a learner's recorded history.
// It owns the append-only attempt log and the derived per-topic aggregates;
// nothing outside the ledger service mutates either collection.
type PerformanceProfile struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	LearnerID string `json:"learner_id" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`

	// Learner goals, both optional.
	TargetScore *int       `json:"target_score" validate:"omitempty,min=0,max=100"`
	ExamDate    *time.Time `json:"exam_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Events []AttemptEvent `json:"events,omitempty" gorm:"foreignKey:ProfileID"`
	Stats  []TopicStat    `json:"stats,omitempty" gorm:"foreignKey:ProfileID"`
}

func (PerformanceProfile) TableName() string {
	return "performance_profiles"
}

// AttemptEvent is one graded answer, recorded exactly once and never edited.
// The autoincrement ID preserves insertion order even when timestamps collide,
// which the streak computation depends on.
type AttemptEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProfileID  uint      `json:"profile_id" gorm:"not null;index"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`
	Subject    string    `json:"subject" gorm:"not null;size:100;index"`
	Topic      string    `json:"topic" gorm:"not null;size:200"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null"`
}

func (AttemptEvent) TableName() string {
	return "attempt_events"
}

// TopicStat is the derived aggregate for one (subject, topic) pair.
// Invariant: it equals the fold of all AttemptEvents with the same key.
type TopicStat struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProfileID uint   `json:"profile_id" gorm:"not null;uniqueIndex:idx_topic_stats_key"`
	Subject   string `json:"subject" gorm:"not null;size:100;uniqueIndex:idx_topic_stats_key"`
	Topic     string `json:"topic" gorm:"not null;size:200;uniqueIndex:idx_topic_stats_key"`
	Correct   int    `json:"correct" gorm:"not null;default:0" validate:"min=0"`
	Total     int    `json:"total" gorm:"not null;default:0" validate:"min=0,gtefield=Correct"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (TopicStat) TableName() string {
	return "topic_stats"
}

// Accuracy returns the percentage of correct attempts rounded to two decimal
// places, or 0 when the topic has no attempts.
func (s TopicStat) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return math.Round(float64(s.Correct)/float64(s.Total)*100*100) / 100
}
