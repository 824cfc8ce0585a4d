package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuizKind string

const (
	KindTopicQuiz QuizKind = "topic"
	KindMockTest  QuizKind = "mock"
)

// QuizRecord archives one completed quiz session. The live QuizSession is
// discarded after completion; this row is what the history views read. The
// ledger never references it.
type QuizRecord struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	ProfileID uint     `json:"profile_id" gorm:"not null;index"`
	SessionID string   `json:"session_id" gorm:"not null;size:36;uniqueIndex"`
	Subject   string   `json:"subject" gorm:"not null;size:100;index"`
	SeedTopic string   `json:"seed_topic" gorm:"size:200"`
	Kind      QuizKind `json:"kind" gorm:"not null;size:20"`

	Score          float64 `json:"score" gorm:"not null"`
	TotalQuestions int     `json:"total_questions" gorm:"not null"`

	// Per-question results, kept verbatim for review screens.
	Results datatypes.JSON `json:"results" gorm:"type:jsonb"` // []QuestionResult

	CreatedAt time.Time `json:"created_at"`
}

func (QuizRecord) TableName() string {
	return "quiz_records"
}
