package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of engine events
type EventType string

const (
	// Ledger events
	EventAttemptRecorded EventType = "attempt.recorded"

	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// Grading events
	EventGradingDegraded EventType = "grading.degraded"
)

// EngineEvent is the base event structure for all engine events
type EngineEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Ledger event payloads

type AttemptRecordedEvent struct {
	LearnerID  string    `json:"learner_id"`
	Subject    string    `json:"subject"`
	Topic      string    `json:"topic"`
	IsCorrect  bool      `json:"is_correct"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID     string    `json:"session_id"`
	LearnerID     string    `json:"learner_id"`
	Subject       string    `json:"subject"`
	SeedTopic     string    `json:"seed_topic,omitempty"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	LearnerID      string    `json:"learner_id"`
	Subject        string    `json:"subject"`
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Grading event payloads

type GradingDegradedEvent struct {
	SessionID  string    `json:"session_id"`
	LearnerID  string    `json:"learner_id"`
	Topic      string    `json:"topic"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event factory functions

func NewAttemptRecordedEvent(learnerID, subject, topic string, isCorrect bool, recordedAt time.Time) *EngineEvent {
	return &EngineEvent{
		ID:        generateEventID(),
		Type:      EventAttemptRecorded,
		Timestamp: time.Now(),
		Source:    "assessment-engine",
		Version:   "1.0",
		Data: AttemptRecordedEvent{
			LearnerID:  learnerID,
			Subject:    subject,
			Topic:      topic,
			IsCorrect:  isCorrect,
			RecordedAt: recordedAt,
		},
	}
}

func NewSessionStartedEvent(sessionID, learnerID, subject, seedTopic string, questionCount int) *EngineEvent {
	return &EngineEvent{
		ID:        generateEventID(),
		Type:      EventSessionStarted,
		Timestamp: time.Now(),
		Source:    "assessment-engine",
		Version:   "1.0",
		Data: SessionStartedEvent{
			SessionID:     sessionID,
			LearnerID:     learnerID,
			Subject:       subject,
			SeedTopic:     seedTopic,
			QuestionCount: questionCount,
			StartedAt:     time.Now(),
		},
	}
}

func NewSessionCompletedEvent(sessionID, learnerID, subject string, score float64, totalQuestions int, percentage float64) *EngineEvent {
	return &EngineEvent{
		ID:        generateEventID(),
		Type:      EventSessionCompleted,
		Timestamp: time.Now(),
		Source:    "assessment-engine",
		Version:   "1.0",
		Data: SessionCompletedEvent{
			SessionID:      sessionID,
			LearnerID:      learnerID,
			Subject:        subject,
			Score:          score,
			TotalQuestions: totalQuestions,
			Percentage:     percentage,
			CompletedAt:    time.Now(),
		},
	}
}

func NewGradingDegradedEvent(sessionID, learnerID, topic, reason string) *EngineEvent {
	return &EngineEvent{
		ID:        generateEventID(),
		Type:      EventGradingDegraded,
		Timestamp: time.Now(),
		Source:    "assessment-engine",
		Version:   "1.0",
		Data: GradingDegradedEvent{
			SessionID:  sessionID,
			LearnerID:  learnerID,
			Topic:      topic,
			Reason:     reason,
			OccurredAt: time.Now(),
		},
	}
}

// Helper function to generate unique event IDs
func generateEventID() string {
	return uuid.NewString()
}

// GenerateEventID is the exported version for external use
func GenerateEventID() string {
	return generateEventID()
}
