package models

import (
	"time"
)

type SessionState string

const (
	SessionSetup    SessionState = "Setup"
	SessionActive   SessionState = "Active"
	SessionComplete SessionState = "Complete"
)

// Exact-credit threshold: only a full score counts as correct for the ledger.
// Partial credit stays visible in per-question feedback but never fractionally
// updates TopicStat.Correct.
const ExactCreditScore = 1.0

// QuestionResult records the outcome of one answered question. Appended
// exactly once per question, in question order.
type QuestionResult struct {
	Question   Question `json:"question"`
	UserAnswer string   `json:"user_answer"`
	Score      float64  `json:"score"` // 0, 0.5 or 1.0
	IsCorrect  bool     `json:"is_correct"`
	Feedback   string   `json:"feedback"`
}

// QuizSession is the state machine for one quiz attempt. Questions are fixed
// at composition time; CurrentIndex only ever moves forward.
type QuizSession struct {
	ID        string       `json:"id"`
	LearnerID string       `json:"learner_id"`
	Subject   string       `json:"subject"`
	SeedTopic string       `json:"seed_topic"`
	Kind      QuizKind     `json:"kind"`
	State     SessionState `json:"state"`

	Questions    []Question       `json:"questions"`
	CurrentIndex int              `json:"current_index"`
	Results      []QuestionResult `json:"results"`

	CreatedAt time.Time `json:"created_at"`
}

// CurrentQuestion returns the question awaiting an answer, or nil when the
// session is not Active.
func (s *QuizSession) CurrentQuestion() *Question {
	if s.State != SessionActive || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// Advance appends a result, moves the cursor forward and flips the session to
// Complete once every question has been answered.
func (s *QuizSession) Advance(result QuestionResult) {
	s.Results = append(s.Results, result)
	s.CurrentIndex++
	if s.CurrentIndex >= len(s.Questions) {
		s.State = SessionComplete
	}
}

// SessionSummary is the aggregate reported to the caller on completion. It is
// not persisted as a ledger field; the ledger only ever sees per-attempt
// correctness booleans.
type SessionSummary struct {
	SessionID  string  `json:"session_id"`
	Subject    string  `json:"subject"`
	Answered   int     `json:"answered"`
	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`

	Results []QuestionResult `json:"results"`
}

// Summarize folds the recorded results into a SessionSummary.
func (s *QuizSession) Summarize() SessionSummary {
	total := 0.0
	for _, r := range s.Results {
		total += r.Score
	}
	max := float64(len(s.Questions))
	pct := 0.0
	if max > 0 {
		pct = total / max * 100
	}
	return SessionSummary{
		SessionID:  s.ID,
		Subject:    s.Subject,
		Answered:   len(s.Results),
		TotalScore: total,
		MaxScore:   max,
		Percentage: pct,
		Results:    s.Results,
	}
}
