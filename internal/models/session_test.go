package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWith(questions int) *QuizSession {
	session := &QuizSession{
		ID:        "s1",
		LearnerID: "l1",
		Subject:   "Math",
		State:     SessionActive,
	}
	for i := 0; i < questions; i++ {
		session.Questions = append(session.Questions, Question{
			Text:          "q",
			Type:          ShortAnswer,
			Topic:         "Algebra",
			CorrectAnswer: "a",
		})
	}
	return session
}

func TestQuizSession_AdvanceCompletesOnLastQuestion(t *testing.T) {
	session := sessionWith(2)

	require.NotNil(t, session.CurrentQuestion())

	session.Advance(QuestionResult{Score: 1.0, IsCorrect: true})
	assert.Equal(t, SessionActive, session.State)
	assert.Equal(t, 1, session.CurrentIndex)

	session.Advance(QuestionResult{Score: 0.5})
	assert.Equal(t, SessionComplete, session.State)
	assert.Nil(t, session.CurrentQuestion())
}

func TestQuizSession_CurrentQuestionNilOutsideActive(t *testing.T) {
	session := sessionWith(1)
	session.State = SessionSetup
	assert.Nil(t, session.CurrentQuestion())

	session.State = SessionComplete
	assert.Nil(t, session.CurrentQuestion())
}

func TestQuizSession_Summarize(t *testing.T) {
	session := sessionWith(4)
	session.Advance(QuestionResult{Score: 1.0, IsCorrect: true})
	session.Advance(QuestionResult{Score: 0.5})
	session.Advance(QuestionResult{Score: 0.0})

	summary := session.Summarize()
	assert.Equal(t, 3, summary.Answered)
	assert.Equal(t, 1.5, summary.TotalScore)
	assert.Equal(t, 4.0, summary.MaxScore)
	assert.Equal(t, 37.5, summary.Percentage)
}

func TestQuizSession_SummarizeEmpty(t *testing.T) {
	session := &QuizSession{ID: "s1", State: SessionActive}
	summary := session.Summarize()
	assert.Equal(t, 0.0, summary.Percentage)
}

func TestTopicStat_Accuracy(t *testing.T) {
	assert.Equal(t, 0.0, TopicStat{}.Accuracy())
	assert.Equal(t, 50.0, TopicStat{Correct: 1, Total: 2}.Accuracy())
	assert.Equal(t, 66.67, TopicStat{Correct: 2, Total: 3}.Accuracy())
}

func TestQuestion_Options(t *testing.T) {
	q := Question{
		Type:          MCQ,
		CorrectAnswer: "A",
		Distractors:   []string{"B", "C", "D"},
	}
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, q.Options())

	open := Question{Type: ShortAnswer, CorrectAnswer: "A"}
	assert.Nil(t, open.Options())
}

func TestQuestion_OptionsOrderIsStablePerQuestion(t *testing.T) {
	q := Question{
		Text:          "Which planet is closest to the sun?",
		Type:          MCQ,
		CorrectAnswer: "Mercury",
		Distractors:   []string{"Venus", "Earth", "Mars"},
	}
	assert.Equal(t, q.Options(), q.Options())
}

func TestQuestion_OptionsAnswerPositionVaries(t *testing.T) {
	// The answer must not sit at a fixed index across questions, or the
	// option list gives it away.
	positions := make(map[int]bool)
	for i := 0; i < 20; i++ {
		q := Question{
			Text:          fmt.Sprintf("Question number %d?", i),
			Type:          MCQ,
			CorrectAnswer: "right",
			Distractors:   []string{"wrong-a", "wrong-b", "wrong-c"},
		}
		for idx, opt := range q.Options() {
			if opt == "right" {
				positions[idx] = true
			}
		}
	}
	assert.Greater(t, len(positions), 1)
}
