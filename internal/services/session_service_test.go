package services

import (
	"context"
	"testing"
	"time"

	"github.com/adaptiq/assessment-engine/internal/cache"
	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/grader"
	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/repositories/memory"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	repo      *memory.Repository
	sessions  repositories.SessionStore
	service   SessionService
	ledger    LedgerService
	publisher *events.MockEventPublisher
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	repo := memory.NewRepository()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	sessions := repositories.NewMemorySessionStore()

	ledger := NewLedgerService(repo, cache.NewMemoryCache(), publisher, logger, utils.NewValidator())
	grading := NewGradingService(&grader.MockGrader{}, logger)

	return &sessionFixture{
		repo:      repo,
		sessions:  sessions,
		service:   NewSessionService(repo, sessions, grading, ledger, publisher, logger),
		ledger:    ledger,
		publisher: publisher,
	}
}

func (f *sessionFixture) openSession(t *testing.T, questions ...models.Question) *models.QuizSession {
	t.Helper()
	session := &models.QuizSession{
		ID:        "session-1",
		LearnerID: "l1",
		Subject:   "Physics",
		SeedTopic: "Optics",
		Kind:      models.KindTopicQuiz,
		State:     models.SessionActive,
		Questions: questions,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.sessions.Save(context.Background(), session))
	return session
}

func twoMCQs() []models.Question {
	return []models.Question{
		{
			Text: "Q1", Type: models.MCQ, Topic: "Optics",
			Difficulty: models.DifficultyEasy, CorrectAnswer: "A",
			Distractors: []string{"B", "C", "D"},
		},
		{
			Text: "Q2", Type: models.MCQ, Topic: "Waves",
			Difficulty: models.DifficultyMedium, CorrectAnswer: "X",
			Distractors: []string{"Y", "Z", "W"},
		},
	}
}

func TestGetCurrentQuestion_WithholdsAnswer(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()...)

	question, err := f.service.GetCurrentQuestion(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", question.Text)
	assert.Equal(t, 0, question.Index)
	assert.Equal(t, 2, question.Total)
	assert.Len(t, question.Options, 4)
	assert.Contains(t, question.Options, "A")
}

func TestSubmitAnswer_WalksSessionToCompletion(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()...)
	ctx := context.Background()

	first, err := f.service.SubmitAnswer(ctx, "session-1", "A")
	require.NoError(t, err)
	assert.True(t, first.Result.IsCorrect)
	assert.Equal(t, models.SessionActive, first.State)
	assert.Equal(t, 1, first.NextIndex)
	assert.Equal(t, 1, first.Remaining)

	second, err := f.service.SubmitAnswer(ctx, "session-1", "wrong")
	require.NoError(t, err)
	assert.False(t, second.Result.IsCorrect)
	assert.Equal(t, models.SessionComplete, second.State)
	assert.Equal(t, 0, second.Remaining)

	// every answer lands in the ledger
	stats, err := f.ledger.GetTopicStats(ctx, "l1", "Physics")
	require.NoError(t, err)
	assert.Equal(t, 1, stats["Optics"].Correct)
	assert.Equal(t, 1, stats["Waves"].Total)
	assert.Equal(t, 0, stats["Waves"].Correct)
}

func TestSubmitAnswer_CompletionArchivesRecord(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()...)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, "session-1", "A")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, "session-1", "X")
	require.NoError(t, err)

	records, total, err := f.service.GetHistory(ctx, "l1", repositories.RecordFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "session-1", records[0].SessionID)
	assert.Equal(t, 2.0, records[0].Score)
	assert.Equal(t, 2, records[0].TotalQuestions)

	var sawCompleted bool
	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionCompleted {
			sawCompleted = true
		}
	}
	assert.True(t, sawCompleted)
}

func TestSubmitAnswer_CompleteSessionRejected(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()[:1]...)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, "session-1", "A")
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, "session-1", "A")
	require.ErrorIs(t, err, ErrSessionComplete)
	assert.True(t, IsInvalidState(err))
}

func TestSubmitAnswer_UnknownSession(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.service.SubmitAnswer(context.Background(), "missing", "A")
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFound(err))
}

func TestGetSummary_ReflectsScores(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()...)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, "session-1", "A")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, "session-1", "nope")
	require.NoError(t, err)

	summary, err := f.service.GetSummary(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Answered)
	assert.Equal(t, 1.0, summary.TotalScore)
	assert.Equal(t, 2.0, summary.MaxScore)
	assert.Equal(t, 50.0, summary.Percentage)
}

func TestAbandonSession_RemovesFromStore(t *testing.T) {
	f := newSessionFixture(t)
	f.openSession(t, twoMCQs()...)
	ctx := context.Background()

	// record one answer before abandoning
	_, err := f.service.SubmitAnswer(ctx, "session-1", "A")
	require.NoError(t, err)

	require.NoError(t, f.service.AbandonSession(ctx, "session-1"))

	_, err = f.service.GetSession(ctx, "session-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// the recorded attempt survives the abandon
	stats, err := f.ledger.GetTopicStats(ctx, "l1", "Physics")
	require.NoError(t, err)
	assert.Equal(t, 1, stats["Optics"].Total)
}

func TestGetHistory_UnknownLearnerIsEmpty(t *testing.T) {
	f := newSessionFixture(t)

	records, total, err := f.service.GetHistory(context.Background(), "nobody", repositories.RecordFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}
