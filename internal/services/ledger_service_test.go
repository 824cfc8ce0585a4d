package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/adaptiq/assessment-engine/internal/cache"
	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/repositories/memory"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(t *testing.T) (LedgerService, *memory.Repository, *events.MockEventPublisher) {
	t.Helper()
	repo := memory.NewRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	ledger := NewLedgerService(repo, cache.NewMemoryCache(), publisher, testLogger(), utils.NewValidator())
	return ledger, repo, publisher
}

func TestRecordAttempt_CreatesProfileAndStats(t *testing.T) {
	ledger, _, publisher := newTestLedger(t)
	ctx := context.Background()

	err := ledger.RecordAttempt(ctx, RecordAttemptRequest{
		LearnerID: "learner-1",
		Subject:   "Physics",
		Topic:     "Optics",
		IsCorrect: true,
	})
	require.NoError(t, err)

	err = ledger.RecordAttempt(ctx, RecordAttemptRequest{
		LearnerID: "learner-1",
		Subject:   "Physics",
		Topic:     "Optics",
		IsCorrect: false,
	})
	require.NoError(t, err)

	stats, err := ledger.GetTopicStats(ctx, "learner-1", "Physics")
	require.NoError(t, err)
	require.Contains(t, stats, "Optics")
	assert.Equal(t, 2, stats["Optics"].Total)
	assert.Equal(t, 1, stats["Optics"].Correct)
	assert.Equal(t, 50.0, stats["Optics"].Accuracy())

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventAttemptRecorded, published[0].Type)
}

func TestRecordAttempt_RejectsBlankFields(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RecordAttemptRequest
	}{
		{"empty learner", RecordAttemptRequest{Subject: "Physics", Topic: "Optics"}},
		{"empty subject", RecordAttemptRequest{LearnerID: "l1", Topic: "Optics"}},
		{"empty topic", RecordAttemptRequest{LearnerID: "l1", Subject: "Physics"}},
		{"whitespace subject", RecordAttemptRequest{LearnerID: "l1", Subject: "   ", Topic: "Optics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.RecordAttempt(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
		})
	}
}

func TestRecordAttempt_TrimsInput(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	err := ledger.RecordAttempt(ctx, RecordAttemptRequest{
		LearnerID: "  learner-1  ",
		Subject:   " Physics ",
		Topic:     " Optics ",
		IsCorrect: true,
	})
	require.NoError(t, err)

	stats, err := ledger.GetTopicStats(ctx, "learner-1", "Physics")
	require.NoError(t, err)
	assert.Contains(t, stats, "Optics")
}

func TestRecordAttempt_ConcurrentWritersKeepStatsConsistent(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = ledger.RecordAttempt(ctx, RecordAttemptRequest{
					LearnerID: "learner-1",
					Subject:   "Math",
					Topic:     "Algebra",
					IsCorrect: true,
				})
			}
		}()
	}
	wg.Wait()

	stats, err := ledger.GetTopicStats(ctx, "learner-1", "Math")
	require.NoError(t, err)
	require.Contains(t, stats, "Algebra")
	assert.Equal(t, writers*perWriter, stats["Algebra"].Total)
	assert.Equal(t, writers*perWriter, stats["Algebra"].Correct)
}

func TestGetTopicStats_UnknownLearnerReturnsEmptyMap(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	stats, err := ledger.GetTopicStats(context.Background(), "nobody", "Physics")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestGetAttemptDates_CollapsesSameDay(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	for _, at := range []time.Time{day, day.Add(2 * time.Hour), day.AddDate(0, 0, 1)} {
		at := at
		err := ledger.RecordAttempt(ctx, RecordAttemptRequest{
			LearnerID:  "learner-1",
			Subject:    "Physics",
			Topic:      "Optics",
			IsCorrect:  true,
			OccurredAt: &at,
		})
		require.NoError(t, err)
	}

	dates, err := ledger.GetAttemptDates(ctx, "learner-1", nil)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Before(dates[1]))
}

func TestSetGoals_RoundTrip(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	target := 85
	exam := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	profile, err := ledger.SetGoals(ctx, SetGoalsRequest{
		LearnerID:   "learner-1",
		TargetScore: &target,
		ExamDate:    &exam,
	})
	require.NoError(t, err)
	require.NotNil(t, profile.TargetScore)
	assert.Equal(t, 85, *profile.TargetScore)

	loaded, err := ledger.GetProfile(ctx, "learner-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.TargetScore)
	assert.Equal(t, 85, *loaded.TargetScore)
	require.NotNil(t, loaded.ExamDate)
	assert.True(t, exam.Equal(*loaded.ExamDate))
}

func TestSetGoals_RejectsOutOfRangeTarget(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	target := 150
	_, err := ledger.SetGoals(context.Background(), SetGoalsRequest{
		LearnerID:   "learner-1",
		TargetScore: &target,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGetProfile_UnknownLearner(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.GetProfile(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
