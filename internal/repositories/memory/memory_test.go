package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProfileRepo_GetOrCreateIsIdempotent(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	first, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)
	second, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestProfileRepo_GetByLearnerIDNotFound(t *testing.T) {
	repo := NewRepository()

	_, err := repo.Profile().GetByLearnerID(context.Background(), "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProfileRepo_DuplicateCreateRejected(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Profile().Create(ctx, &models.PerformanceProfile{LearnerID: "l1"}))
	err := repo.Profile().Create(ctx, &models.PerformanceProfile{LearnerID: "l1"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestProfileRepo_UpdatePersistsGoals(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	target := 75
	profile.TargetScore = &target
	require.NoError(t, repo.Profile().Update(ctx, profile))

	loaded, err := repo.Profile().GetByLearnerID(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, loaded.TargetScore)
	assert.Equal(t, 75, *loaded.TargetScore)
}

func TestEventRepo_OrderingBreaksTimestampTiesByID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for _, topic := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Event().Append(ctx, &models.AttemptEvent{
			ProfileID:  profile.ID,
			OccurredAt: at,
			Subject:    "Math",
			Topic:      topic,
			IsCorrect:  true,
		}))
	}

	eventList, err := repo.Event().ListByProfile(ctx, profile.ID, repositories.EventFilters{})
	require.NoError(t, err)
	require.Len(t, eventList, 3)
	assert.Equal(t, "first", eventList[0].Topic)
	assert.Equal(t, "third", eventList[2].Topic)
}

func TestEventRepo_SubjectFilter(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	for _, subject := range []string{"Math", "Physics", "Math"} {
		require.NoError(t, repo.Event().Append(ctx, &models.AttemptEvent{
			ProfileID:  profile.ID,
			OccurredAt: time.Now(),
			Subject:    subject,
			Topic:      "t",
		}))
	}

	math := "Math"
	eventList, err := repo.Event().ListByProfile(ctx, profile.ID, repositories.EventFilters{Subject: &math})
	require.NoError(t, err)
	assert.Len(t, eventList, 2)

	count, err := repo.Event().CountByProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestStatRepo_IncrementFoldsCorrectly(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	require.NoError(t, repo.Stat().Increment(ctx, profile.ID, "Math", "Algebra", true))
	require.NoError(t, repo.Stat().Increment(ctx, profile.ID, "Math", "Algebra", false))
	require.NoError(t, repo.Stat().Increment(ctx, profile.ID, "Math", "Algebra", true))

	stat, err := repo.Stat().Get(ctx, profile.ID, "Math", "Algebra")
	require.NoError(t, err)
	assert.Equal(t, 3, stat.Total)
	assert.Equal(t, 2, stat.Correct)
}

func TestStatRepo_ConcurrentIncrements(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	const workers = 10
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = repo.Stat().Increment(ctx, profile.ID, "Math", "Algebra", true)
			}
		}()
	}
	wg.Wait()

	stat, err := repo.Stat().Get(ctx, profile.ID, "Math", "Algebra")
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, stat.Total)
}

func TestStatRepo_SubjectScopedListing(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	require.NoError(t, repo.Stat().Increment(ctx, profile.ID, "Math", "Algebra", true))
	require.NoError(t, repo.Stat().Increment(ctx, profile.ID, "Physics", "Optics", true))

	mathStats, err := repo.Stat().ListByProfileSubject(ctx, profile.ID, "Math")
	require.NoError(t, err)
	require.Len(t, mathStats, 1)
	assert.Equal(t, "Algebra", mathStats[0].Topic)

	all, err := repo.Stat().ListByProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Event().Append(ctx, &models.AttemptEvent{
			ProfileID:  profile.ID,
			OccurredAt: time.Now(),
			Subject:    "Math",
			Topic:      "Algebra",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.Event().CountByProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "a failed transaction must leave no trace")
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	profile, err := repo.Profile().GetOrCreate(ctx, "l1")
	require.NoError(t, err)

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Event().Append(ctx, &models.AttemptEvent{
			ProfileID:  profile.ID,
			OccurredAt: time.Now(),
			Subject:    "Math",
			Topic:      "Algebra",
		}); err != nil {
			return err
		}
		return tx.Stat().Increment(ctx, profile.ID, "Math", "Algebra", true)
	})
	require.NoError(t, err)

	count, err := repo.Event().CountByProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordRepo_DuplicateSessionRejected(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	record := &models.QuizRecord{ProfileID: 1, SessionID: "s1", Subject: "Math", Kind: models.KindTopicQuiz}
	require.NoError(t, repo.Record().Create(ctx, record))

	err := repo.Record().Create(ctx, &models.QuizRecord{ProfileID: 1, SessionID: "s1"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestRecordRepo_FilterAndPaginate(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		kind := models.KindTopicQuiz
		if i%2 == 0 {
			kind = models.KindMockTest
		}
		require.NoError(t, repo.Record().Create(ctx, &models.QuizRecord{
			ProfileID: 1,
			SessionID: string(rune('a' + i)),
			Subject:   "Math",
			Kind:      kind,
			Score:     float64(i),
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}

	mock := models.KindMockTest
	records, total, err := repo.Record().ListByProfile(ctx, 1, repositories.RecordFilters{Kind: &mock})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 3)

	// newest first by default
	records, _, err = repo.Record().ListByProfile(ctx, 1, repositories.RecordFilters{Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
}
