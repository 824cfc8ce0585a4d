package postgres

import (
	"context"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatPostgreSQL struct {
	db *gorm.DB
}

func NewStatPostgreSQL(db *gorm.DB) repositories.StatRepository {
	return &StatPostgreSQL{db: db}
}

// Increment upserts the rollup row for (profile, subject, topic). The
// ON CONFLICT arithmetic runs inside the database, so concurrent increments
// for the same key never lose updates.
func (s *StatPostgreSQL) Increment(ctx context.Context, profileID uint, subject, topic string, isCorrect bool) error {
	correctDelta := 0
	if isCorrect {
		correctDelta = 1
	}

	stat := models.TopicStat{
		ProfileID: profileID,
		Subject:   subject,
		Topic:     topic,
		Total:     1,
		Correct:   correctDelta,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "profile_id"},
			{Name: "subject"},
			{Name: "topic"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total":   gorm.Expr("topic_stats.total + 1"),
			"correct": gorm.Expr("topic_stats.correct + ?", correctDelta),
		}),
	}).Create(&stat).Error
}

func (s *StatPostgreSQL) Get(ctx context.Context, profileID uint, subject, topic string) (*models.TopicStat, error) {
	var stat models.TopicStat
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND subject = ? AND topic = ?", profileID, subject, topic).
		First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

func (s *StatPostgreSQL) ListByProfile(ctx context.Context, profileID uint) ([]*models.TopicStat, error) {
	var stats []*models.TopicStat
	if err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("subject ASC, id ASC").
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *StatPostgreSQL) ListByProfileSubject(ctx context.Context, profileID uint, subject string) ([]*models.TopicStat, error) {
	var stats []*models.TopicStat
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND subject = ?", profileID, subject).
		Order("id ASC").
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
