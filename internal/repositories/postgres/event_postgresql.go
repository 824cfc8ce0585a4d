package postgres

import (
	"context"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type EventPostgreSQL struct {
	db *gorm.DB
}

func NewEventPostgreSQL(db *gorm.DB) repositories.EventRepository {
	return &EventPostgreSQL{db: db}
}

func (e *EventPostgreSQL) Append(ctx context.Context, event *models.AttemptEvent) error {
	return e.db.WithContext(ctx).Create(event).Error
}

func (e *EventPostgreSQL) ListByProfile(ctx context.Context, profileID uint, filters repositories.EventFilters) ([]*models.AttemptEvent, error) {
	var events []*models.AttemptEvent

	query := e.db.WithContext(ctx).
		Model(&models.AttemptEvent{}).
		Where("profile_id = ?", profileID)
	query = e.applyFilters(query, filters)

	// id breaks ties so replay order matches insertion order
	order := "occurred_at ASC, id ASC"
	if filters.SortOrder == "desc" {
		order = "occurred_at DESC, id DESC"
	}
	query = query.Order(order)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (e *EventPostgreSQL) CountByProfile(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.AttemptEvent{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (e *EventPostgreSQL) applyFilters(query *gorm.DB, filters repositories.EventFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.DateFrom != nil {
		query = query.Where("occurred_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("occurred_at <= ?", *filters.DateTo)
	}
	return query
}
