package postgres

import (
	"context"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type RecordPostgreSQL struct {
	db *gorm.DB
}

func NewRecordPostgreSQL(db *gorm.DB) repositories.RecordRepository {
	return &RecordPostgreSQL{db: db}
}

func (r *RecordPostgreSQL) Create(ctx context.Context, record *models.QuizRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *RecordPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.QuizRecord, error) {
	var record models.QuizRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordPostgreSQL) ListByProfile(ctx context.Context, profileID uint, filters repositories.RecordFilters) ([]*models.QuizRecord, int64, error) {
	var records []*models.QuizRecord
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).
		Model(&models.QuizRecord{}).
		Where("profile_id = ?", profileID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = r.applyPaginationAndSort(query, filters)

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *RecordPostgreSQL) applyFilters(query *gorm.DB, filters repositories.RecordFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (r *RecordPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.RecordFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "score":
	default:
		sortBy = "created_at"
	}

	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
