package memory

import (
	"context"
	"sort"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type recordRepo struct {
	repo   *Repository
	locked bool
}

func (r *recordRepo) Create(ctx context.Context, record *models.QuizRecord) error {
	unlock := lockUnless(r.repo, r.locked)
	defer unlock()

	if _, exists := r.repo.records[record.SessionID]; exists {
		return gorm.ErrDuplicatedKey
	}

	record.ID = r.repo.nextRecordID
	r.repo.nextRecordID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	clone := *record
	r.repo.records[record.SessionID] = &clone
	return nil
}

func (r *recordRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.QuizRecord, error) {
	unlock := lockUnless(r.repo, r.locked)
	defer unlock()

	record, ok := r.repo.records[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *recordRepo) ListByProfile(ctx context.Context, profileID uint, filters repositories.RecordFilters) ([]*models.QuizRecord, int64, error) {
	unlock := lockUnless(r.repo, r.locked)
	defer unlock()

	var matched []*models.QuizRecord
	for _, record := range r.repo.records {
		if record.ProfileID != profileID {
			continue
		}
		if filters.Subject != nil && record.Subject != *filters.Subject {
			continue
		}
		if filters.Kind != nil && record.Kind != *filters.Kind {
			continue
		}
		if filters.DateFrom != nil && record.CreatedAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && record.CreatedAt.After(*filters.DateTo) {
			continue
		}
		clone := *record
		matched = append(matched, &clone)
	}
	total := int64(len(matched))

	asc := filters.SortOrder == "asc"
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		if filters.SortBy == "score" {
			less = matched[i].Score < matched[j].Score
		} else {
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}
