package memory

import (
	"context"
	"sort"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
)

type eventRepo struct {
	repo   *Repository
	locked bool
}

func (e *eventRepo) Append(ctx context.Context, event *models.AttemptEvent) error {
	unlock := lockUnless(e.repo, e.locked)
	defer unlock()

	event.ID = e.repo.nextEventID
	e.repo.nextEventID++

	clone := *event
	e.repo.events = append(e.repo.events, &clone)
	return nil
}

func (e *eventRepo) ListByProfile(ctx context.Context, profileID uint, filters repositories.EventFilters) ([]*models.AttemptEvent, error) {
	unlock := lockUnless(e.repo, e.locked)
	defer unlock()

	var matched []*models.AttemptEvent
	for _, event := range e.repo.events {
		if event.ProfileID != profileID {
			continue
		}
		if filters.Subject != nil && event.Subject != *filters.Subject {
			continue
		}
		if filters.Topic != nil && event.Topic != *filters.Topic {
			continue
		}
		if filters.DateFrom != nil && event.OccurredAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && event.OccurredAt.After(*filters.DateTo) {
			continue
		}
		clone := *event
		matched = append(matched, &clone)
	}

	// events slice is already in insertion order; stable-sort by timestamp
	// keeps the same-instant ordering guarantee
	sortEventsByOccurrence(matched, filters.SortOrder == "desc")

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

func (e *eventRepo) CountByProfile(ctx context.Context, profileID uint) (int64, error) {
	unlock := lockUnless(e.repo, e.locked)
	defer unlock()

	var count int64
	for _, event := range e.repo.events {
		if event.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

func sortEventsByOccurrence(events []*models.AttemptEvent, desc bool) {
	less := func(a, b *models.AttemptEvent) bool {
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.ID < b.ID
	}
	sort.SliceStable(events, func(i, j int) bool {
		if desc {
			return less(events[j], events[i])
		}
		return less(events[i], events[j])
	})
}
