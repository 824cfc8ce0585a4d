package memory

import (
	"context"
	"sort"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	"gorm.io/gorm"
)

type statRepo struct {
	repo   *Repository
	locked bool
}

func (s *statRepo) Increment(ctx context.Context, profileID uint, subject, topic string, isCorrect bool) error {
	unlock := lockUnless(s.repo, s.locked)
	defer unlock()

	byKey, ok := s.repo.stats[profileID]
	if !ok {
		byKey = make(map[string]*models.TopicStat)
		s.repo.stats[profileID] = byKey
	}

	key := statKey(subject, topic)
	stat, ok := byKey[key]
	if !ok {
		stat = &models.TopicStat{
			ID:        s.repo.nextStatID,
			ProfileID: profileID,
			Subject:   subject,
			Topic:     topic,
		}
		s.repo.nextStatID++
		byKey[key] = stat
	}

	stat.Total++
	if isCorrect {
		stat.Correct++
	}
	stat.UpdatedAt = time.Now()
	return nil
}

func (s *statRepo) Get(ctx context.Context, profileID uint, subject, topic string) (*models.TopicStat, error) {
	unlock := lockUnless(s.repo, s.locked)
	defer unlock()

	stat, ok := s.repo.stats[profileID][statKey(subject, topic)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *stat
	return &clone, nil
}

func (s *statRepo) ListByProfile(ctx context.Context, profileID uint) ([]*models.TopicStat, error) {
	unlock := lockUnless(s.repo, s.locked)
	defer unlock()

	return s.collect(profileID, nil), nil
}

func (s *statRepo) ListByProfileSubject(ctx context.Context, profileID uint, subject string) ([]*models.TopicStat, error) {
	unlock := lockUnless(s.repo, s.locked)
	defer unlock()

	return s.collect(profileID, &subject), nil
}

// collect returns stat clones ordered by ID, which matches creation order.
func (s *statRepo) collect(profileID uint, subject *string) []*models.TopicStat {
	var stats []*models.TopicStat
	for _, stat := range s.repo.stats[profileID] {
		if subject != nil && stat.Subject != *subject {
			continue
		}
		clone := *stat
		stats = append(stats, &clone)
	}
	sort.Slice(stats, func(i, j int) bool {
		if subject == nil && stats[i].Subject != stats[j].Subject {
			return stats[i].Subject < stats[j].Subject
		}
		return stats[i].ID < stats[j].ID
	})
	return stats
}
