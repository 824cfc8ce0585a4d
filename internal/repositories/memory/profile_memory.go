package memory

import (
	"context"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	"gorm.io/gorm"
)

type profileRepo struct {
	repo   *Repository
	locked bool
}

func (p *profileRepo) Create(ctx context.Context, profile *models.PerformanceProfile) error {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	for _, existing := range p.repo.profiles {
		if existing.LearnerID == profile.LearnerID {
			return gorm.ErrDuplicatedKey
		}
	}

	profile.ID = p.repo.nextProfileID
	p.repo.nextProfileID++
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	clone := *profile
	p.repo.profiles[profile.ID] = &clone
	return nil
}

func (p *profileRepo) GetByID(ctx context.Context, id uint) (*models.PerformanceProfile, error) {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	profile, ok := p.repo.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *profile
	return &clone, nil
}

func (p *profileRepo) GetByLearnerID(ctx context.Context, learnerID string) (*models.PerformanceProfile, error) {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	return p.findByLearnerID(learnerID)
}

func (p *profileRepo) GetOrCreate(ctx context.Context, learnerID string) (*models.PerformanceProfile, error) {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	if profile, err := p.findByLearnerID(learnerID); err == nil {
		return profile, nil
	}

	now := time.Now()
	profile := &models.PerformanceProfile{
		ID:        p.repo.nextProfileID,
		LearnerID: learnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.repo.nextProfileID++
	p.repo.profiles[profile.ID] = profile

	clone := *profile
	return &clone, nil
}

func (p *profileRepo) Update(ctx context.Context, profile *models.PerformanceProfile) error {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	if _, ok := p.repo.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	profile.UpdatedAt = time.Now()
	clone := *profile
	p.repo.profiles[profile.ID] = &clone
	return nil
}

func (p *profileRepo) Delete(ctx context.Context, id uint) error {
	unlock := lockUnless(p.repo, p.locked)
	defer unlock()

	delete(p.repo.profiles, id)
	return nil
}

func (p *profileRepo) findByLearnerID(learnerID string) (*models.PerformanceProfile, error) {
	for _, profile := range p.repo.profiles {
		if profile.LearnerID == learnerID {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
