package postgres

import (
	"context"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) Create(ctx context.Context, profile *models.PerformanceProfile) error {
	return p.db.WithContext(ctx).Create(profile).Error
}

func (p *ProfilePostgreSQL) GetByID(ctx context.Context, id uint) (*models.PerformanceProfile, error) {
	var profile models.PerformanceProfile
	if err := p.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) GetByLearnerID(ctx context.Context, learnerID string) (*models.PerformanceProfile, error) {
	var profile models.PerformanceProfile
	if err := p.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) GetOrCreate(ctx context.Context, learnerID string) (*models.PerformanceProfile, error) {
	var profile models.PerformanceProfile
	if err := p.db.WithContext(ctx).
		Where(models.PerformanceProfile{LearnerID: learnerID}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) Update(ctx context.Context, profile *models.PerformanceProfile) error {
	return p.db.WithContext(ctx).Save(profile).Error
}

func (p *ProfilePostgreSQL) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Delete(&models.PerformanceProfile{}, id).Error
}
