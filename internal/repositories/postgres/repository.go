package postgres

import (
	"context"

	"github.com/adaptiq/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the PostgreSQL-backed aggregate over all engine repositories.
type Repository struct {
	db      *gorm.DB
	profile repositories.ProfileRepository
	event   repositories.EventRepository
	stat    repositories.StatRepository
	record  repositories.RecordRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		profile: NewProfilePostgreSQL(db),
		event:   NewEventPostgreSQL(db),
		stat:    NewStatPostgreSQL(db),
		record:  NewRecordPostgreSQL(db),
	}
}

func (r *Repository) Profile() repositories.ProfileRepository {
	return r.profile
}

func (r *Repository) Event() repositories.EventRepository {
	return r.event
}

func (r *Repository) Stat() repositories.StatRepository {
	return r.stat
}

func (r *Repository) Record() repositories.RecordRepository {
	return r.record
}

// WithTransaction binds all sub-repositories to a single database transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
