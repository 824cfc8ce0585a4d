package memory

import (
	"context"
	"sync"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
)

// Repository is an in-memory implementation of repositories.Repository. It
// backs tests and local development; a single mutex guards all tables, which
// also gives WithTransaction its atomicity.
type Repository struct {
	mu sync.Mutex

	profiles map[uint]*models.PerformanceProfile
	events   []*models.AttemptEvent
	stats    map[uint]map[string]*models.TopicStat // profileID -> subject\x00topic
	records  map[string]*models.QuizRecord         // keyed by session ID

	nextProfileID uint
	nextEventID   uint
	nextStatID    uint
	nextRecordID  uint
}

func NewRepository() *Repository {
	return &Repository{
		profiles:      make(map[uint]*models.PerformanceProfile),
		stats:         make(map[uint]map[string]*models.TopicStat),
		records:       make(map[string]*models.QuizRecord),
		nextProfileID: 1,
		nextEventID:   1,
		nextStatID:    1,
		nextRecordID:  1,
	}
}

func statKey(subject, topic string) string {
	return subject + "\x00" + topic
}

func (r *Repository) Profile() repositories.ProfileRepository {
	return &profileRepo{repo: r}
}

func (r *Repository) Event() repositories.EventRepository {
	return &eventRepo{repo: r}
}

func (r *Repository) Stat() repositories.StatRepository {
	return &statRepo{repo: r}
}

func (r *Repository) Record() repositories.RecordRepository {
	return &recordRepo{repo: r}
}

// WithTransaction holds the lock for the whole unit, so fn observes and
// mutates a consistent snapshot. fn receives a view that skips re-locking.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&lockedView{repo: r})
}

func (r *Repository) Ping(ctx context.Context) error { return nil }
func (r *Repository) Close() error                   { return nil }

// lockedView is handed out by WithTransaction while the lock is already held.
type lockedView struct {
	repo *Repository
}

func (v *lockedView) Profile() repositories.ProfileRepository {
	return &profileRepo{repo: v.repo, locked: true}
}

func (v *lockedView) Event() repositories.EventRepository {
	return &eventRepo{repo: v.repo, locked: true}
}

func (v *lockedView) Stat() repositories.StatRepository {
	return &statRepo{repo: v.repo, locked: true}
}

func (v *lockedView) Record() repositories.RecordRepository {
	return &recordRepo{repo: v.repo, locked: true}
}

func (v *lockedView) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return fn(v)
}

func (v *lockedView) Ping(ctx context.Context) error { return nil }
func (v *lockedView) Close() error                   { return nil }

// lockUnless takes the repository lock unless the caller already holds it,
// returning the matching unlock.
func lockUnless(r *Repository, locked bool) func() {
	if locked {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}
