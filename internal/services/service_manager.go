package services

import (
	"log/slog"

	"github.com/adaptiq/assessment-engine/internal/advisor"
	"github.com/adaptiq/assessment-engine/internal/cache"
	"github.com/adaptiq/assessment-engine/internal/events"
	"github.com/adaptiq/assessment-engine/internal/generator"
	"github.com/adaptiq/assessment-engine/internal/grader"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/syllabus"
	"github.com/adaptiq/assessment-engine/internal/utils"
)

// ServiceManager provides access to all engine services
type ServiceManager interface {
	Ledger() LedgerService
	Mastery() MasteryService
	Grading() GradingService
	Composer() ComposerService
	Session() SessionService
	Report() ReportService
}

type serviceManager struct {
	ledger   LedgerService
	mastery  MasteryService
	grading  GradingService
	composer ComposerService
	session  SessionService
	report   ReportService
}

// Dependencies bundles everything the services are built from.
type Dependencies struct {
	Repo               repositories.Repository
	Sessions           repositories.SessionStore
	Cache              cache.CacheService
	Publisher          events.EventPublisher
	Generator          generator.Generator
	Grader             grader.Grader
	Advisor            advisor.Advisor
	Catalog            syllabus.Catalog
	Logger             *slog.Logger
	Validator          *utils.Validator
	StudyMinutesPerDay int
}

func NewServiceManager(deps Dependencies) ServiceManager {
	ledger := NewLedgerService(deps.Repo, deps.Cache, deps.Publisher, deps.Logger, deps.Validator)
	mastery := NewMasteryService(deps.Repo, deps.Catalog, deps.Advisor, deps.Logger, deps.StudyMinutesPerDay)
	grading := NewGradingService(deps.Grader, deps.Logger)
	composer := NewComposerService(mastery, deps.Generator, deps.Sessions, deps.Publisher, deps.Logger, deps.Validator)
	session := NewSessionService(deps.Repo, deps.Sessions, grading, ledger, deps.Publisher, deps.Logger)
	report := NewReportService(mastery, session, deps.Logger)

	return &serviceManager{
		ledger:   ledger,
		mastery:  mastery,
		grading:  grading,
		composer: composer,
		session:  session,
		report:   report,
	}
}

func (m *serviceManager) Ledger() LedgerService     { return m.ledger }
func (m *serviceManager) Mastery() MasteryService   { return m.mastery }
func (m *serviceManager) Grading() GradingService   { return m.grading }
func (m *serviceManager) Composer() ComposerService { return m.composer }
func (m *serviceManager) Session() SessionService   { return m.session }
func (m *serviceManager) Report() ReportService     { return m.report }
