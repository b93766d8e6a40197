package app

import (
	"database/sql"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/config"
	"github.com/uangsakti/uangsakti/internal/event_bus"
	"github.com/uangsakti/uangsakti/internal/utils"
	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/goal"
	"github.com/uangsakti/uangsakti/pkg/media"
	"github.com/uangsakti/uangsakti/pkg/report"
	"github.com/uangsakti/uangsakti/pkg/transaction"
	"github.com/uangsakti/uangsakti/pkg/user"
)

// Dependencies holds all stores, services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	Uploader media.Uploader

	CategoryRepo    category.Repo
	CategoryStore   *category.Store
	CategoryHandler *category.Handler

	TransactionRepo    transaction.Repo
	TransactionStore   *transaction.Store
	TransactionHandler *transaction.Handler

	BudgetRepo    budget.Repo
	BudgetStore   *budget.Store
	BudgetHandler *budget.Handler

	GoalRepo    goal.Repo
	GoalStore   *goal.Store
	GoalHandler *goal.Handler

	ReportService     *report.ServiceImpl
	CsvReportRenderer *report.CsvReportRendererImpl
	ReportHandler     *report.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application stores, services
// and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()

	tokenTTL := time.Duration(cfg.Auth.TokenTTLMins) * time.Minute
	deps.UserService = user.NewUserService(user.NewUserRepo(db), cfg.Auth.Secret, tokenTTL)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.Uploader = media.NewCloudinaryUploader(cfg.Media)

	deps.CategoryRepo = category.NewCategoryRepo(db)
	deps.CategoryStore = category.NewStore(deps.CategoryRepo, deps.EventBus)
	deps.CategoryHandler = category.NewHandler(deps.CategoryStore)

	deps.TransactionRepo = transaction.NewTransactionRepo(db)
	deps.TransactionStore = transaction.NewStore(deps.TransactionRepo, deps.EventBus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionStore, deps.Uploader)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetStore = budget.NewStore(deps.BudgetRepo)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetStore)

	deps.GoalRepo = goal.NewGoalRepo(db)
	deps.GoalStore = goal.NewStore(deps.GoalRepo, deps.EventBus)
	deps.GoalHandler = goal.NewHandler(deps.GoalStore)

	deps.Clock = &utils.SystemClock{}
	deps.ReportService = report.NewService(deps.TransactionStore, deps.BudgetStore, deps.Clock)
	deps.CsvReportRenderer = report.NewCsvReportRenderer()
	deps.ReportHandler = report.NewHandler(deps.ReportService, deps.CsvReportRenderer)

	event_bus.SubscribeTyped(deps.EventBus, event_bus.EventTypeGoalAchieved,
		func(e event_bus.EventT[event_bus.GoalAchieved]) error {
			log.Infof("Goal achieved: %s (%s)", e.Data.Name, e.Data.GoalID)
			return nil
		})

	return deps
}
