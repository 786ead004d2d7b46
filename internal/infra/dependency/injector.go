// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/budget-sync/config"
	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/application/usecase/budget"
	"github.com/finance-tracker/budget-sync/internal/infra/cache"
	transactionimport "github.com/finance-tracker/budget-sync/internal/application/usecase/transaction_import"
	"github.com/finance-tracker/budget-sync/internal/infra/metrics"
	"github.com/finance-tracker/budget-sync/internal/infra/scheduler"
	"github.com/finance-tracker/budget-sync/internal/infra/server/router"
	"github.com/finance-tracker/budget-sync/internal/integration/adapters"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/budget-sync/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config            *config.Config
	DB                *gorm.DB
	Router            *router.Router
	Metrics           *metrics.Metrics
	Scheduler         *scheduler.BudgetScheduler
	ImportRateLimiter *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// A nil redisClient makes imports run without the cross-process lock.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, dbHealthChecker func() bool) *Injector {
	// Create storage
	uow := persistence.NewUnitOfWork(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)

	var importLock adapter.ImportLock = adapters.NoopImportLock{}
	var lockHealthChecker func() bool
	if redisClient != nil {
		importLock = adapters.NewRedisImportLock(redisClient, cfg.Import.LockTTL)
		lockHealthChecker = cache.HealthChecker(redisClient)
	} else {
		slog.Warn("Redis disabled, imports are not serialized across instances")
	}

	var m *metrics.Metrics
	var importMetrics adapter.ImportMetrics = adapter.NopImportMetrics{}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		importMetrics = m
	}

	// Create use cases
	importUseCase := transactionimport.NewImportTransactionsUseCase(uow, importLock, importMetrics, cfg.Import.MaxRows)
	materializeUseCase := budget.NewMaterializeMonthUseCase(uow, importMetrics)

	// Create controllers
	healthController := controller.NewHealthController(dbHealthChecker, lockHealthChecker)
	importController := controller.NewImportController(importUseCase, cfg.Import.MaxUploadBytes)
	budgetController := controller.NewBudgetController(materializeUseCase)

	// Create middleware
	importRateLimiter := middleware.NewRateLimiterWithConfig(cfg.Import.RateLimit, cfg.Import.RateWindow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create background jobs
	var budgetScheduler *scheduler.BudgetScheduler
	if cfg.Scheduler.Enabled {
		budgetScheduler = scheduler.NewBudgetScheduler(cfg.Scheduler.Spec, materializeUseCase, slog.Default())
		budgetScheduler.AddMaintenance("@every 5m", "import rate limiter cleanup", importRateLimiter.Cleanup)
	}

	// Create router
	r := router.NewRouter(healthController, importController, budgetController, importRateLimiter, authMiddleware, m)

	return &Injector{
		Config:            cfg,
		DB:                db,
		Router:            r,
		Metrics:           m,
		Scheduler:         budgetScheduler,
		ImportRateLimiter: importRateLimiter,
	}
}
