// Package scheduler runs background jobs using robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finance-tracker/budget-sync/internal/application/usecase/budget"
)

// DefaultBudgetSpec runs shortly after midnight on the first day of every month.
const DefaultBudgetSpec = "5 0 1 * *"

// BudgetScheduler materializes the current month's budget for every user
// owning a default template.
type BudgetScheduler struct {
	cron    *cron.Cron
	spec    string
	useCase *budget.MaterializeMonthUseCase
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
	jobs    []maintenanceJob
}

type maintenanceJob struct {
	spec string
	name string
	fn   func()
}

// NewBudgetScheduler creates a new scheduler. An empty spec uses DefaultBudgetSpec.
func NewBudgetScheduler(spec string, useCase *budget.MaterializeMonthUseCase, logger *slog.Logger) *BudgetScheduler {
	if spec == "" {
		spec = DefaultBudgetSpec
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
	)

	return &BudgetScheduler{
		cron:    c,
		spec:    spec,
		useCase: useCase,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: 30 * time.Minute,
	}
}

// AddMaintenance registers a housekeeping job that runs on the same cron loop.
// It must be called before Start.
func (s *BudgetScheduler) AddMaintenance(spec, name string, fn func()) {
	s.jobs = append(s.jobs, maintenanceJob{spec: spec, name: name, fn: fn})
}

// Start registers the jobs and starts the cron loop.
func (s *BudgetScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	s.logger.Info("Budget scheduler started", "spec", s.spec)
	return nil
}

// Stop stops the cron loop. The returned context is done once running jobs finish.
func (s *BudgetScheduler) Stop() context.Context {
	s.logger.Info("Budget scheduler stopping")
	return s.cron.Stop()
}

// RunOnce materializes the current month synchronously.
func (s *BudgetScheduler) RunOnce(ctx context.Context) (*budget.MaterializeAllOutput, error) {
	now := s.now()
	year, month := now.Year(), int(now.Month())

	s.logger.Info("Materializing monthly budgets", "year", year, "month", month)

	out, err := s.useCase.ExecuteForAllUsers(ctx, year, month)
	if err != nil {
		s.logger.Error("Monthly budget materialization failed", "year", year, "month", month, "error", err)
		return nil, err
	}

	s.logger.Info("Monthly budget materialization completed",
		"year", year,
		"month", month,
		"users", out.Users,
		"created", out.Created,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *BudgetScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, _ = s.RunOnce(ctx)
}
