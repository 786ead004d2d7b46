package budget

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

// MaterializeMonthInput represents the input for materializing one user's month.
type MaterializeMonthInput struct {
	UserID uuid.UUID
	Year   int
	Month  int
}

// MaterializeMonthOutput represents the output of materializing one user's month.
type MaterializeMonthOutput struct {
	Created bool
	Year    int
	Month   int
}

// MaterializeAllOutput summarizes a run over every user with a default template.
type MaterializeAllOutput struct {
	Users   int
	Created int
	Failed  int
}

// MaterializeMonthUseCase handles monthly budget materialization outside of imports.
type MaterializeMonthUseCase struct {
	uow     adapter.UnitOfWork
	metrics adapter.ImportMetrics
}

// NewMaterializeMonthUseCase creates a new MaterializeMonthUseCase instance.
func NewMaterializeMonthUseCase(uow adapter.UnitOfWork, metrics adapter.ImportMetrics) *MaterializeMonthUseCase {
	if metrics == nil {
		metrics = adapter.NopImportMetrics{}
	}
	return &MaterializeMonthUseCase{
		uow:     uow,
		metrics: metrics,
	}
}

// Execute ensures the monthly budget for a single user.
func (uc *MaterializeMonthUseCase) Execute(ctx context.Context, input MaterializeMonthInput) (*MaterializeMonthOutput, error) {
	if err := validatePeriod(input.Year, input.Month); err != nil {
		return nil, err
	}

	var created bool
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		var err error
		created, err = EnsureMonthlyBudget(ctx, repos.Budgets(), input.UserID, input.Year, input.Month)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		uc.metrics.BudgetMaterialized()
	}

	return &MaterializeMonthOutput{
		Created: created,
		Year:    input.Year,
		Month:   input.Month,
	}, nil
}

// ExecuteForAllUsers ensures the month's budget for every user owning a default
// template. Each user runs in its own transaction; failures are counted and logged.
func (uc *MaterializeMonthUseCase) ExecuteForAllUsers(ctx context.Context, year, month int) (*MaterializeAllOutput, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	var userIDs []uuid.UUID
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		var err error
		userIDs, err = repos.Budgets().FindUserIDsWithDefault(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &MaterializeAllOutput{Users: len(userIDs)}
	for _, userID := range userIDs {
		result, err := uc.Execute(ctx, MaterializeMonthInput{UserID: userID, Year: year, Month: month})
		if err != nil {
			out.Failed++
			slog.Error("Failed to materialize monthly budget",
				"userID", userID,
				"year", year,
				"month", month,
				"error", err,
			)
			continue
		}
		if result.Created {
			out.Created++
		}
	}

	return out, nil
}

func validatePeriod(year, month int) error {
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetPeriod,
			"year must be between 1900 and 9999 and month between 1 and 12",
			domainerror.ErrInvalidBudgetPeriod,
		)
	}
	return nil
}
