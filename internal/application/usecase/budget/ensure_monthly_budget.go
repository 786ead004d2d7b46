// Package budget contains budget-related use cases.
package budget

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

// EnsureMonthlyBudget clones the user's default template into a budget for
// (year, month) unless that month already has one. It reports whether a budget
// was created. Calling it twice for the same month is a no-op the second time.
func EnsureMonthlyBudget(
	ctx context.Context,
	budgets adapter.BudgetRepository,
	userID uuid.UUID,
	year, month int,
) (bool, error) {
	_, err := budgets.FindMonthly(ctx, userID, year, month)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domainerror.ErrBudgetNotFound) {
		return false, err
	}

	defaultTemplate, err := budgets.FindDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBudgetNotFound) {
			return false, nil
		}
		return false, err
	}

	monthly := entity.NewMonthlyBudgetFrom(defaultTemplate, year, month)
	if err := budgets.Create(ctx, monthly); err != nil {
		return false, err
	}

	slog.Debug("Materialized monthly budget from default template",
		"userID", userID,
		"year", year,
		"month", month,
		"entries", len(monthly.Entries),
	)

	return true, nil
}
