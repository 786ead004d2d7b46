// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// BudgetRepository defines the interface for budget template persistence operations.
type BudgetRepository interface {
	// FindMonthly retrieves the user's non-default template for (year, month).
	// Returns domainerror.ErrBudgetNotFound when none exists.
	FindMonthly(ctx context.Context, userID uuid.UUID, year, month int) (*entity.BudgetTemplate, error)

	// FindDefault retrieves the user's default template with its entries.
	// Returns domainerror.ErrBudgetNotFound when none exists.
	FindDefault(ctx context.Context, userID uuid.UUID) (*entity.BudgetTemplate, error)

	// Create inserts a template together with its entries.
	Create(ctx context.Context, template *entity.BudgetTemplate) error

	// FindUserIDsWithDefault lists every user owning a default template.
	FindUserIDsWithDefault(ctx context.Context) ([]uuid.UUID, error)
}
