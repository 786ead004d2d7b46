// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// CategoryRepository defines the interface for category and subcategory lookups.
type CategoryRepository interface {
	// FindVisibleToUser retrieves the user's own categories and all system categories.
	FindVisibleToUser(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)

	// FindSubcategoriesVisibleToUser retrieves the user's own subcategories and all
	// system subcategories, oldest first (created_at, then id).
	FindSubcategoriesVisibleToUser(ctx context.Context, userID uuid.UUID) ([]*entity.Subcategory, error)
}
