// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	"github.com/finance-tracker/budget-sync/internal/integration/persistence/model"
)

// categoryRepository implements the adapter.CategoryRepository interface.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance.
func NewCategoryRepository(db *gorm.DB) adapter.CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// FindVisibleToUser retrieves system categories plus the user's own, oldest first.
func (r *categoryRepository) FindVisibleToUser(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var categoryModels []model.CategoryModel
	result := r.db.WithContext(ctx).
		Where("is_system = ? OR user_id = ?", true, userID).
		Order("created_at ASC, id ASC").
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	categories := make([]*entity.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = categoryModels[i].ToEntity()
	}
	return categories, nil
}

// FindSubcategoriesVisibleToUser retrieves system subcategories plus the user's own.
// The order decides which subcategory wins when a name exists under several categories.
func (r *categoryRepository) FindSubcategoriesVisibleToUser(ctx context.Context, userID uuid.UUID) ([]*entity.Subcategory, error) {
	var subcategoryModels []model.SubcategoryModel
	result := r.db.WithContext(ctx).
		Where("is_system = ? OR user_id = ?", true, userID).
		Order("created_at ASC, id ASC").
		Find(&subcategoryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	subcategories := make([]*entity.Subcategory, len(subcategoryModels))
	for i := range subcategoryModels {
		subcategories[i] = subcategoryModels[i].ToEntity()
	}
	return subcategories, nil
}
