// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
	"github.com/finance-tracker/budget-sync/internal/integration/persistence/model"
)

// budgetRepository implements the adapter.BudgetRepository interface.
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository instance.
func NewBudgetRepository(db *gorm.DB) adapter.BudgetRepository {
	return &budgetRepository{
		db: db,
	}
}

// FindMonthly retrieves the user's concrete budget for (year, month).
func (r *budgetRepository) FindMonthly(ctx context.Context, userID uuid.UUID, year, month int) (*entity.BudgetTemplate, error) {
	var templateModel model.BudgetTemplateModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ? AND year = ? AND month = ?", userID, false, year, month).
		First(&templateModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBudgetNotFound
		}
		return nil, result.Error
	}
	return templateModel.ToEntity(), nil
}

// FindDefault retrieves the user's default template with its entries.
func (r *budgetRepository) FindDefault(ctx context.Context, userID uuid.UUID) (*entity.BudgetTemplate, error) {
	var templateModel model.BudgetTemplateModel
	result := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("created_at ASC").
		First(&templateModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBudgetNotFound
		}
		return nil, result.Error
	}
	return templateModel.ToEntity(), nil
}

// Create inserts the template, then its entries.
func (r *budgetRepository) Create(ctx context.Context, template *entity.BudgetTemplate) error {
	db := r.db.WithContext(ctx)

	if result := db.Omit(clause.Associations).Create(model.BudgetTemplateFromEntity(template)); result.Error != nil {
		return result.Error
	}

	if len(template.Entries) == 0 {
		return nil
	}

	entries := make([]*model.BudgetTemplateEntryModel, len(template.Entries))
	for i, entry := range template.Entries {
		entries[i] = model.BudgetTemplateEntryFromEntity(entry)
	}
	if result := db.Create(&entries); result.Error != nil {
		return result.Error
	}
	return nil
}

// FindUserIDsWithDefault lists the users that own a default template.
func (r *budgetRepository) FindUserIDsWithDefault(ctx context.Context) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&model.BudgetTemplateModel{}).
		Where("is_default = ?", true).
		Distinct().
		Pluck("user_id", &userIDs)
	if result.Error != nil {
		return nil, result.Error
	}
	return userIDs, nil
}
