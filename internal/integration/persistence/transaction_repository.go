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

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction in the database.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	result := r.db.WithContext(ctx).Omit("Account", "Category", "Subcategory").Create(transactionModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindExternalIDsByUser returns the user's non-null external identifiers.
func (r *transactionRepository) FindExternalIDsByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("user_id = ? AND plaid_transaction_id IS NOT NULL", userID).
		Pluck("plaid_transaction_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// CountByUser counts the user's transactions.
func (r *transactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
