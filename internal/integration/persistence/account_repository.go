// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	"github.com/finance-tracker/budget-sync/internal/integration/persistence/model"
)

// accountRepository implements the adapter.AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance.
func NewAccountRepository(db *gorm.DB) adapter.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// FindByUser retrieves every account linked to the user, oldest first.
func (r *accountRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	var accountModels []model.AccountModel
	result := r.db.WithContext(ctx).
		Joins("JOIN user_accounts ON user_accounts.account_id = accounts.id").
		Where("user_accounts.user_id = ?", userID).
		Order("accounts.created_at ASC, accounts.id ASC").
		Find(&accountModels)
	if result.Error != nil {
		return nil, result.Error
	}

	accounts := make([]*entity.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = accountModels[i].ToEntity()
	}
	return accounts, nil
}

// CreateForUser inserts the account and links it to the user.
func (r *accountRepository) CreateForUser(ctx context.Context, account *entity.Account, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if result := db.Create(model.AccountFromEntity(account)); result.Error != nil {
		return result.Error
	}

	link := &model.UserAccountModel{
		UserID:    userID,
		AccountID: account.ID,
		CreatedAt: time.Now().UTC(),
	}
	if result := db.Create(link); result.Error != nil {
		return result.Error
	}
	return nil
}
