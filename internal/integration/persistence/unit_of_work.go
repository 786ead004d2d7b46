// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
)

// unitOfWork implements the adapter.UnitOfWork interface on top of GORM transactions.
type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new unit of work instance.
func NewUnitOfWork(db *gorm.DB) adapter.UnitOfWork {
	return &unitOfWork{
		db: db,
	}
}

// Do runs fn in a single transaction. GORM commits when fn returns nil and
// returns the commit error otherwise.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos adapter.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txRepositories{tx: tx})
	})
}

// txRepositories binds every repository to the same *gorm.DB transaction.
type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) Accounts() adapter.AccountRepository {
	return NewAccountRepository(r.tx)
}

func (r *txRepositories) Categories() adapter.CategoryRepository {
	return NewCategoryRepository(r.tx)
}

func (r *txRepositories) Transactions() adapter.TransactionRepository {
	return NewTransactionRepository(r.tx)
}

func (r *txRepositories) Budgets() adapter.BudgetRepository {
	return NewBudgetRepository(r.tx)
}

// Savepoint nests a GORM transaction, which GORM implements with SAVEPOINT and
// ROLLBACK TO SAVEPOINT. A failing row therefore leaves the outer transaction usable.
func (r *txRepositories) Savepoint(ctx context.Context, fn func(repos adapter.Repositories) error) error {
	return r.tx.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return fn(&txRepositories{tx: sp})
	})
}
