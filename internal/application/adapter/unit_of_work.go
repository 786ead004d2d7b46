// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// Repositories bundles repositories bound to one storage transaction.
type Repositories interface {
	Accounts() AccountRepository
	Categories() CategoryRepository
	Transactions() TransactionRepository
	Budgets() BudgetRepository

	// Savepoint runs fn inside a nested savepoint. Writes made by fn are rolled back
	// to the savepoint when fn returns an error; the enclosing transaction stays usable.
	Savepoint(ctx context.Context, fn func(repos Repositories) error) error
}

// UnitOfWork runs a function inside a single storage transaction.
type UnitOfWork interface {
	// Do commits when fn returns nil and rolls back otherwise. A failed commit is
	// returned as an error and leaves nothing persisted.
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
