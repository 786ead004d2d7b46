// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// Create inserts a new transaction.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindExternalIDsByUser returns every non-null external identifier on file for the user.
	FindExternalIDsByUser(ctx context.Context, userID uuid.UUID) ([]string, error)

	// CountByUser counts the user's transactions.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
