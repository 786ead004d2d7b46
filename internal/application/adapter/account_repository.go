// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// FindByUser retrieves every account the user is a member of.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error)

	// CreateForUser inserts the account and attaches it to the user's account set.
	// The account's ID is assigned before the call returns.
	CreateForUser(ctx context.Context, account *entity.Account, userID uuid.UUID) error
}
