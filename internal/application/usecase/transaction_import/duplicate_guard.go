package transactionimport

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
)

// duplicateGuard tracks the external identifiers already on file for the user,
// plus the ones accepted earlier in the batch.
type duplicateGuard struct {
	seen map[string]struct{}
}

// newDuplicateGuard loads the stored identifiers once, and only when at least one
// row carries an identifier.
func newDuplicateGuard(
	ctx context.Context,
	transactions adapter.TransactionRepository,
	userID uuid.UUID,
	rows []TransactionRowInput,
) (*duplicateGuard, error) {
	g := &duplicateGuard{seen: make(map[string]struct{})}

	needed := false
	for _, row := range rows {
		if row.PlaidTransactionID != nil && *row.PlaidTransactionID != "" {
			needed = true
			break
		}
	}
	if !needed {
		return g, nil
	}

	ids, err := transactions.FindExternalIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load external transaction ids: %w", err)
	}
	for _, id := range ids {
		g.seen[id] = struct{}{}
	}

	return g, nil
}

func (g *duplicateGuard) isDuplicate(externalID *string) bool {
	if externalID == nil || *externalID == "" {
		return false
	}
	_, ok := g.seen[*externalID]
	return ok
}

func (g *duplicateGuard) register(externalID *string) {
	if externalID == nil || *externalID == "" {
		return
	}
	g.seen[*externalID] = struct{}{}
}
