package transactionimport

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// AccountResult reports an account referenced by the batch.
type AccountResult struct {
	AccountName string
	AccountID   uuid.UUID
	Created     bool
	AccountType string
}

// accountResolver maps free-text account names to accounts, creating missing ones.
// Each distinct name is reported exactly once, either as created or as used.
type accountResolver struct {
	userID  uuid.UUID
	cache   *lookupCache
	created []AccountResult
	used    []AccountResult
	seen    map[string]struct{}
}

func newAccountResolver(userID uuid.UUID, cache *lookupCache) *accountResolver {
	return &accountResolver{
		userID: userID,
		cache:  cache,
		seen:   make(map[string]struct{}),
	}
}

// resolve returns the account ID for name, or nil when no name was given.
// Cache and report changes are registered on undo so a failed row can revert them.
func (r *accountResolver) resolve(
	ctx context.Context,
	accounts adapter.AccountRepository,
	name, accountType, subtype *string,
	undo *rowUndo,
) (*uuid.UUID, error) {
	if name == nil || *name == "" {
		return nil, nil
	}

	key := nameKey(*name)

	if account, ok := r.cache.accounts[key]; ok {
		if _, reported := r.seen[key]; !reported {
			r.seen[key] = struct{}{}
			r.used = append(r.used, AccountResult{
				AccountName: account.Name,
				AccountID:   account.ID,
				Created:     false,
				AccountType: account.Type,
			})
			undo.add(func() {
				delete(r.seen, key)
				r.used = r.used[:len(r.used)-1]
			})
		}
		id := account.ID
		return &id, nil
	}

	var typ string
	if accountType != nil {
		typ = *accountType
	}
	account := entity.NewAccount(*name, typ, subtype)
	if err := accounts.CreateForUser(ctx, account, r.userID); err != nil {
		return nil, err
	}

	r.cache.accounts[key] = account
	r.seen[key] = struct{}{}
	r.created = append(r.created, AccountResult{
		AccountName: account.Name,
		AccountID:   account.ID,
		Created:     true,
		AccountType: account.Type,
	})
	undo.add(func() {
		delete(r.cache.accounts, key)
		delete(r.seen, key)
		r.created = r.created[:len(r.created)-1]
	})

	slog.Debug("Created account during import",
		"userID", r.userID,
		"accountID", account.ID,
		"accountName", account.Name,
	)

	id := account.ID
	return &id, nil
}

// rowUndo collects in-memory changes made while processing one row.
type rowUndo struct {
	steps []func()
}

func (u *rowUndo) add(step func()) {
	u.steps = append(u.steps, step)
}

// run reverts the registered changes, newest first.
func (u *rowUndo) run() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}
