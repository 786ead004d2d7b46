package transactionimport

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// lookupCache holds the user's accounts, categories and subcategories keyed by
// lowercase name. It is built once per batch and updated as rows create records.
type lookupCache struct {
	accounts      map[string]*entity.Account
	categories    map[string]*entity.Category
	categoryByID  map[uuid.UUID]*entity.Category
	subcategories map[string][]*entity.Subcategory

	// display names, in load order, used for suggestions
	categoryNames    []string
	subcategoryNames []string
}

// nameKey is the case-insensitive lookup key for a display name.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// buildLookupCache loads everything the resolvers need for one user in three queries.
func buildLookupCache(ctx context.Context, repos adapter.Repositories, userID uuid.UUID) (*lookupCache, error) {
	accounts, err := repos.Accounts().FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	categories, err := repos.Categories().FindVisibleToUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	subcategories, err := repos.Categories().FindSubcategoriesVisibleToUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subcategories: %w", err)
	}

	return newLookupCache(accounts, categories, subcategories), nil
}

func newLookupCache(
	accounts []*entity.Account,
	categories []*entity.Category,
	subcategories []*entity.Subcategory,
) *lookupCache {
	c := &lookupCache{
		accounts:      make(map[string]*entity.Account, len(accounts)),
		categories:    make(map[string]*entity.Category, len(categories)),
		categoryByID:  make(map[uuid.UUID]*entity.Category, len(categories)),
		subcategories: make(map[string][]*entity.Subcategory),
	}

	for _, a := range accounts {
		c.accounts[nameKey(a.Name)] = a
	}

	for _, cat := range categories {
		c.categoryByID[cat.ID] = cat
		key := nameKey(cat.Name)
		existing, ok := c.categories[key]
		if !ok {
			c.categories[key] = cat
			c.categoryNames = append(c.categoryNames, cat.Name)
			continue
		}
		// A user's own category shadows a system category of the same name.
		if existing.IsSystem && !cat.IsSystem {
			c.categories[key] = cat
		}
	}

	for _, sub := range subcategories {
		key := nameKey(sub.Name)
		if _, ok := c.subcategories[key]; !ok {
			c.subcategoryNames = append(c.subcategoryNames, sub.Name)
		}
		c.subcategories[key] = append(c.subcategories[key], sub)
	}

	return c
}
