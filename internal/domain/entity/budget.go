// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetTemplate is either the user's default template (no month/year) or a concrete
// monthly budget. Only one default and one template per (year, month) exist per user.
type BudgetTemplate struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Month       *int
	Year        *int
	IsDefault   bool
	TotalBudget decimal.Decimal
	Entries     []*BudgetTemplateEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BudgetTemplateEntry assigns a budgeted amount to a (category, subcategory) pair.
type BudgetTemplateEntry struct {
	ID             uuid.UUID
	TemplateID     uuid.UUID
	CategoryID     *uuid.UUID
	SubcategoryID  *uuid.UUID
	BudgetedAmount decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewMonthlyBudgetFrom clones a default template into a concrete monthly budget.
// Every entry is copied with a fresh identity.
func NewMonthlyBudgetFrom(defaultTemplate *BudgetTemplate, year, month int) *BudgetTemplate {
	now := time.Now().UTC()
	templateID := uuid.New()

	entries := make([]*BudgetTemplateEntry, 0, len(defaultTemplate.Entries))
	for _, e := range defaultTemplate.Entries {
		entries = append(entries, &BudgetTemplateEntry{
			ID:             uuid.New(),
			TemplateID:     templateID,
			CategoryID:     e.CategoryID,
			SubcategoryID:  e.SubcategoryID,
			BudgetedAmount: e.BudgetedAmount,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return &BudgetTemplate{
		ID:          templateID,
		UserID:      defaultTemplate.UserID,
		Month:       &month,
		Year:        &year,
		IsDefault:   false,
		TotalBudget: defaultTemplate.TotalBudget,
		Entries:     entries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
