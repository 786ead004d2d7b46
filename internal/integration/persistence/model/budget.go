// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// BudgetTemplateModel represents the budget_templates table in the database.
// The default template has no year or month. The unique period index is the
// storage backstop against two imports materializing the same month.
type BudgetTemplateModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_budget_templates_user_period,priority:1"`
	Year        *int            `gorm:"uniqueIndex:idx_budget_templates_user_period,priority:2"`
	Month       *int            `gorm:"uniqueIndex:idx_budget_templates_user_period,priority:3"`
	IsDefault   bool            `gorm:"default:false;index"`
	TotalBudget decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`

	Entries []BudgetTemplateEntryModel `gorm:"foreignKey:TemplateID;references:ID"`
}

// TableName returns the table name for the BudgetTemplateModel.
func (BudgetTemplateModel) TableName() string {
	return "budget_templates"
}

// ToEntity converts a BudgetTemplateModel, with any preloaded entries, to a domain entity.
func (m *BudgetTemplateModel) ToEntity() *entity.BudgetTemplate {
	entries := make([]*entity.BudgetTemplateEntry, len(m.Entries))
	for i := range m.Entries {
		entries[i] = m.Entries[i].ToEntity()
	}

	return &entity.BudgetTemplate{
		ID:          m.ID,
		UserID:      m.UserID,
		Month:       m.Month,
		Year:        m.Year,
		IsDefault:   m.IsDefault,
		TotalBudget: m.TotalBudget,
		Entries:     entries,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// BudgetTemplateFromEntity creates a BudgetTemplateModel without its entries.
func BudgetTemplateFromEntity(template *entity.BudgetTemplate) *BudgetTemplateModel {
	return &BudgetTemplateModel{
		ID:          template.ID,
		UserID:      template.UserID,
		Year:        template.Year,
		Month:       template.Month,
		IsDefault:   template.IsDefault,
		TotalBudget: template.TotalBudget,
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
}

// BudgetTemplateEntryModel represents the budget_template_entries table in the database.
type BudgetTemplateEntryModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TemplateID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	SubcategoryID  *uuid.UUID      `gorm:"type:uuid"`
	BudgetedAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the BudgetTemplateEntryModel.
func (BudgetTemplateEntryModel) TableName() string {
	return "budget_template_entries"
}

// ToEntity converts a BudgetTemplateEntryModel to a domain entity.
func (m *BudgetTemplateEntryModel) ToEntity() *entity.BudgetTemplateEntry {
	return &entity.BudgetTemplateEntry{
		ID:             m.ID,
		TemplateID:     m.TemplateID,
		CategoryID:     m.CategoryID,
		SubcategoryID:  m.SubcategoryID,
		BudgetedAmount: m.BudgetedAmount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// BudgetTemplateEntryFromEntity creates a BudgetTemplateEntryModel from a domain entity.
func BudgetTemplateEntryFromEntity(entry *entity.BudgetTemplateEntry) *BudgetTemplateEntryModel {
	return &BudgetTemplateEntryModel{
		ID:             entry.ID,
		TemplateID:     entry.TemplateID,
		CategoryID:     entry.CategoryID,
		SubcategoryID:  entry.SubcategoryID,
		BudgetedAmount: entry.BudgetedAmount,
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
}
