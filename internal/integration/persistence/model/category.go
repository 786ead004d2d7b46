// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// CategoryModel represents the categories table in the database.
// System categories have no owner and are visible to every user.
type CategoryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	Color       string     `gorm:"type:varchar(7);default:'#6366F1'"`
	Icon        string     `gorm:"type:varchar(50);default:'tag'"`
	IsSystem    bool       `gorm:"default:false;index"`
	UserID      *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// ToEntity converts a CategoryModel to a domain Category entity.
func (m *CategoryModel) ToEntity() *entity.Category {
	return &entity.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Color:       m.Color,
		Icon:        m.Icon,
		IsSystem:    m.IsSystem,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CategoryFromEntity creates a CategoryModel from a domain Category entity.
func CategoryFromEntity(category *entity.Category) *CategoryModel {
	return &CategoryModel{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		Icon:        category.Icon,
		IsSystem:    category.IsSystem,
		UserID:      category.UserID,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// SubcategoryModel represents the subcategories table in the database.
type SubcategoryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	Color       string     `gorm:"type:varchar(7);default:'#6366F1'"`
	Icon        string     `gorm:"type:varchar(50);default:'tag'"`
	IsSystem    bool       `gorm:"default:false;index"`
	UserID      *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`

	Category *CategoryModel `gorm:"foreignKey:CategoryID;references:ID"`
}

// TableName returns the table name for the SubcategoryModel.
func (SubcategoryModel) TableName() string {
	return "subcategories"
}

// ToEntity converts a SubcategoryModel to a domain Subcategory entity.
func (m *SubcategoryModel) ToEntity() *entity.Subcategory {
	return &entity.Subcategory{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Color:       m.Color,
		Icon:        m.Icon,
		IsSystem:    m.IsSystem,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// SubcategoryFromEntity creates a SubcategoryModel from a domain Subcategory entity.
func SubcategoryFromEntity(sub *entity.Subcategory) *SubcategoryModel {
	return &SubcategoryModel{
		ID:          sub.ID,
		CategoryID:  sub.CategoryID,
		Name:        sub.Name,
		Description: sub.Description,
		Color:       sub.Color,
		Icon:        sub.Icon,
		IsSystem:    sub.IsSystem,
		UserID:      sub.UserID,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}
