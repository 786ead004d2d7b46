// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is the default color for categories.
const DefaultCategoryColor = "#6366F1"

// DefaultCategoryIcon is the default icon for categories.
const DefaultCategoryIcon = "tag"

// Category represents a transaction category.
// System categories have no owner and are visible to every user.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	Color       string
	Icon        string
	IsSystem    bool
	UserID      *uuid.UUID // nil for system categories
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory creates a new user-owned Category entity.
func NewCategory(name string, userID uuid.UUID) *Category {
	now := time.Now().UTC()

	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Color:     DefaultCategoryColor,
		Icon:      DefaultCategoryIcon,
		UserID:    &userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSystemCategory creates a new Category visible to all users.
func NewSystemCategory(name string) *Category {
	now := time.Now().UTC()

	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Color:     DefaultCategoryColor,
		Icon:      DefaultCategoryIcon,
		IsSystem:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subcategory belongs to exactly one Category. Names are only unique together with
// the owning category.
type Subcategory struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Color       string
	Icon        string
	IsSystem    bool
	UserID      *uuid.UUID // nil for system subcategories
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSubcategory creates a new user-owned Subcategory under categoryID.
func NewSubcategory(name string, categoryID uuid.UUID, userID uuid.UUID) *Subcategory {
	now := time.Now().UTC()

	return &Subcategory{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Color:      DefaultCategoryColor,
		Icon:       DefaultCategoryIcon,
		UserID:     &userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
