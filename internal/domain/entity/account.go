// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAccountType is assigned to accounts created without an explicit type.
const DefaultAccountType = "other"

// Account represents a financial account. An account may be shared by several users.
type Account struct {
	ID        uuid.UUID
	Name      string
	Type      string  // Free text, e.g. "checking" or "credit"
	Subtype   *string // Optional free text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates a new Account entity.
// An empty accountType falls back to DefaultAccountType.
func NewAccount(name, accountType string, subtype *string) *Account {
	now := time.Now().UTC()
	if accountType == "" {
		accountType = DefaultAccountType
	}

	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Type:      accountType,
		Subtype:   subtype,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
