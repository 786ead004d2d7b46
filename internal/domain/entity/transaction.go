// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxCurrencyCodeLength bounds the stored currency code. It leaves room for
// unofficial codes such as crypto tickers next to ISO 4217 codes.
const MaxCurrencyCodeLength = 10

// Transaction represents a financial transaction shaped after the aggregation
// provider's transaction record, plus user categorization.
type Transaction struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	AccountID          *uuid.UUID      // Optional, a transaction may have no resolved account
	PlaidTransactionID *string         // External identifier, unique per user when present
	Amount             decimal.Decimal // Negative for expenses
	ISOCurrencyCode    *string // At most MaxCurrencyCodeLength characters
	Date               time.Time
	Name               string
	MerchantName       *string
	Pending            bool
	TransactionType    *string
	CategoryID         *uuid.UUID
	SubcategoryID      *uuid.UUID
	Notes              *string
	Tags               []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
