// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
// The (user_id, plaid_transaction_id) unique index lets rows without an
// external identifier coexist while rejecting repeated identifiers.
type TransactionModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_transactions_user_external,priority:1"`
	AccountID          *uuid.UUID      `gorm:"type:uuid;index"`
	PlaidTransactionID *string         `gorm:"type:varchar(255);uniqueIndex:idx_transactions_user_external,priority:2"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ISOCurrencyCode    *string         `gorm:"size:10"`
	Date               time.Time       `gorm:"type:date;not null;index"`
	Name               string          `gorm:"type:varchar(255);not null"`
	MerchantName       *string         `gorm:"type:varchar(255)"`
	Pending            bool            `gorm:"default:false"`
	TransactionType    *string         `gorm:"type:varchar(50)"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid;index"`
	SubcategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	Notes              *string         `gorm:"type:text"`
	Tags               TagList
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Account     *AccountModel     `gorm:"foreignKey:AccountID;references:ID"`
	Category    *CategoryModel    `gorm:"foreignKey:CategoryID;references:ID"`
	Subcategory *SubcategoryModel `gorm:"foreignKey:SubcategoryID;references:ID"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:                 m.ID,
		UserID:             m.UserID,
		AccountID:          m.AccountID,
		PlaidTransactionID: m.PlaidTransactionID,
		Amount:             m.Amount,
		ISOCurrencyCode:    m.ISOCurrencyCode,
		Date:               m.Date,
		Name:               m.Name,
		MerchantName:       m.MerchantName,
		Pending:            m.Pending,
		TransactionType:    m.TransactionType,
		CategoryID:         m.CategoryID,
		SubcategoryID:      m.SubcategoryID,
		Notes:              m.Notes,
		Tags:               []string(m.Tags),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:                 transaction.ID,
		UserID:             transaction.UserID,
		AccountID:          transaction.AccountID,
		PlaidTransactionID: transaction.PlaidTransactionID,
		Amount:             transaction.Amount,
		ISOCurrencyCode:    transaction.ISOCurrencyCode,
		Date:               transaction.Date,
		Name:               transaction.Name,
		MerchantName:       transaction.MerchantName,
		Pending:            transaction.Pending,
		TransactionType:    transaction.TransactionType,
		CategoryID:         transaction.CategoryID,
		SubcategoryID:      transaction.SubcategoryID,
		Notes:              transaction.Notes,
		Tags:               TagList(transaction.Tags),
		CreatedAt:          transaction.CreatedAt,
		UpdatedAt:          transaction.UpdatedAt,
	}
}
