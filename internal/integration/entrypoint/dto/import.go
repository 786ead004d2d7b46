package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	transactionimport "github.com/finance-tracker/budget-sync/internal/application/usecase/transaction_import"
)

// ImportTransactionRow represents one row of a bulk import request.
// Amount accepts a JSON number or a decimal string.
type ImportTransactionRow struct {
	Amount             *decimal.Decimal `json:"amount"`
	Date               *string          `json:"date"`
	Name               *string          `json:"name"`
	MerchantName       *string          `json:"merchant_name"`
	AccountName        *string          `json:"account_name"`
	AccountType        *string          `json:"account_type"`
	AccountSubtype     *string          `json:"account_subtype"`
	PlaidTransactionID *string          `json:"plaid_transaction_id"`
	ISOCurrencyCode    *string          `json:"iso_currency_code"`
	Pending            *bool            `json:"pending"`
	TransactionType    *string          `json:"transaction_type"`
	CategoryName       *string          `json:"category_name"`
	SubcategoryName    *string          `json:"subcategory_name"`
	Notes              *string          `json:"notes"`
	Tags               []string         `json:"tags"`
}

// ImportTransactionsRequest represents the request body for a bulk import.
type ImportTransactionsRequest struct {
	Transactions []ImportTransactionRow `json:"transactions"`
}

// ImportFieldError describes a rejected field of an import request or file.
// RowIndex is set for JSON rows, Line for uploaded files.
type ImportFieldError struct {
	RowIndex *int   `json:"row_index,omitempty"`
	Line     int    `json:"line,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// ImportValidationErrorResponse is returned when rows fail validation before import.
type ImportValidationErrorResponse struct {
	Error  string             `json:"error"`
	Code   string             `json:"code"`
	Errors []ImportFieldError `json:"errors"`
}

// ToImportInput validates the request rows and converts them to use case input.
// Any field errors are returned instead and no input is built.
func (r ImportTransactionsRequest) ToImportInput(userID uuid.UUID) (transactionimport.ImportTransactionsInput, []ImportFieldError) {
	var fieldErrors []ImportFieldError
	rows := make([]transactionimport.TransactionRowInput, 0, len(r.Transactions))

	for i, t := range r.Transactions {
		index := i
		reject := func(field, message string) {
			fieldErrors = append(fieldErrors, ImportFieldError{RowIndex: &index, Field: field, Message: message})
		}

		if t.Amount == nil {
			reject("amount", "is required")
		}

		var date time.Time
		if t.Date == nil || strings.TrimSpace(*t.Date) == "" {
			reject("date", "is required")
		} else {
			parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(*t.Date))
			if err != nil {
				reject("date", "must be in YYYY-MM-DD format")
			}
			date = parsed
		}

		if t.Name == nil || strings.TrimSpace(*t.Name) == "" {
			reject("name", "is required")
		}

		if len(fieldErrors) > 0 {
			continue
		}

		rows = append(rows, transactionimport.TransactionRowInput{
			Amount:             *t.Amount,
			Date:               date,
			Name:               *t.Name,
			MerchantName:       t.MerchantName,
			AccountName:        t.AccountName,
			AccountType:        t.AccountType,
			AccountSubtype:     t.AccountSubtype,
			PlaidTransactionID: t.PlaidTransactionID,
			ISOCurrencyCode:    t.ISOCurrencyCode,
			Pending:            t.Pending,
			TransactionType:    t.TransactionType,
			CategoryName:       t.CategoryName,
			SubcategoryName:    t.SubcategoryName,
			Notes:              t.Notes,
			Tags:               t.Tags,
		})
	}

	if len(fieldErrors) > 0 {
		return transactionimport.ImportTransactionsInput{}, fieldErrors
	}
	return transactionimport.ImportTransactionsInput{UserID: userID, Transactions: rows}, nil
}

// ImportAccountResponse represents an account referenced by an import.
type ImportAccountResponse struct {
	AccountName string    `json:"account_name"`
	AccountID   uuid.UUID `json:"account_id"`
	Created     bool      `json:"created"`
	AccountType string    `json:"account_type"`
}

// UnrecognizedCategorizationResponse represents a row whose category names need review.
type UnrecognizedCategorizationResponse struct {
	RowIndex        int     `json:"row_index"`
	CategoryName    *string `json:"category_name"`
	SubcategoryName *string `json:"subcategory_name"`
	Reason          string  `json:"reason"`
	Suggestion      *string `json:"suggestion,omitempty"`
}

// ImportRowResponse represents the outcome of one imported row.
type ImportRowResponse struct {
	RowIndex      int        `json:"row_index"`
	Success       bool       `json:"success"`
	TransactionID *uuid.UUID `json:"transaction_id"`
	Error         *string    `json:"error"`
	Warnings      []string   `json:"warnings"`
}

// BudgetPeriodResponse identifies a monthly budget created by an import.
type BudgetPeriodResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ImportTransactionsResponse represents the response of a bulk import.
type ImportTransactionsResponse struct {
	TotalRows                   int                                  `json:"total_rows"`
	SuccessfulImports           int                                  `json:"successful_imports"`
	FailedImports               int                                  `json:"failed_imports"`
	AccountsCreated             []ImportAccountResponse              `json:"accounts_created"`
	AccountsUsed                []ImportAccountResponse              `json:"accounts_used"`
	UnrecognizedCategorizations []UnrecognizedCategorizationResponse `json:"unrecognized_categorizations"`
	TransactionResults          []ImportRowResponse                  `json:"transaction_results"`
	BudgetsCreated              []BudgetPeriodResponse               `json:"budgets_created"`
	Committed                   bool                                 `json:"committed"`
}

// ToImportTransactionsResponse converts the use case output to a response DTO.
// Lists are never null in the JSON body.
func ToImportTransactionsResponse(output *transactionimport.ImportTransactionsOutput) ImportTransactionsResponse {
	response := ImportTransactionsResponse{
		TotalRows:                   output.TotalRows,
		SuccessfulImports:           output.SuccessfulImports,
		FailedImports:               output.FailedImports,
		AccountsCreated:             toAccountResponses(output.AccountsCreated),
		AccountsUsed:                toAccountResponses(output.AccountsUsed),
		UnrecognizedCategorizations: make([]UnrecognizedCategorizationResponse, 0, len(output.Unrecognized)),
		TransactionResults:          make([]ImportRowResponse, 0, len(output.TransactionResults)),
		BudgetsCreated:              make([]BudgetPeriodResponse, 0, len(output.BudgetsCreated)),
		Committed:                   output.Committed,
	}

	for _, u := range output.Unrecognized {
		response.UnrecognizedCategorizations = append(response.UnrecognizedCategorizations, UnrecognizedCategorizationResponse{
			RowIndex:        u.RowIndex,
			CategoryName:    u.CategoryName,
			SubcategoryName: u.SubcategoryName,
			Reason:          string(u.Reason),
			Suggestion:      u.Suggestion,
		})
	}

	for _, r := range output.TransactionResults {
		warnings := r.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		response.TransactionResults = append(response.TransactionResults, ImportRowResponse{
			RowIndex:      r.RowIndex,
			Success:       r.Success,
			TransactionID: r.TransactionID,
			Error:         r.Error,
			Warnings:      warnings,
		})
	}

	for _, b := range output.BudgetsCreated {
		response.BudgetsCreated = append(response.BudgetsCreated, BudgetPeriodResponse{Year: b.Year, Month: b.Month})
	}

	return response
}

func toAccountResponses(accounts []transactionimport.AccountResult) []ImportAccountResponse {
	out := make([]ImportAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ImportAccountResponse{
			AccountName: a.AccountName,
			AccountID:   a.AccountID,
			Created:     a.Created,
			AccountType: a.AccountType,
		})
	}
	return out
}
