// Package error defines domain-specific errors for the budget sync service.
package error

import "errors"

// Budget domain errors.
var (
	// ErrBudgetNotFound is returned when a budget template is not found.
	ErrBudgetNotFound = errors.New("budget template not found")

	// ErrInvalidBudgetPeriod is returned when a year or month is out of range.
	ErrInvalidBudgetPeriod = errors.New("invalid budget period")
)

// BudgetErrorCode defines error codes for budget errors.
// Format: BGT-XXYYYY where XX is category and YYYY is specific error.
type BudgetErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidBudgetPeriod BudgetErrorCode = "BGT-010001"
	ErrCodeBudgetNotFound      BudgetErrorCode = "BGT-010002"
)

// BudgetError represents a budget error with code and message.
type BudgetError struct {
	Code    BudgetErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BudgetError) Unwrap() error {
	return e.Err
}

// NewBudgetError creates a new BudgetError with the given code and message.
func NewBudgetError(code BudgetErrorCode, message string, err error) *BudgetError {
	return &BudgetError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
