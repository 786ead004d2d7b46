// Package error defines domain-specific errors for the budget sync service.
package error

import "errors"

// Import domain errors.
var (
	// ErrDuplicateExternalID is the row error for a transaction whose external
	// identifier is already on file for the user.
	ErrDuplicateExternalID = errors.New("Duplicate plaid_transaction_id")

	// ErrEmptyImport is returned when an import request carries no rows.
	ErrEmptyImport = errors.New("at least one transaction is required")

	// ErrTooManyImportRows is returned when an import request exceeds the row limit.
	ErrTooManyImportRows = errors.New("too many transactions in a single import")

	// ErrImportSetupFailed is returned when the batch lookups could not be loaded.
	ErrImportSetupFailed = errors.New("failed to prepare import")

	// ErrImportCommitFailed is returned when the batch could not be made durable.
	// None of the batch's rows were persisted.
	ErrImportCommitFailed = errors.New("failed to commit import")

	// ErrImportInProgress is returned when another import for the same user is running.
	ErrImportInProgress = errors.New("another import is already in progress")

	// ErrInvalidImportRow is returned when a row misses a required field.
	ErrInvalidImportRow = errors.New("invalid import row")

	// ErrUnsupportedImportFile is returned for uploads that are neither CSV nor XLSX.
	ErrUnsupportedImportFile = errors.New("unsupported import file type")
)

// ImportErrorCode defines error codes for import errors.
// Format: IMP-XXYYYY where XX is category and YYYY is specific error.
type ImportErrorCode string

const (
	// Batch errors (01XXXX)
	ErrCodeInvalidImportRequest ImportErrorCode = "IMP-010001"
	ErrCodeImportSetupFailed    ImportErrorCode = "IMP-010002"
	ErrCodeImportCommitFailed   ImportErrorCode = "IMP-010003"
	ErrCodeImportInProgress     ImportErrorCode = "IMP-010004"

	// File errors (02XXXX)
	ErrCodeUnsupportedImportFile ImportErrorCode = "IMP-020001"
	ErrCodeMalformedImportFile   ImportErrorCode = "IMP-020002"
	ErrCodeImportFileTooLarge    ImportErrorCode = "IMP-020003"
)

// ImportError represents an import error with code and message.
type ImportError struct {
	Code    ImportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError with the given code and message.
func NewImportError(code ImportErrorCode, message string, err error) *ImportError {
	return &ImportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
