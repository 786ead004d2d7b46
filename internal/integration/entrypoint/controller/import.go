package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	transactionimport "github.com/finance-tracker/budget-sync/internal/application/usecase/transaction_import"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/budget-sync/internal/integration/fileparser"
)

// ImportController handles bulk transaction import endpoints.
type ImportController struct {
	importUseCase  *transactionimport.ImportTransactionsUseCase
	maxUploadBytes int64
}

// NewImportController creates a new import controller instance.
func NewImportController(importUseCase *transactionimport.ImportTransactionsUseCase, maxUploadBytes int64) *ImportController {
	return &ImportController{
		importUseCase:  importUseCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// Import handles POST /transactions/import requests.
func (c *ImportController) Import(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	var req dto.ImportTransactionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeInvalidImportRequest),
			Details: err.Error(),
		})
		return
	}

	input, fieldErrors := req.ToImportInput(userID)
	if len(fieldErrors) > 0 {
		ctx.JSON(http.StatusBadRequest, dto.ImportValidationErrorResponse{
			Error:  "One or more transactions are invalid",
			Code:   string(domainerror.ErrCodeInvalidImportRequest),
			Errors: fieldErrors,
		})
		return
	}

	c.execute(ctx, input)
}

// ImportFile handles POST /transactions/import/file requests.
// The multipart field "file" must hold a .csv or .xlsx document.
func (c *ImportController) ImportFile(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	if c.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error: "Uploaded file is too large",
				Code:  string(domainerror.ErrCodeImportFileTooLarge),
			})
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "A file is required in the 'file' field",
			Code:    string(domainerror.ErrCodeInvalidImportRequest),
			Details: err.Error(),
		})
		return
	}

	format, err := fileparser.DetectFormat(fileHeader.Filename)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Only .csv and .xlsx files can be imported",
			Code:  string(domainerror.ErrCodeUnsupportedImportFile),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Failed to read uploaded file",
			Code:    string(domainerror.ErrCodeMalformedImportFile),
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := fileparser.Parse(file, format)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Failed to parse uploaded file",
			Code:    string(domainerror.ErrCodeMalformedImportFile),
			Details: err.Error(),
		})
		return
	}

	if len(result.Errors) > 0 {
		fieldErrors := make([]dto.ImportFieldError, 0, len(result.Errors))
		for _, rowErr := range result.Errors {
			fieldErrors = append(fieldErrors, dto.ImportFieldError{
				Line:    rowErr.Line,
				Field:   rowErr.Field,
				Message: rowErr.Message,
			})
		}
		ctx.JSON(http.StatusBadRequest, dto.ImportValidationErrorResponse{
			Error:  "One or more lines of the file are invalid",
			Code:   string(domainerror.ErrCodeMalformedImportFile),
			Errors: fieldErrors,
		})
		return
	}

	slog.Debug("Import file parsed",
		"userID", userID,
		"format", format,
		"rows", len(result.Rows),
	)

	c.execute(ctx, transactionimport.ImportTransactionsInput{
		UserID:       userID,
		Transactions: result.Rows,
	})
}

func (c *ImportController) execute(ctx *gin.Context, input transactionimport.ImportTransactionsInput) {
	output, err := c.importUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleImportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToImportTransactionsResponse(output))
}

// handleImportError maps import errors to HTTP responses.
func (c *ImportController) handleImportError(ctx *gin.Context, err error) {
	var importErr *domainerror.ImportError
	if errors.As(err, &importErr) {
		ctx.JSON(c.getStatusCodeForImportError(importErr.Code), dto.ErrorResponse{
			Error: importErr.Message,
			Code:  string(importErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// getStatusCodeForImportError maps import error codes to HTTP status codes.
func (c *ImportController) getStatusCodeForImportError(code domainerror.ImportErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidImportRequest,
		domainerror.ErrCodeUnsupportedImportFile,
		domainerror.ErrCodeMalformedImportFile:
		return http.StatusBadRequest
	case domainerror.ErrCodeImportInProgress:
		return http.StatusConflict
	case domainerror.ErrCodeImportFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
