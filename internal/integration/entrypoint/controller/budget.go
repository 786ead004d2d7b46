package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/budget-sync/internal/application/usecase/budget"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/middleware"
)

// BudgetController handles monthly budget endpoints.
type BudgetController struct {
	materializeUseCase *budget.MaterializeMonthUseCase
}

// NewBudgetController creates a new budget controller instance.
func NewBudgetController(materializeUseCase *budget.MaterializeMonthUseCase) *BudgetController {
	return &BudgetController{
		materializeUseCase: materializeUseCase,
	}
}

// Materialize handles POST /budgets/materialize requests.
// It clones the caller's default template into the requested month when missing.
func (c *BudgetController) Materialize(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	var req dto.MaterializeBudgetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeInvalidBudgetPeriod),
			Details: err.Error(),
		})
		return
	}

	output, err := c.materializeUseCase.Execute(ctx.Request.Context(), budget.MaterializeMonthInput{
		UserID: userID,
		Year:   req.Year,
		Month:  req.Month,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMaterializeBudgetResponse(output))
}

// handleBudgetError maps budget errors to HTTP responses.
func (c *BudgetController) handleBudgetError(ctx *gin.Context, err error) {
	var budgetErr *domainerror.BudgetError
	if errors.As(err, &budgetErr) {
		statusCode := http.StatusInternalServerError
		switch budgetErr.Code {
		case domainerror.ErrCodeInvalidBudgetPeriod:
			statusCode = http.StatusBadRequest
		case domainerror.ErrCodeBudgetNotFound:
			statusCode = http.StatusNotFound
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: budgetErr.Message,
			Code:  string(budgetErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}
