package dto

import "github.com/finance-tracker/budget-sync/internal/application/usecase/budget"

// MaterializeBudgetRequest represents the request body for materializing a monthly budget.
type MaterializeBudgetRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MaterializeBudgetResponse represents the response for a materialized monthly budget.
type MaterializeBudgetResponse struct {
	Created bool `json:"created"`
	Year    int  `json:"year"`
	Month   int  `json:"month"`
}

// ToMaterializeBudgetResponse converts the use case output to a response DTO.
func ToMaterializeBudgetResponse(output *budget.MaterializeMonthOutput) MaterializeBudgetResponse {
	return MaterializeBudgetResponse{
		Created: output.Created,
		Year:    output.Year,
		Month:   output.Month,
	}
}
