package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/budget-sync/internal/application/usecase/budget"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/budget-sync/test/memstore"
)

func newBudgetEngine(store *memstore.Store, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	c := NewBudgetController(budget.NewMaterializeMonthUseCase(store, nil))
	engine := gin.New()
	engine.Use(withUser(userID))
	engine.POST("/budgets/materialize", c.Materialize)
	return engine
}

func TestBudgetController_Materialize(t *testing.T) {
	t.Run("creates the month once", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		store.SeedDefaultBudget(userID, nil, 500)
		engine := newBudgetEngine(store, userID)

		first := postJSON(engine, "/budgets/materialize", `{"year": 2024, "month": 7}`)
		second := postJSON(engine, "/budgets/materialize", `{"year": 2024, "month": 7}`)

		require.Equal(t, http.StatusOK, first.Code)
		var resp dto.MaterializeBudgetResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
		assert.Equal(t, dto.MaterializeBudgetResponse{Created: true, Year: 2024, Month: 7}, resp)

		require.Equal(t, http.StatusOK, second.Code)
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
		assert.False(t, resp.Created)

		assert.Len(t, store.MonthlyBudgetsFor(userID), 1)
	})

	t.Run("invalid month", func(t *testing.T) {
		engine := newBudgetEngine(memstore.New(), uuid.New())

		w := postJSON(engine, "/budgets/materialize", `{"year": 2024, "month": 13}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), string(domainerror.ErrCodeInvalidBudgetPeriod))
	})

	t.Run("missing fields are out of range", func(t *testing.T) {
		engine := newBudgetEngine(memstore.New(), uuid.New())

		w := postJSON(engine, "/budgets/materialize", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), string(domainerror.ErrCodeInvalidBudgetPeriod))
	})

	t.Run("storage failure", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		store.SeedDefaultBudget(userID, nil, 500)
		store.CommitErr = assert.AnError
		engine := newBudgetEngine(store, userID)

		w := postJSON(engine, "/budgets/materialize", `{"year": 2024, "month": 7}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
