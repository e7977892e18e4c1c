package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fiscus/internal/errors"
	"fiscus/internal/models"
	"fiscus/internal/pagination"
	"fiscus/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn              func(userID string, in services.CreateBudgetInput) (*models.Budget, error)
	getBudgetByIDFn             func(userID, budgetID string) (*models.Budget, error)
	getBudgetsByMonthFn         func(userID, monthToken string) ([]models.Budget, error)
	getUserBudgetsFn            func(userID string, page pagination.PageRequest, status *models.BudgetStatus) (*pagination.PageResponse[models.Budget], error)
	updateBudgetFn              func(userID, budgetID string, in services.UpdateBudgetInput) (*models.Budget, error)
	deleteBudgetFn              func(userID, budgetID string) error
	recalculateTotalAllocatedFn func(userID, budgetID string) (int64, error)
	getBudgetSummaryFn          func(userID, budgetID string) (*services.BudgetSummary, error)
	getSpendingProjectionFn     func(userID, budgetID string, asOf time.Time) (*services.SpendingProjection, error)
	compareWithPreviousMonthFn  func(userID, budgetID string) (*services.BudgetComparison, error)
	getRolloverReportFn         func(userID, budgetID string) (*services.RolloverReport, error)
}

func (m *mockBudgetService) CreateBudget(userID string, in services.CreateBudgetInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetsByMonth(userID, monthToken string) ([]models.Budget, error) {
	if m.getBudgetsByMonthFn != nil {
		return m.getBudgetsByMonthFn(userID, monthToken)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID string, page pagination.PageRequest, status *models.BudgetStatus) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, page, status)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID string, in services.UpdateBudgetInput) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) RecalculateTotalAllocated(userID, budgetID string) (int64, error) {
	if m.recalculateTotalAllocatedFn != nil {
		return m.recalculateTotalAllocatedFn(userID, budgetID)
	}
	return 0, nil
}

func (m *mockBudgetService) GetBudgetSummary(userID, budgetID string) (*services.BudgetSummary, error) {
	if m.getBudgetSummaryFn != nil {
		return m.getBudgetSummaryFn(userID, budgetID)
	}
	return &services.BudgetSummary{}, nil
}

func (m *mockBudgetService) GetSpendingProjection(userID, budgetID string, asOf time.Time) (*services.SpendingProjection, error) {
	if m.getSpendingProjectionFn != nil {
		return m.getSpendingProjectionFn(userID, budgetID, asOf)
	}
	return &services.SpendingProjection{}, nil
}

func (m *mockBudgetService) CompareWithPreviousMonth(userID, budgetID string) (*services.BudgetComparison, error) {
	if m.compareWithPreviousMonthFn != nil {
		return m.compareWithPreviousMonthFn(userID, budgetID)
	}
	return &services.BudgetComparison{}, nil
}

func (m *mockBudgetService) GetRolloverReport(userID, budgetID string) (*services.RolloverReport, error) {
	if m.getRolloverReportFn != nil {
		return m.getRolloverReportFn(userID, budgetID)
	}
	return &services.RolloverReport{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/month/:month", handler.GetBudgetsByMonth)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.PUT("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.POST("/budgets/:id/recalculate", handler.RecalculateTotalAllocated)
	auth.GET("/budgets/:id/summary", handler.GetBudgetSummary)
	auth.GET("/budgets/:id/projection", handler.GetSpendingProjection)
	auth.GET("/budgets/:id/comparison", handler.CompareWithPreviousMonth)
	auth.GET("/budgets/:id/rollover", handler.GetRolloverReport)
	return r
}

// --- tests ---

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(userID string, in services.CreateBudgetInput) (*models.Budget, error) {
				return &models.Budget{
					Base:          models.Base{ID: "budget-1"},
					UserID:        userID,
					Month:         in.Month,
					PlannedIncome: in.PlannedIncome,
					Status:        models.BudgetStatusDraft,
				}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"month":"2025-08","planned_income_minor":500000,"actual_income_minor":480000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["month"] != "2025-08" {
			t.Errorf("expected month 2025-08, got %v", budget["month"])
		}
	})

	t.Run("returns 400 on malformed month", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"month":"August 2025","planned_income_minor":500000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate active budget", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(string, services.CreateBudgetInput) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateActiveBudget
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"month":"2025-08","planned_income_minor":500000,"status":"active"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_ACTIVE_BUDGET")
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			updateBudgetFn: func(_, budgetID string, in services.UpdateBudgetInput) (*models.Budget, error) {
				return &models.Budget{
					Base:         models.Base{ID: budgetID},
					ActualIncome: *in.ActualIncome,
				}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/budget-1", `{"actual_income_minor":620000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects month in update payload", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/budget-1", `{"month":"2025-09"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "IMMUTABLE_FIELD_UPDATE")
	})

	t.Run("rejects user_id in update payload", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/budget-1", `{"user_id":"someone-else"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "IMMUTABLE_FIELD_UPDATE")
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 409 on active budget", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			deleteBudgetFn: func(string, string) error {
				return apperrors.ErrActiveBudgetDelete
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/budget-1", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACTIVE_BUDGET_DELETE")
	})
}

func TestBudgetHandler_GetSpendingProjection(t *testing.T) {
	t.Run("passes as_of date to service", func(t *testing.T) {
		var gotAsOf time.Time
		budgetSvc := &mockBudgetService{
			getSpendingProjectionFn: func(_, _ string, asOf time.Time) (*services.SpendingProjection, error) {
				gotAsOf = asOf
				return &services.SpendingProjection{DaysInMonth: 31, DaysElapsed: 10}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/budget-1/projection?as_of=2025-01-10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotAsOf.Format("2006-01-02") != "2025-01-10" {
			t.Errorf("expected as_of 2025-01-10, got %v", gotAsOf)
		}
	})

	t.Run("returns 400 on malformed as_of", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/budget-1/projection?as_of=Jan-10", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetRolloverReport(t *testing.T) {
	budgetSvc := &mockBudgetService{
		getRolloverReportFn: func(string, string) (*services.RolloverReport, error) {
			return &services.RolloverReport{
				Total: 40000,
				ByCategory: []services.CategoryRollover{
					{CategoryID: "cat-1", Amount: 40000},
				},
			}, nil
		},
	}
	handler := NewBudgetHandler(budgetSvc)
	r := setupBudgetRouter(handler)

	rec := doRequest(r, "GET", "/budgets/budget-1/rollover", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rollover := parseJSON(t, rec)["rollover"].(map[string]interface{})
	if rollover["total_minor"] != float64(40000) {
		t.Errorf("expected total 40000, got %v", rollover["total_minor"])
	}
}
