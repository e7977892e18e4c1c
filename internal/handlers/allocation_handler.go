package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fiscus/internal/errors"
	"fiscus/internal/models"
	"fiscus/internal/services"
)

// AllocationHandler handles category-allocation requests.
type AllocationHandler struct {
	allocationService services.AllocationServicer
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocationService services.AllocationServicer) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// CreateAllocationRequest represents the request payload for creating an allocation.
type CreateAllocationRequest struct {
	CategoryID string                `json:"category_id" binding:"required,uuid"`
	Type       models.AllocationType `json:"type" binding:"required,allocation_type"`
	Value      float64               `json:"value" binding:"min=0"`
	Spent      int64                 `json:"spent_minor" binding:"omitempty,min=0"`
	Rollover   bool                  `json:"rollover"`
}

// UpdateAllocationRequest represents the request payload for updating an
// allocation. Budget and category bindings are immutable and deliberately
// absent.
type UpdateAllocationRequest struct {
	Type     *models.AllocationType `json:"type" binding:"omitempty,allocation_type"`
	Value    *float64               `json:"value" binding:"omitempty,min=0"`
	Spent    *int64                 `json:"spent_minor" binding:"omitempty,min=0"`
	Rollover *bool                  `json:"rollover"`
}

// RecordSpendingRequest represents the request payload for recording spending.
type RecordSpendingRequest struct {
	Amount int64 `json:"amount_minor" binding:"required"`
}

// CreateAllocation handles creating an allocation under a budget.
// @Summary     Create allocation
// @Description Allocate a fixed amount or income percentage to a category
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Budget ID"
// @Param       request body CreateAllocationRequest true "Allocation details"
// @Success     201 {object} models.CategoryAllocation "Allocation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     409 {object} ErrorResponse "Category already allocated"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/allocations [post]
func (h *AllocationHandler) CreateAllocation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	allocation, err := h.allocationService.CreateAllocation(userID, c.Param("id"), services.CreateAllocationInput{
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Value:      req.Value,
		Spent:      req.Spent,
		Rollover:   req.Rollover,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"allocation": allocation})
}

// GetBudgetAllocations lists all allocations of a budget.
// @Summary     Get budget allocations
// @Description Get all allocations of a budget sorted by category name
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.CategoryAllocation "Allocations"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/allocations [get]
func (h *AllocationHandler) GetBudgetAllocations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocations, err := h.allocationService.GetBudgetAllocations(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}

// GetAllocationByCategory fetches a budget's allocation for one category.
// @Summary     Get allocation by category
// @Description Get the allocation binding a budget to a specific category
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string true "Budget ID"
// @Param       category_id path string true "Category ID"
// @Success     200 {object} models.CategoryAllocation "Allocation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allocation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/allocations/category/{category_id} [get]
func (h *AllocationHandler) GetAllocationByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocation, err := h.allocationService.GetBudgetAllocationByCategory(userID, c.Param("id"), c.Param("category_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": allocation})
}

// ValidateAllocations checks a budget's allocations against its income.
// @Summary     Validate budget allocations
// @Description Check percentage and total allocation limits for a budget
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.AllocationTotals "Validation result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/allocations/validate [get]
func (h *AllocationHandler) ValidateAllocations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.allocationService.ValidateBudgetAllocations(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"validation": totals})
}

// GetCategorySummaries returns per-category spending summaries for a budget.
// @Summary     Get category summaries
// @Description Per-category allocation, spending, and remaining amounts
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} services.CategorySummary "Category summaries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/allocations/summaries [get]
func (h *AllocationHandler) GetCategorySummaries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summaries, err := h.allocationService.GetCategorySummaries(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// GetAllocation retrieves a single allocation by ID.
// @Summary     Get allocation by ID
// @Description Get a specific category allocation by ID
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Allocation ID"
// @Success     200 {object} models.CategoryAllocation "Allocation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allocation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /allocations/{id} [get]
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocation, err := h.allocationService.GetAllocationByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": allocation})
}

// UpdateAllocation handles updating an allocation.
// @Summary     Update allocation
// @Description Update an allocation's plan, spending, or rollover flag. Budget and category are immutable.
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Allocation ID"
// @Param       request body UpdateAllocationRequest true "Updated allocation details"
// @Success     200 {object} models.CategoryAllocation "Updated allocation"
// @Failure     400 {object} ErrorResponse "Invalid input or immutable field"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allocation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /allocations/{id} [put]
func (h *AllocationHandler) UpdateAllocation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAllocationRequest
	if err := bindUpdateJSON(c, &req, "id", "budget_id", "category_id"); err != nil {
		respondWithError(c, err)
		return
	}

	allocation, err := h.allocationService.UpdateAllocation(userID, c.Param("id"), services.UpdateAllocationInput{
		Type:     req.Type,
		Value:    req.Value,
		Spent:    req.Spent,
		Rollover: req.Rollover,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": allocation})
}

// DeleteAllocation handles deleting an allocation with no recorded spending.
// @Summary     Delete allocation
// @Description Delete an allocation that has no recorded spending
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Allocation ID"
// @Success     200 {object} MessageResponse "Allocation deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allocation not found"
// @Failure     409 {object} ErrorResponse "Allocation has spending"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /allocations/{id} [delete]
func (h *AllocationHandler) DeleteAllocation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.allocationService.DeleteAllocation(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Allocation deleted"})
}

// RecordSpending adds a spending delta to an allocation.
// @Summary     Record spending
// @Description Add a positive or negative spending amount to an allocation
// @Tags        allocations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Allocation ID"
// @Param       request body RecordSpendingRequest true "Spending amount in minor units"
// @Success     200 {object} models.CategoryAllocation "Updated allocation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allocation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /allocations/{id}/spend [post]
func (h *AllocationHandler) RecordSpending(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	allocation, err := h.allocationService.RecordSpending(userID, c.Param("id"), req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": allocation})
}
