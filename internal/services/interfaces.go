package services

import (
	"time"

	"fiscus/internal/models"
	"fiscus/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, description, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// CreateBudgetInput holds the caller-supplied fields for a new budget.
type CreateBudgetInput struct {
	Month          string
	PlannedIncome  int64
	ActualIncome   int64
	TotalAllocated int64
	Status         models.BudgetStatus
}

// UpdateBudgetInput is the partial update for a budget. The immutable fields
// (id, user, month) are not members, so they cannot be changed through any
// update path.
type UpdateBudgetInput struct {
	PlannedIncome *int64
	ActualIncome  *int64
	Status        *models.BudgetStatus
}

// CategoryRollover is the rollover amount computed for one allocation.
type CategoryRollover struct {
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount_minor"`
}

// RolloverReport lists per-category rollover amounts and their total.
type RolloverReport struct {
	Total      int64              `json:"total_minor"`
	ByCategory []CategoryRollover `json:"by_category"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	GetBudgetsByMonth(userID, monthToken string) ([]models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, status *models.BudgetStatus) (*pagination.PageResponse[models.Budget], error)
	UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	RecalculateTotalAllocated(userID, budgetID string) (int64, error)
	GetBudgetSummary(userID, budgetID string) (*BudgetSummary, error)
	GetSpendingProjection(userID, budgetID string, asOf time.Time) (*SpendingProjection, error)
	CompareWithPreviousMonth(userID, budgetID string) (*BudgetComparison, error)
	GetRolloverReport(userID, budgetID string) (*RolloverReport, error)
}

// CreateAllocationInput holds the caller-supplied fields for a new
// category allocation.
type CreateAllocationInput struct {
	CategoryID string
	Type       models.AllocationType
	Value      float64
	Spent      int64
	Rollover   bool
}

// UpdateAllocationInput is the partial update for an allocation. The
// immutable fields (id, budget, category) are not members.
type UpdateAllocationInput struct {
	Type     *models.AllocationType
	Value    *float64
	Spent    *int64
	Rollover *bool
}

// AllocationServicer defines the contract for category-allocation business logic.
type AllocationServicer interface {
	CreateAllocation(userID, budgetID string, in CreateAllocationInput) (*models.CategoryAllocation, error)
	GetAllocationByID(userID, allocationID string) (*models.CategoryAllocation, error)
	GetBudgetAllocations(userID, budgetID string) ([]models.CategoryAllocation, error)
	GetBudgetAllocationByCategory(userID, budgetID, categoryID string) (*models.CategoryAllocation, error)
	UpdateAllocation(userID, allocationID string, in UpdateAllocationInput) (*models.CategoryAllocation, error)
	DeleteAllocation(userID, allocationID string) error
	RecordSpending(userID, allocationID string, amountMinor int64) (*models.CategoryAllocation, error)
	ValidateBudgetAllocations(userID, budgetID string) (*AllocationTotals, error)
	GetCategorySummaries(userID, budgetID string) ([]CategorySummary, error)
}
