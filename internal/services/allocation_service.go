package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fiscus/internal/errors"
	"fiscus/internal/models"
	"fiscus/internal/money"
)

// allocationService handles category-allocation business logic.
type allocationService struct {
	db *gorm.DB
}

// NewAllocationService creates a new AllocationServicer.
func NewAllocationService(db *gorm.DB) AllocationServicer {
	return &allocationService{db: db}
}

// CreateAllocation validates and persists a new category allocation inside
// the given budget. The derived allocated amount is computed from the plan
// against the budget's planned income; all invariants are checked before
// any write, and the duplicate check shares a transaction with the insert.
func (s *allocationService) CreateAllocation(userID, budgetID string, in CreateAllocationInput) (*models.CategoryAllocation, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", in.CategoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	plan, err := planFor(in.Type, in.Value)
	if err != nil {
		return nil, err
	}

	allocated, err := money.Materialize(plan, budget.PlannedIncome)
	if err != nil {
		return nil, err
	}
	if !money.InRange(allocated) {
		return nil, apperrors.ErrAllocatedNegative
	}
	if in.Spent < 0 {
		return nil, apperrors.ErrSpentNegative
	}
	if in.Spent > allocated {
		return nil, apperrors.ErrSpentExceedsAllocated
	}

	allocation := &models.CategoryAllocation{
		BudgetID:   budget.ID,
		CategoryID: in.CategoryID,
		Type:       in.Type,
		Value:      in.Value,
		Allocated:  allocated,
		Spent:      in.Spent,
		Rollover:   in.Rollover,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CategoryAllocation{}).
			Where("budget_id = ? AND category_id = ?", budget.ID, in.CategoryID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDuplicateAllocation
		}
		if err := tx.Create(allocation).Error; err != nil {
			return err
		}
		_, err := refreshTotalAllocated(tx, budget.ID)
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return allocation, nil
}

// GetAllocationByID returns an allocation if its budget belongs to the user.
func (s *allocationService) GetAllocationByID(userID, allocationID string) (*models.CategoryAllocation, error) {
	var allocation models.CategoryAllocation
	err := s.db.
		Joins("JOIN budgets ON budgets.id = category_allocations.budget_id").
		Where("category_allocations.id = ? AND budgets.user_id = ?", allocationID, userID).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &allocation, nil
}

// GetBudgetAllocations returns all allocations for the budget, ordered by
// the category's display name.
func (s *allocationService) GetBudgetAllocations(userID, budgetID string) ([]models.CategoryAllocation, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var allocations []models.CategoryAllocation
	err = s.db.
		Joins("JOIN categories ON categories.id = category_allocations.category_id").
		Where("category_allocations.budget_id = ?", budget.ID).
		Order("categories.name ASC").
		Preload("Category").
		Find(&allocations).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allocations, nil
}

// GetBudgetAllocationByCategory returns the budget's allocation for one
// category, if any.
func (s *allocationService) GetBudgetAllocationByCategory(userID, budgetID, categoryID string) (*models.CategoryAllocation, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var allocation models.CategoryAllocation
	err = s.db.
		Where("budget_id = ? AND category_id = ?", budget.ID, categoryID).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &allocation, nil
}

// UpdateAllocation applies a partial update. Changing the type or value
// recomputes the derived allocated amount against the budget's planned
// income. Spending may exceed the allocation here: the transaction
// subsystem reports real spending, which the plan cannot cap, so overspend
// is a legal state reachable through update.
func (s *allocationService) UpdateAllocation(userID, allocationID string, in UpdateAllocationInput) (*models.CategoryAllocation, error) {
	allocation, err := s.GetAllocationByID(userID, allocationID)
	if err != nil {
		return nil, err
	}

	budget, err := s.ownedBudget(userID, allocation.BudgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	newType := allocation.Type
	newValue := allocation.Value
	planChanged := false
	if in.Type != nil {
		newType = *in.Type
		planChanged = true
	}
	if in.Value != nil {
		newValue = *in.Value
		planChanged = true
	}

	if planChanged {
		plan, err := planFor(newType, newValue)
		if err != nil {
			return nil, err
		}
		allocated, err := money.Materialize(plan, budget.PlannedIncome)
		if err != nil {
			return nil, err
		}
		if !money.InRange(allocated) {
			return nil, apperrors.ErrAllocatedNegative
		}
		updates["type"] = newType
		updates["value"] = newValue
		updates["allocated"] = allocated
	}

	if in.Spent != nil {
		if *in.Spent < 0 {
			return nil, apperrors.ErrSpentNegative
		}
		updates["spent"] = *in.Spent
	}
	if in.Rollover != nil {
		updates["rollover"] = *in.Rollover
	}

	if len(updates) == 0 {
		return allocation, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(allocation).Updates(updates).Error; err != nil {
			return err
		}
		if planChanged {
			_, err := refreshTotalAllocated(tx, allocation.BudgetID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return allocation, nil
}

// DeleteAllocation removes an allocation. Allocations with recorded
// spending cannot be deleted; zero out the spending first.
func (s *allocationService) DeleteAllocation(userID, allocationID string) error {
	allocation, err := s.GetAllocationByID(userID, allocationID)
	if err != nil {
		return err
	}
	if allocation.Spent != 0 {
		return apperrors.ErrAllocationHasSpending
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(allocation).Error; err != nil {
			return err
		}
		_, err := refreshTotalAllocated(tx, allocation.BudgetID)
		return err
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecordSpending adjusts the allocation's spent amount by amountMinor. This
// is the entry point the transaction subsystem uses to feed spending into
// the engine. Negative amounts model refunds; the resulting total may not
// go below zero but may exceed the allocation.
func (s *allocationService) RecordSpending(userID, allocationID string, amountMinor int64) (*models.CategoryAllocation, error) {
	allocation, err := s.GetAllocationByID(userID, allocationID)
	if err != nil {
		return nil, err
	}

	newSpent := allocation.Spent + amountMinor
	if newSpent < 0 {
		return nil, apperrors.ErrSpentNegative
	}

	if err := s.db.Model(allocation).Update("spent", newSpent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allocation, nil
}

// ValidateBudgetAllocations checks the budget's allocations against its
// planned income.
func (s *allocationService) ValidateBudgetAllocations(userID, budgetID string) (*AllocationTotals, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var allocations []models.CategoryAllocation
	if err := s.db.Where("budget_id = ?", budget.ID).Find(&allocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := ValidateAllocationTotals(allocations, budget.PlannedIncome)
	return &totals, nil
}

// GetCategorySummaries returns the per-category view for every allocation in
// the budget, in category display-name order.
func (s *allocationService) GetCategorySummaries(userID, budgetID string) ([]CategorySummary, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	allocations, err := s.GetBudgetAllocations(userID, budgetID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CategorySummary, 0, len(allocations))
	for i := range allocations {
		summaries = append(summaries, SummarizeCategory(&allocations[i], budget.PlannedIncome))
	}
	return summaries, nil
}

func (s *allocationService) ownedBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// planFor validates the caller-supplied type and value and builds the
// allocation plan. Fixed values are minor units; percentage values are
// points in [0, 100], rounded to 2 decimal places.
func planFor(allocationType models.AllocationType, value float64) (money.Plan, error) {
	if !allocationType.IsValid() {
		return nil, apperrors.ErrInvalidAllocationType
	}
	if value < 0 {
		return nil, apperrors.ErrAllocationValueNegative
	}
	if allocationType == models.AllocationTypePercentage {
		if value > 100 {
			return nil, apperrors.ErrPercentageExceeds100
		}
		return money.PercentPlan{Points: money.Round2(value)}, nil
	}
	if value > float64(money.MaxAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrAllocationValueNegative, "allocation value out of range")
	}
	return money.FixedPlan{Amount: int64(value)}, nil
}
