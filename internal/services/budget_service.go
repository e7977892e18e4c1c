package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fiscus/internal/errors"
	"fiscus/internal/models"
	"fiscus/internal/money"
	"fiscus/internal/month"
	"fiscus/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, now: time.Now}
}

// CreateBudget validates and persists a new monthly budget. The month token
// must be well formed and not later than the current calendar month; all
// monetary fields must be within bounds; at most one active budget may exist
// per user and month. Every check runs before anything is written.
func (s *budgetService) CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error) {
	m, err := month.Parse(in.Month)
	if err != nil {
		return nil, err
	}
	if m.After(month.FromTime(s.now())) {
		return nil, apperrors.ErrFutureMonth
	}

	if err := validateBudgetAmounts(in.PlannedIncome, in.ActualIncome, in.TotalAllocated); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.BudgetStatusDraft
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidBudgetStatus
	}

	budget := &models.Budget{
		UserID:         userID,
		Month:          m.String(),
		PlannedIncome:  in.PlannedIncome,
		ActualIncome:   in.ActualIncome,
		TotalAllocated: in.TotalAllocated,
		Status:         status,
	}

	// The duplicate-active check and the insert run in one transaction so
	// the uniqueness tuple stays atomic relative to other writers.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if status == models.BudgetStatusActive {
			if err := assertNoActiveBudget(tx, userID, budget.Month); err != nil {
				return err
			}
		}
		return tx.Create(budget).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return budget, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetsByMonth returns the user's budgets for one month. More than one
// may exist (drafts and a closed budget can coexist with the active one).
func (s *budgetService) GetBudgetsByMonth(userID, monthToken string) ([]models.Budget, error) {
	m, err := month.Parse(monthToken)
	if err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.
		Where("user_id = ? AND month = ?", userID, m.String()).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetUserBudgets returns a paginated list of the user's budgets sorted by
// month ascending. Lexicographic order is correct because month tokens are
// zero-padded.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	status *models.BudgetStatus,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("month ASC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateBudget applies a partial update. Monetary fields are re-validated
// with the same bounds as creation; a transition to active re-runs the
// duplicate-active check. Month, user, and id are not part of the input and
// therefore cannot change.
func (s *budgetService) UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.PlannedIncome != nil {
		if !money.InRange(*in.PlannedIncome) {
			return nil, apperrors.WithMessage(apperrors.ErrNegativeIncome, "planned income out of range")
		}
		updates["planned_income"] = *in.PlannedIncome
	}
	if in.ActualIncome != nil {
		if !money.InRange(*in.ActualIncome) {
			return nil, apperrors.WithMessage(apperrors.ErrNegativeIncome, "actual income out of range")
		}
		updates["actual_income"] = *in.ActualIncome
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, apperrors.ErrInvalidBudgetStatus
		}
		updates["status"] = *in.Status
	}

	if len(updates) == 0 {
		return budget, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Status != nil && *in.Status == models.BudgetStatusActive && budget.Status != models.BudgetStatusActive {
			if err := assertNoActiveBudget(tx, userID, budget.Month); err != nil {
				return err
			}
		}
		return tx.Model(budget).Updates(updates).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget and cascades to its allocations.
// Active budgets must be closed or demoted to draft first.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}
	if budget.Status == models.BudgetStatusActive {
		return apperrors.ErrActiveBudgetDelete
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.CategoryAllocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(budget).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecalculateTotalAllocated re-aggregates the budget's total allocated
// amount from its allocations and persists the refreshed value. This is the
// single entry point callers use after any allocation mutation.
func (s *budgetService) RecalculateTotalAllocated(userID, budgetID string) (int64, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return 0, err
	}

	var total int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		total, err = refreshTotalAllocated(tx, budget.ID)
		return err
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// GetBudgetSummary aggregates the budget and its allocations.
func (s *budgetService) GetBudgetSummary(userID, budgetID string) (*BudgetSummary, error) {
	budget, allocations, err := s.budgetWithAllocations(userID, budgetID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(budget, allocations)
	return &summary, nil
}

// GetSpendingProjection extrapolates spend-to-date across the budget month.
func (s *budgetService) GetSpendingProjection(userID, budgetID string, asOf time.Time) (*SpendingProjection, error) {
	budget, allocations, err := s.budgetWithAllocations(userID, budgetID)
	if err != nil {
		return nil, err
	}
	projection, err := ProjectSpending(budget, allocations, asOf)
	if err != nil {
		return nil, err
	}
	return &projection, nil
}

// CompareWithPreviousMonth compares the budget against the user's budget for
// the preceding calendar month. When several exist for that month, the
// active one wins, then the most recently created.
func (s *budgetService) CompareWithPreviousMonth(userID, budgetID string) (*BudgetComparison, error) {
	budget, allocations, err := s.budgetWithAllocations(userID, budgetID)
	if err != nil {
		return nil, err
	}

	m, err := month.Parse(budget.Month)
	if err != nil {
		return nil, err
	}
	prevMonth := m.Previous().String()

	var previous models.Budget
	err = s.db.
		Where("user_id = ? AND month = ?", userID, prevMonth).
		Order("CASE WHEN status = 'active' THEN 0 ELSE 1 END, created_at DESC").
		First(&previous).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrBudgetNotFound, "No budget exists for "+prevMonth)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var previousAllocations []models.CategoryAllocation
	if err := s.db.Where("budget_id = ?", previous.ID).Find(&previousAllocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	comparison := CompareBudgets(budget, &previous, allocations, previousAllocations)
	return &comparison, nil
}

// GetRolloverReport computes the per-category and total rollover amounts.
func (s *budgetService) GetRolloverReport(userID, budgetID string) (*RolloverReport, error) {
	_, allocations, err := s.budgetWithAllocations(userID, budgetID)
	if err != nil {
		return nil, err
	}

	report := &RolloverReport{ByCategory: []CategoryRollover{}}
	for i := range allocations {
		amount := RolloverAmount(&allocations[i])
		report.ByCategory = append(report.ByCategory, CategoryRollover{
			CategoryID: allocations[i].CategoryID,
			Amount:     amount,
		})
		report.Total += amount
	}
	return report, nil
}

func (s *budgetService) budgetWithAllocations(userID, budgetID string) (*models.Budget, []models.CategoryAllocation, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, nil, err
	}

	var allocations []models.CategoryAllocation
	if err := s.db.Where("budget_id = ?", budget.ID).Find(&allocations).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, allocations, nil
}

// validateBudgetAmounts checks the non-negativity and safe-integer bound of
// the three monetary fields.
func validateBudgetAmounts(planned, actual, allocated int64) error {
	if !money.InRange(planned) {
		return apperrors.WithMessage(apperrors.ErrNegativeIncome, "planned income out of range")
	}
	if !money.InRange(actual) {
		return apperrors.WithMessage(apperrors.ErrNegativeIncome, "actual income out of range")
	}
	if !money.InRange(allocated) {
		return apperrors.WithMessage(apperrors.ErrNegativeIncome, "total allocated out of range")
	}
	return nil
}

// assertNoActiveBudget fails with DUPLICATE_ACTIVE_BUDGET if the user
// already has an active budget for the month. Must run inside the same
// transaction as the write it protects.
func assertNoActiveBudget(tx *gorm.DB, userID, monthToken string) error {
	var count int64
	if err := tx.Model(&models.Budget{}).
		Where("user_id = ? AND month = ? AND status = ?", userID, monthToken, models.BudgetStatusActive).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ErrDuplicateActiveBudget
	}
	return nil
}

// refreshTotalAllocated sums the budget's allocation amounts and writes the
// result back to the budget row. Returns the refreshed total.
func refreshTotalAllocated(tx *gorm.DB, budgetID string) (int64, error) {
	var total int64
	err := tx.Model(&models.CategoryAllocation{}).
		Select("COALESCE(SUM(allocated), 0)").
		Where("budget_id = ?", budgetID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&models.Budget{}).
		Where("id = ?", budgetID).
		Update("total_allocated", total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// asAppError keeps AppErrors intact across transaction boundaries and wraps
// everything else as an internal error.
func asAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
