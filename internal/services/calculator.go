package services

import (
	"time"

	"fiscus/internal/models"
	"fiscus/internal/money"
	"fiscus/internal/month"
)

// The allocation calculator is pure: every function derives its result from
// the budget and allocation values it is given, mutates nothing, and is safe
// to call concurrently. Rounding follows the money package throughout;
// intermediate real-valued rates are only rounded at the final step.

// BudgetSummary aggregates a budget's allocations into a single view.
type BudgetSummary struct {
	TotalIncome          int64   `json:"total_income_minor"`
	TotalAllocated       int64   `json:"total_allocated_minor"`
	TotalSpent           int64   `json:"total_spent_minor"`
	TotalRemaining       int64   `json:"total_remaining_minor"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	SpendingPercentage   float64 `json:"spending_percentage"`
	Unallocated          int64   `json:"unallocated_minor"`
}

// CategorySummary is the per-category view of one allocation.
type CategorySummary struct {
	CategoryID           string  `json:"category_id"`
	Allocated            int64   `json:"allocated_minor"`
	Spent                int64   `json:"spent_minor"`
	Remaining            int64   `json:"remaining_minor"`
	UsagePercentage      float64 `json:"usage_percentage"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	IsOverspent          bool    `json:"is_overspent"`
}

// AllocationTotals is the result of validating a budget's allocations
// against its income. Both errors may appear simultaneously.
type AllocationTotals struct {
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	TotalFixed      int64    `json:"total_fixed_minor"`
	TotalPercentage float64  `json:"total_percentage"`
	ProjectedTotal  int64    `json:"projected_total_minor"`
}

// MetricChange records the month-over-month movement of a single metric.
// ChangePercentage is 0 when the previous value is 0: no meaningful ratio
// can be derived from a zero base.
type MetricChange struct {
	Current          int64   `json:"current_minor"`
	Previous         int64   `json:"previous_minor"`
	Change           int64   `json:"change_minor"`
	ChangePercentage float64 `json:"change_percentage"`
}

// BudgetComparison compares two budgets metric by metric.
type BudgetComparison struct {
	CurrentMonth  string       `json:"current_month"`
	PreviousMonth string       `json:"previous_month"`
	Income        MetricChange `json:"income"`
	Allocated     MetricChange `json:"allocated"`
	Spent         MetricChange `json:"spent"`
}

// SpendingProjection is a linear extrapolation of spend-to-date across the
// budget's calendar month.
type SpendingProjection struct {
	DaysInMonth        int      `json:"days_in_month"`
	DaysElapsed        int      `json:"days_elapsed"`
	TotalSpent         int64    `json:"total_spent_minor"`
	DailyRate          float64  `json:"daily_spending_rate"`
	ProjectedSpending  int64    `json:"projected_spending_minor"`
	ProjectedRemaining int64    `json:"projected_remaining_minor"`
	CategoriesAtRisk   []string `json:"categories_at_risk"`
}

// TotalAllocated sums the materialized allocation amounts against the given
// income: fixed allocations contribute their allocated amount, percentage
// allocations are converted at the income boundary. Returns 0 for an empty
// list.
func TotalAllocated(allocations []models.CategoryAllocation, incomeMinor int64) (int64, error) {
	var total int64
	for i := range allocations {
		amount, err := money.Materialize(allocations[i].Plan(), incomeMinor)
		if err != nil {
			return 0, err
		}
		total += amount
	}
	return total, nil
}

// RemainingBudget returns how much of the planned income is still
// unallocated. Always computed against planned income: remaining-to-allocate
// is a planning concept, independent of income realized so far. Negative
// when over-allocated.
func RemainingBudget(budget *models.Budget, allocations []models.CategoryAllocation) (int64, error) {
	total, err := TotalAllocated(allocations, budget.PlannedIncome)
	if err != nil {
		return 0, err
	}
	return budget.PlannedIncome - total, nil
}

// CategoryRemaining returns the unspent portion of one allocation, negative
// when overspent. No clamping.
func CategoryRemaining(a *models.CategoryAllocation) int64 {
	return a.Allocated - a.Spent
}

// Summarize aggregates a budget and its allocations into a BudgetSummary.
func Summarize(budget *models.Budget, allocations []models.CategoryAllocation) BudgetSummary {
	var allocated, spent int64
	for i := range allocations {
		allocated += allocations[i].Allocated
		spent += allocations[i].Spent
	}
	return BudgetSummary{
		TotalIncome:          budget.PlannedIncome,
		TotalAllocated:       allocated,
		TotalSpent:           spent,
		TotalRemaining:       allocated - spent,
		AllocationPercentage: money.PercentOf(allocated, budget.PlannedIncome),
		SpendingPercentage:   money.PercentOf(spent, allocated),
		Unallocated:          budget.PlannedIncome - allocated,
	}
}

// SummarizeCategory builds the per-category view of one allocation against
// the budget's planned income.
func SummarizeCategory(a *models.CategoryAllocation, incomeMinor int64) CategorySummary {
	return CategorySummary{
		CategoryID:           a.CategoryID,
		Allocated:            a.Allocated,
		Spent:                a.Spent,
		Remaining:            a.Allocated - a.Spent,
		UsagePercentage:      money.PercentOf(a.Spent, a.Allocated),
		AllocationPercentage: money.PercentOf(a.Allocated, incomeMinor),
		IsOverspent:          a.Spent > a.Allocated,
	}
}

// ValidateAllocationTotals checks a budget's allocations against its income.
// Fixed allocations are summed in minor units, percentage allocations in
// points; the projected total converts the combined percentage at the income
// boundary. Percentage totals above 100 and projected totals above income
// are independent failures and can be reported together.
func ValidateAllocationTotals(allocations []models.CategoryAllocation, incomeMinor int64) AllocationTotals {
	var totalFixed int64
	var totalPercentage float64
	for i := range allocations {
		switch p := allocations[i].Plan().(type) {
		case money.FixedPlan:
			totalFixed += p.Amount
		case money.PercentPlan:
			totalPercentage += p.Points
		}
	}
	totalPercentage = money.Round2(totalPercentage)

	result := AllocationTotals{
		Errors:          []string{},
		TotalFixed:      totalFixed,
		TotalPercentage: totalPercentage,
		ProjectedTotal:  totalFixed + money.Scale(totalPercentage, incomeMinor),
	}
	if totalPercentage > 100 {
		result.Errors = append(result.Errors, "Total percentage allocations exceed 100%")
	}
	if result.ProjectedTotal > incomeMinor {
		result.Errors = append(result.Errors, "Total allocations exceed budget income")
	}
	result.IsValid = len(result.Errors) == 0
	return result
}

// RolloverAmount returns the amount that carries to the next month: the
// positive remainder when the allocation opts into rollover, otherwise 0.
func RolloverAmount(a *models.CategoryAllocation) int64 {
	if !a.Rollover {
		return 0
	}
	remaining := a.Allocated - a.Spent
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// TotalRollover sums RolloverAmount across the list.
func TotalRollover(allocations []models.CategoryAllocation) int64 {
	var total int64
	for i := range allocations {
		total += RolloverAmount(&allocations[i])
	}
	return total
}

// CompareBudgets compares actual income, allocation totals, and spend totals
// of two budgets month over month.
func CompareBudgets(
	current, previous *models.Budget,
	currentAllocations, previousAllocations []models.CategoryAllocation,
) BudgetComparison {
	var curAllocated, curSpent, prevAllocated, prevSpent int64
	for i := range currentAllocations {
		curAllocated += currentAllocations[i].Allocated
		curSpent += currentAllocations[i].Spent
	}
	for i := range previousAllocations {
		prevAllocated += previousAllocations[i].Allocated
		prevSpent += previousAllocations[i].Spent
	}
	return BudgetComparison{
		CurrentMonth:  current.Month,
		PreviousMonth: previous.Month,
		Income:        metricChange(current.ActualIncome, previous.ActualIncome),
		Allocated:     metricChange(curAllocated, prevAllocated),
		Spent:         metricChange(curSpent, prevSpent),
	}
}

func metricChange(current, previous int64) MetricChange {
	change := current - previous
	var pct float64
	if previous != 0 {
		pct = money.Round2(float64(change) / float64(previous) * 100)
	}
	return MetricChange{
		Current:          current,
		Previous:         previous,
		Change:           change,
		ChangePercentage: pct,
	}
}

// ProjectSpending extrapolates spend-to-date linearly across the budget's
// calendar month. The daily rate stays real-valued until the final rounding
// step so rounding error does not compound through the pipeline. A category
// is at risk when its own extrapolated spend would exceed its own
// allocation, independent of the budget-wide projection.
func ProjectSpending(
	budget *models.Budget,
	allocations []models.CategoryAllocation,
	asOf time.Time,
) (SpendingProjection, error) {
	m, err := month.Parse(budget.Month)
	if err != nil {
		return SpendingProjection{}, err
	}
	daysInMonth := m.Days()

	daysElapsed := asOf.Day()
	if daysElapsed < 1 {
		daysElapsed = 1
	}

	var totalSpent int64
	atRisk := []string{}
	for i := range allocations {
		a := &allocations[i]
		totalSpent += a.Spent

		categoryProjected := money.RoundToMinor(float64(a.Spent) / float64(daysElapsed) * float64(daysInMonth))
		if categoryProjected > a.Allocated {
			atRisk = append(atRisk, a.CategoryID)
		}
	}

	dailyRate := float64(totalSpent) / float64(daysElapsed)
	projected := money.RoundToMinor(dailyRate * float64(daysInMonth))

	return SpendingProjection{
		DaysInMonth:        daysInMonth,
		DaysElapsed:        daysElapsed,
		TotalSpent:         totalSpent,
		DailyRate:          dailyRate,
		ProjectedSpending:  projected,
		ProjectedRemaining: budget.TotalAllocated - projected,
		CategoriesAtRisk:   atRisk,
	}, nil
}
