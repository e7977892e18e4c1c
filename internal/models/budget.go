package models

// BudgetStatus represents the lifecycle status of a budget
type BudgetStatus string

const (
	BudgetStatusDraft  BudgetStatus = "draft"
	BudgetStatusActive BudgetStatus = "active"
	BudgetStatusClosed BudgetStatus = "closed"
)

// IsValid reports whether s is one of the known budget statuses.
func (s BudgetStatus) IsValid() bool {
	switch s {
	case BudgetStatusDraft, BudgetStatusActive, BudgetStatusClosed:
		return true
	}
	return false
}

// Budget represents the monthly budget envelope: planned income for a
// calendar month, distributed across category allocations. Amounts are
// integer minor units. At most one active budget may exist per user and
// month.
type Budget struct {
	Base
	UserID         string       `gorm:"type:uuid;not null;index:idx_budgets_user_month" json:"user_id"`
	Month          string       `gorm:"size:7;not null;index:idx_budgets_user_month" json:"month"`
	PlannedIncome  int64        `gorm:"not null" json:"planned_income_minor"`
	ActualIncome   int64        `gorm:"not null;default:0" json:"actual_income_minor"`
	TotalAllocated int64        `gorm:"not null;default:0" json:"total_allocated_minor"`
	Status         BudgetStatus `gorm:"size:10;not null;default:draft" json:"status"`

	Allocations []CategoryAllocation `gorm:"foreignKey:BudgetID" json:"allocations,omitempty"`
}
